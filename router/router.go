package router

import (
	"go-ledger-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "go-ledger-api/docs" // generated swagger docs
)

func NewRouter(
	userHandler *handler.UserHandler,
	accountHandler *handler.AccountHandler,
	transferHandler *handler.TransferHandler,
	loanHandler *handler.LoanHandler,
	rateHandler *handler.RateHandler,
) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))
	mux.Handle("POST /refresh", handler.ErrorHandlingMiddleware(userHandler.Refresh))
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Authenticated routes
	authed := http.NewServeMux()
	authed.Handle("POST /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.CreateAccount))
	authed.Handle("GET /api/accounts", handler.ErrorHandlingMiddleware(accountHandler.ListAccounts))
	authed.Handle("POST /api/accounts/{accountId}/convert", handler.ErrorHandlingMiddleware(accountHandler.ConvertAccountCurrency))
	authed.Handle("POST /api/accounts/{accountId}/deactivate", handler.ErrorHandlingMiddleware(accountHandler.DeactivateAccount))
	authed.Handle("GET /api/accounts/{accountId}/transfers", handler.ErrorHandlingMiddleware(transferHandler.ListTransfersForAccount))

	authed.Handle("POST /api/transfers", handler.ErrorHandlingMiddleware(transferHandler.InitiateTransfer))
	authed.Handle("POST /api/transfers/{transferId}/process", handler.ErrorHandlingMiddleware(transferHandler.ProcessTransfer))

	authed.Handle("GET /api/loans/allowance", handler.ErrorHandlingMiddleware(loanHandler.LoanAllowance))
	authed.Handle("POST /api/loans", handler.ErrorHandlingMiddleware(loanHandler.CreateLoan))
	authed.Handle("GET /api/loans", handler.ErrorHandlingMiddleware(loanHandler.ListLoans))
	authed.Handle("POST /api/loans/{loanId}/repay", handler.ErrorHandlingMiddleware(loanHandler.RepayLoan))

	authed.Handle("POST /api/rates/refresh", handler.ErrorHandlingMiddleware(rateHandler.RefreshRates))
	authed.Handle("GET /api/rates/{code}", handler.ErrorHandlingMiddleware(rateHandler.GetRate))
	authed.Handle("POST /api/convert", handler.ErrorHandlingMiddleware(rateHandler.ConvertQuote))

	// Admin routes
	authed.Handle("GET /api/admin/accounts", handler.AdminMiddleware(handler.ErrorHandlingMiddleware(accountHandler.ListAllAccounts)))
	authed.Handle("PUT /api/admin/users/{userId}/role", handler.AdminMiddleware(handler.ErrorHandlingMiddleware(userHandler.UpdateUserRole)))
	authed.Handle("POST /api/admin/loans/{loanId}/default", handler.AdminMiddleware(handler.ErrorHandlingMiddleware(loanHandler.MarkLoanDefaulted)))

	mux.Handle("/api/", handler.AuthMiddleware(authed))

	return mux
}
