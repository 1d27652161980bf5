package handler

import (
	"encoding/json"
	"go-ledger-api/common"
	"go-ledger-api/model"
	"go-ledger-api/service"
	"net/http"

	"github.com/shopspring/decimal"
)

// LoanHandler holds dependencies for loan-related handlers.
type LoanHandler struct {
	service *service.LoanService
}

func NewLoanHandler(s *service.LoanService) *LoanHandler {
	return &LoanHandler{service: s}
}

// LoanAllowance godoc
// @Summary      Compute the maximum new-loan amount
// @Description  Evaluates eligibility from the user's aggregate net worth and outstanding loans, in the requested currency.
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        currency query string true "Reference currency code"
// @Success      200 {object} map[string]string
// @Failure      400 {object} common.AppError "Unknown or invalid exchange rate"
// @Failure      401 {object} common.AppError
// @Router       /api/loans/allowance [get]
func (h *LoanHandler) LoanAllowance(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}

	currency := r.URL.Query().Get("currency")
	if len(currency) != 3 {
		return common.NewAppError(http.StatusBadRequest, "A 3-letter currency query parameter is required", nil)
	}

	allowed, err := h.service.LoanAmountAllowed(r.Context(), userID, currency)
	if err != nil {
		switch err {
		case service.ErrInvalidRate, service.ErrRateNotFound:
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not compute loan allowance", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]decimal.Decimal{"allowed": allowed})
	return nil
}

// CreateLoan godoc
// @Summary      Request a loan
// @Description  Issues a loan if the requested amount is within the user's eligibility and credits the disbursement account.
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        loan body model.CreateLoanRequest true "Loan details"
// @Success      201 {object} model.Loan
// @Failure      400 {object} common.AppError "Loan denied or invalid amount"
// @Failure      403 {object} common.AppError
// @Failure      404 {object} common.AppError "Disbursement account not found"
// @Router       /api/loans [post]
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateLoanRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}

	loan, err := h.service.CreateLoan(r.Context(), userID, req)
	if err != nil {
		switch err {
		case service.ErrAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrPermissionDenied:
			return common.NewAppError(http.StatusForbidden, err.Error(), nil)
		case service.ErrLoanDenied, service.ErrInvalidAmount, service.ErrAccountInactive, service.ErrInvalidRate, service.ErrRateNotFound:
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not create loan", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loan)
	return nil
}

// ListLoans godoc
// @Summary      List the authenticated user's loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Loan
// @Failure      401 {object} common.AppError
// @Router       /api/loans [get]
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}

	loans, err := h.service.ListLoansForUser(r.Context(), userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve loans", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loans)
	return nil
}

// MarkLoanDefaulted godoc
// @Summary      Mark a pending loan as defaulted
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        loanId path int true "Loan ID"
// @Success      200 {object} model.Loan
// @Failure      400 {object} common.AppError "Loan is not pending"
// @Failure      403 {object} common.AppError
// @Failure      404 {object} common.AppError "Loan not found"
// @Router       /api/admin/loans/{loanId}/default [post]
func (h *LoanHandler) MarkLoanDefaulted(w http.ResponseWriter, r *http.Request) *common.AppError {
	loanID, appErr := pathID(r, "loanId")
	if appErr != nil {
		return appErr
	}

	loan, err := h.service.MarkLoanDefaulted(r.Context(), loanID)
	if err != nil {
		switch err {
		case service.ErrLoanNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrLoanClosed:
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not mark loan as defaulted", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loan)
	return nil
}

// RepayLoan godoc
// @Summary      Repay a pending loan
// @Description  Debits the disbursement account by the principal and marks the loan paid.
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        loanId path int true "Loan ID"
// @Success      200 {object} model.Loan
// @Failure      400 {object} common.AppError "Loan is not pending"
// @Failure      403 {object} common.AppError
// @Failure      404 {object} common.AppError "Loan not found"
// @Router       /api/loans/{loanId}/repay [post]
func (h *LoanHandler) RepayLoan(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}
	loanID, appErr := pathID(r, "loanId")
	if appErr != nil {
		return appErr
	}

	loan, err := h.service.RepayLoan(r.Context(), userID, loanID)
	if err != nil {
		switch err {
		case service.ErrLoanNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrPermissionDenied:
			return common.NewAppError(http.StatusForbidden, err.Error(), nil)
		case service.ErrLoanClosed, service.ErrAccountNotFound:
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not repay loan", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(loan)
	return nil
}
