package handler

import (
	"encoding/json"
	"go-ledger-api/common"
	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/service"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	service *service.AccountService
	ledger  *service.LedgerService
}

func NewAccountHandler(service *service.AccountService, ledger *service.LedgerService) *AccountHandler {
	return &AccountHandler{service: service, ledger: ledger}
}

func requestUserID(r *http.Request) (int, *common.AppError) {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return 0, common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	return userID, nil
}

func pathID(r *http.Request, name string) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid ID in URL path", err)
	}
	return id, nil
}

// CreateAccount godoc
// @Summary      Open a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account body model.CreateAccountRequest true "Account details"
// @Success      201 {object} model.Account
// @Failure      400 {object} common.AppError "Duplicate account name"
// @Failure      401 {object} common.AppError
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateAccountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"currency": req.Currency,
		"name":     req.Name,
	})
	log.Info("Create account request received")

	account, err := h.service.CreateNewAccount(userID, req.Name, req.Currency)
	if err != nil {
		if err == service.ErrDuplicateAccountName {
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
	return nil
}

// ListAccounts godoc
// @Summary      List the authenticated user's accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Account
// @Failure      401 {object} common.AppError
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}

	accounts, err := h.service.ListAccountsForUser(userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// ListAllAccounts godoc
// @Summary      List every account in the system
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Account
// @Failure      403 {object} common.AppError
// @Router       /api/admin/accounts [get]
func (h *AccountHandler) ListAllAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	accounts, err := h.service.GetAllAccounts()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// ConvertAccountCurrency godoc
// @Summary      Switch an account to a new currency
// @Description  Converts the stored balance and the currency code in one atomic update.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "Account ID"
// @Param        currency body model.ConvertAccountRequest true "Target currency"
// @Success      200 {object} model.Account
// @Failure      400 {object} common.AppError "Unknown or invalid exchange rate"
// @Failure      403 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Router       /api/accounts/{accountId}/convert [post]
func (h *AccountHandler) ConvertAccountCurrency(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}
	accountID, appErr := pathID(r, "accountId")
	if appErr != nil {
		return appErr
	}

	var req model.ConvertAccountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	account, err := h.ledger.ConvertAccountCurrency(r.Context(), userID, accountID, req.Currency)
	if err != nil {
		switch err {
		case service.ErrAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrPermissionDenied:
			return common.NewAppError(http.StatusForbidden, err.Error(), nil)
		case service.ErrInvalidRate, service.ErrRateNotFound:
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not convert account currency", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// DeactivateAccount godoc
// @Summary      Deactivate an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "Account ID"
// @Success      204 "No Content"
// @Failure      403 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Router       /api/accounts/{accountId}/deactivate [post]
func (h *AccountHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}
	accountID, appErr := pathID(r, "accountId")
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeactivateAccount(userID, accountID); err != nil {
		switch err {
		case service.ErrAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrPermissionDenied:
			return common.NewAppError(http.StatusForbidden, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not deactivate account", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
