package handler

import (
	"encoding/json"
	"go-ledger-api/common"
	"go-ledger-api/service"
	"net/http"
)

// TransferHandler holds dependencies for transfer-related handlers.
type TransferHandler struct {
	service *service.TransferService
}

// NewTransferHandler creates a new TransferHandler with its dependencies.
func NewTransferHandler(s *service.TransferService) *TransferHandler {
	return &TransferHandler{service: s}
}

// InitiateTransfer godoc
// @Summary      Initiate a transfer
// @Description  Debits the sender and records a pending transfer. The receiver is credited by the processing step.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transfer body service.TransferRequest true "Details of the transfer"
// @Success      201  {object}  model.Transfer
// @Failure      400  {object}  common.AppError "Bad Request (e.g., invalid amount, same account, insufficient funds)"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      403  {object}  common.AppError "Forbidden: User does not own the source account"
// @Failure      404  {object}  common.AppError "Sender or receiver account not found"
// @Failure      500  {object}  common.AppError "Internal server error while initiating transfer"
// @Router       /api/transfers [post]
func (h *TransferHandler) InitiateTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req service.TransferRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}

	transfer, err := h.service.InitiateTransfer(r.Context(), userID, req)
	if err != nil {
		// Map specific business logic errors to appropriate HTTP status codes.
		switch err {
		case service.ErrSenderAccountNotFound, service.ErrReceiverAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrPermissionDenied:
			return common.NewAppError(http.StatusForbidden, err.Error(), nil)
		case service.ErrInsufficientFunds, service.ErrSameAccountTransfer, service.ErrInvalidAmount, service.ErrAccountInactive:
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not initiate transfer", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transfer)
	return nil
}

// ProcessTransfer godoc
// @Summary      Process a pending transfer
// @Description  Credits the receiver and marks the transfer processed. Calling this twice for the same transfer is safe; the second call is rejected.
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        transferId path int true "Transfer ID"
// @Success      200  {object}  model.Transfer
// @Failure      400  {object}  common.AppError "Transfer already processed or rate unavailable"
// @Failure      404  {object}  common.AppError "Transfer not found"
// @Failure      500  {object}  common.AppError
// @Router       /api/transfers/{transferId}/process [post]
func (h *TransferHandler) ProcessTransfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	transferID, appErr := pathID(r, "transferId")
	if appErr != nil {
		return appErr
	}

	transfer, err := h.service.ProcessTransfer(r.Context(), transferID)
	if err != nil {
		switch err {
		case service.ErrTransferNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrAlreadyProcessed, service.ErrInvalidRate:
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not process transfer", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transfer)
	return nil
}

// ListTransfersForAccount godoc
// @Summary      List account transfer history
// @Description  Retrieves the transfer history for a specific account owned by the authenticated user.
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "The ID of the account to retrieve transfers for"
// @Success      200  {array}   model.Transfer
// @Failure      400  {object}  common.AppError "Invalid account ID in URL path"
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError "User does not own the specified account"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/accounts/{accountId}/transfers [get]
func (h *TransferHandler) ListTransfersForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := requestUserID(r)
	if appErr != nil {
		return appErr
	}
	accountID, appErr := pathID(r, "accountId")
	if appErr != nil {
		return appErr
	}

	transfers, err := h.service.ListTransfersForAccount(r.Context(), userID, accountID)
	if err != nil {
		switch err {
		case service.ErrAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrPermissionDenied:
			return common.NewAppError(http.StatusForbidden, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transfers", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transfers)
	return nil
}
