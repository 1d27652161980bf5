package handler

import (
	"encoding/json"
	"go-ledger-api/common"
	"go-ledger-api/model"
	"go-ledger-api/service"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// RateHandler holds dependencies for exchange-rate handlers.
type RateHandler struct {
	rates    *service.RateService
	currency *service.CurrencyService
}

func NewRateHandler(rates *service.RateService, currency *service.CurrencyService) *RateHandler {
	return &RateHandler{rates: rates, currency: currency}
}

// RefreshRates godoc
// @Summary      Refresh exchange rates if stale
// @Description  Fetches current rates from the external provider unless the stored rates are younger than the staleness window. A no-op reports when the next refresh is due.
// @Tags         rates
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} service.RefreshOutcome
// @Failure      502 {object} common.AppError "Rate provider unavailable"
// @Router       /api/rates/refresh [post]
func (h *RateHandler) RefreshRates(w http.ResponseWriter, r *http.Request) *common.AppError {
	outcome, err := h.rates.RefreshIfStale(r.Context(), time.Now().UTC())
	if err != nil {
		if err == service.ErrProviderUnavailable {
			return common.NewAppError(http.StatusBadGateway, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not refresh exchange rates", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(outcome)
	return nil
}

// GetRate godoc
// @Summary      Get the stored rate for a currency
// @Tags         rates
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Currency code"
// @Success      200 {object} map[string]string
// @Failure      404 {object} common.AppError "Unknown currency code"
// @Router       /api/rates/{code} [get]
func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) *common.AppError {
	code := r.PathValue("code")
	if len(code) != 3 {
		return common.NewAppError(http.StatusBadRequest, "A 3-letter currency code is required", nil)
	}

	rate, err := h.rates.GetRate(r.Context(), code)
	if err != nil {
		if err == service.ErrRateNotFound {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not read exchange rate", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]decimal.Decimal{code: rate})
	return nil
}

// ConvertQuote godoc
// @Summary      Quote a currency conversion
// @Description  Converts an amount between two currencies using the stored rates without touching any account.
// @Tags         rates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        quote body model.ConvertQuoteRequest true "Conversion to quote"
// @Success      200 {object} map[string]string
// @Failure      400 {object} common.AppError "Unknown or invalid exchange rate"
// @Router       /api/convert [post]
func (h *RateHandler) ConvertQuote(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ConvertQuoteRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	converted, err := h.currency.Convert(r.Context(), req.Amount, req.From, req.To)
	if err != nil {
		if err == service.ErrInvalidRate {
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not convert amount", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]decimal.Decimal{"amount": converted})
	return nil
}
