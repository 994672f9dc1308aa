package handlers

import (
	"net/http"
	"strings"

	"coinmate/internal/money"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	pair := strings.ToUpper(chi.URLParam(r, "pair"))
	if len(pair) != 6 {
		respondError(w, http.StatusBadRequest, "pair must look like USDCOP")
		return
	}
	rate, err := h.rates.FetchRate(r.Context(), pair)
	if err != nil {
		respondServiceError(w, "exchange_rate", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"pair":       pair,
		"rate":       rate.String(),
		"rate_cents": money.RateToCents(rate),
	})
}
