package handlers

import (
	"net/http"

	"coinmate/internal/middleware"
	"coinmate/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTransactionInput
	if !decodeJSON(w, r, &req) {
		return
	}
	transaction, err := h.transactions.Create(r.Context(), middleware.ScopeFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, "create_transaction", err)
		return
	}
	respondJSON(w, http.StatusCreated, transaction)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactions.Gen(r.Context(), middleware.ScopeFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, "get_transaction", err)
		return
	}
	if transaction == nil {
		respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTransactionInput
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	transaction, err := h.transactions.Update(r.Context(), middleware.ScopeFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, "update_transaction", err)
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactions.Delete(r.Context(), middleware.ScopeFromContext(r.Context()), services.IDInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		respondServiceError(w, "delete_transaction", err)
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}

// ListTransactions pages with ?type=&limit=&cursor=.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondServiceError(w, "list_transactions", err)
		return
	}
	page, err := h.transactions.List(r.Context(), middleware.ScopeFromContext(r.Context()), services.ListTransactionsInput{
		Type:   r.URL.Query().Get("type"),
		Limit:  limit,
		Cursor: queryString(r, "cursor"),
	})
	if err != nil {
		respondServiceError(w, "list_transactions", err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
