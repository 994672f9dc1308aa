package handlers

import (
	"net/http"

	"coinmate/internal/middleware"
	"coinmate/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context(), middleware.ScopeFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, "list_categories", err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.categories.Create(r.Context(), middleware.ScopeFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, "create_category", err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Gen(r.Context(), middleware.ScopeFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, "get_category", err)
		return
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	category, err := h.categories.Update(r.Context(), middleware.ScopeFromContext(r.Context()), req)
	if err != nil {
		respondServiceError(w, "update_category", err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Delete(r.Context(), middleware.ScopeFromContext(r.Context()), services.IDInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		respondServiceError(w, "delete_category", err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// CategoryReport responds with null when the category has no expenses in the month.
func (h *Handler) CategoryReport(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		respondServiceError(w, "category_report", err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		respondServiceError(w, "category_report", err)
		return
	}
	report, err := h.categories.Report(r.Context(), middleware.ScopeFromContext(r.Context()), services.ReportInput{
		CategoryID: chi.URLParam(r, "id"),
		Year:       year,
		Month:      month,
	})
	if err != nil {
		respondServiceError(w, "category_report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
