package transactions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/barber-billing/internal/common"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Handler exposes read endpoints over the transaction list.
type Handler struct {
	Store *Store
}

// List handles GET /api/v1/transactions, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction store not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, defaultPageSize, maxPageSize)
	meta := common.Pagination{Page: page, PerPage: perPage, TotalItems: h.Store.Len()}
	items := h.Store.Page(meta.Offset(), perPage)
	w.Header().Set("X-Total-Count", strconv.Itoa(meta.TotalItems))
	common.JSON(w, http.StatusOK, map[string]any{"data": items, "pagination": meta})
}

// Export handles GET /api/v1/transactions.csv.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction store not configured", nil)
		return
	}
	common.CSV(w, "transactions.csv", Rows(h.Store.List()))
}

// Get handles GET /api/v1/transactions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction store not configured", nil)
		return
	}
	txn, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("transaction not found", err))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": txn})
}
