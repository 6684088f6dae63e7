package catalog

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/barber-billing/internal/common"
)

// Handler exposes the read-only reference data endpoints.
type Handler struct {
	catalog *Catalog
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Catalog *Catalog
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{catalog: cfg.Catalog}
}

// Services handles GET /api/v1/services. An optional category filter is matched case-insensitively.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	items := h.catalog.Services()
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filtered := items[:0]
		for _, svc := range items {
			if strings.EqualFold(svc.Category, category) {
				filtered = append(filtered, svc)
			}
		}
		items = filtered
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// Barbers handles GET /api/v1/barbers.
func (h *Handler) Barbers(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.catalog.Barbers()})
}

// Barber handles GET /api/v1/barbers/{id}.
func (h *Handler) Barber(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	barber, ok := h.catalog.Barber(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "barber not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": barber})
}

// Customers handles GET /api/v1/customers.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.catalog.Customers()})
}
