package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/noah-isme/barber-billing/internal/common"
	"github.com/noah-isme/barber-billing/internal/pricing"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

// Handler exposes the billing form endpoints.
type Handler struct {
	Svc *Service
	// Location interprets date-only membership start dates.
	Location *time.Location
}

type formRequest struct {
	CustomerName        string        `json:"customerName"`
	CustomerPhone       string        `json:"customerPhone"`
	Services            []string      `json:"services"`
	BarberID            string        `json:"barberId"`
	HasMembership       bool          `json:"hasMembership"`
	MembershipStartDate string        `json:"membershipStartDate"`
	PaymentMode         string        `json:"paymentMode"`
	ManualAdjustment    pricing.Money `json:"manualAdjustment"`
}

type quoteResponse struct {
	Summary pricing.Summary `json:"summary"`
	Valid   bool            `json:"valid"`
	Errors  FieldErrors     `json:"errors,omitempty"`
}

func (h *Handler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

func (h *Handler) decode(r *http.Request) (Form, error) {
	var req formRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Form{}, common.BadRequest("invalid request body", map[string]any{"error": err.Error()})
	}
	mode, err := transactions.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return Form{}, common.BadRequest("invalid payment mode", map[string]any{"paymentMode": req.PaymentMode})
	}
	f := Form{
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		SelectedServices: req.Services,
		BarberID:         req.BarberID,
		HasMembership:    req.HasMembership,
		PaymentMode:      mode,
		ManualAdjustment: req.ManualAdjustment,
	}
	if raw := strings.TrimSpace(req.MembershipStartDate); raw != "" {
		start, err := dateparse.ParseIn(raw, h.location())
		if err != nil {
			return Form{}, common.BadRequest("invalid membership start date", map[string]any{"membershipStartDate": raw})
		}
		f.MembershipStartDate = &start
	}
	return f, nil
}

// Quote handles POST /api/v1/billing/quote. It returns the live summary and a validation preview.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil || h.Svc.Catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "billing service not configured", nil)
		return
	}
	f, err := h.decode(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	fields := Validate(f)
	common.JSON(w, http.StatusOK, map[string]any{"data": quoteResponse{
		Summary: Quote(h.Svc.Catalog, f),
		Valid:   len(fields) == 0,
		Errors:  fields,
	}})
}

// Commit handles POST /api/v1/transactions.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "billing service not configured", nil)
		return
	}
	f, err := h.decode(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	txn, err := h.Svc.Commit(r.Context(), f)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "billing form is invalid", verr.Fields)
		case errors.Is(err, r.Context().Err()) && r.Context().Err() != nil:
			common.JSONError(w, http.StatusServiceUnavailable, "REQUEST_CANCELED", "request canceled before commit", nil)
		default:
			common.WriteError(w, err)
		}
		return
	}
	w.Header().Set("Location", "/api/v1/transactions/"+txn.ID)
	common.JSON(w, http.StatusCreated, map[string]any{"data": txn})
}
