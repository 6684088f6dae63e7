package analytics

import (
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/barber-billing/internal/common"
)

// Handler exposes analytics read endpoints.
type Handler struct {
	Svc *Service
}

func (h *Handler) parseQuery(r *http.Request) (Query, error) {
	q := r.URL.Query()
	loc := h.Svc.location()
	query := Query{
		Period:    PeriodMonth,
		BarberID:  strings.TrimSpace(q.Get("barberId")),
		ServiceID: strings.TrimSpace(q.Get("serviceId")),
		Top:       common.AtoiDefault(q.Get("top"), 0),
	}
	if raw := q.Get("period"); strings.TrimSpace(raw) != "" {
		query.Period = ParsePeriod(raw)
	}
	ref, err := common.QueryTime(r, "ref", loc)
	if err != nil {
		return Query{}, err
	}
	if ref != nil {
		query.Ref = *ref
	}
	if query.From, err = common.QueryTime(r, "from", loc); err != nil {
		return Query{}, err
	}
	if query.To, err = common.QueryTime(r, "to", loc); err != nil {
		return Query{}, err
	}
	return query, nil
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) (Report, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return Report{}, false
	}
	query, err := h.parseQuery(r)
	if err != nil {
		common.WriteError(w, err)
		return Report{}, false
	}
	report, err := h.Svc.Report(r.Context(), query)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from must not be after to", nil)
			return Report{}, false
		}
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return Report{}, false
	}
	return report, true
}

// Report handles GET /api/v1/analytics/report.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": report})
}

// ExportCSV handles GET /api/v1/analytics/report.csv?table=barbers|services|daily.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("table")))
	if table == "" {
		table = "barbers"
	}
	if table != "barbers" && table != "services" && table != "daily" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "table must be one of barbers, services, daily", nil)
		return
	}
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	switch table {
	case "services":
		common.CSV(w, "services.csv", report.Services)
	case "daily":
		common.CSV(w, "daily.csv", report.Daily)
	default:
		common.CSV(w, "barbers.csv", report.Barbers)
	}
}
