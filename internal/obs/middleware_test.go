package obs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/events"
	"github.com/noah-isme/barber-billing/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("barber", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/health/ready"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", "204"))
	if total != 1 {
		t.Fatalf("expected counter to be 1, got %v", total)
	}
	if samples := testutil.CollectAndCount(metrics.ReqDur); samples == 0 {
		t.Fatalf("expected histogram sample")
	}
	if val := testutil.ToFloat64(metrics.InFlight); val != 0 {
		t.Fatalf("expected no in-flight requests, got %v", val)
	}

	again := obs.NewHTTPMetrics("barber", nil, registry)
	require.Same(t, metrics.ReqTotal, again.ReqTotal)
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Get("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		obs.Logger(r.Context(), zerolog.Nop()).Info().Msg("inside")
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/txn_1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &access))
	require.NotEmpty(t, inner["request_id"])
	require.Equal(t, inner["request_id"], access["request_id"])
	require.Equal(t, "warn", access["level"])
	require.Equal(t, "/transactions/txn_1", access["path"])
	require.EqualValues(t, 404, access["status"])
}

func TestTransactionMetricsNotifier(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("barber", registry)

	bus := events.Bus{Notifiers: []events.Notifier{obs.TransactionMetrics{}}, Now: time.Now}
	payload := map[string]any{"paymentMode": "Paytm", "hasMembership": true, "finalAmount": 15700}
	_, err := bus.Emit(context.Background(), events.TopicTransactionCreated, "txn_1", payload)
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(obs.TransactionsCommitted.WithLabelValues("Paytm", "true")))
	require.Equal(t, 15700.0, testutil.ToFloat64(obs.RevenueCommitted.WithLabelValues("Paytm")))

	obs.ObserveValidationFailure("customerPhone", "services")
	require.Equal(t, 1.0, testutil.ToFloat64(obs.ValidationFailures.WithLabelValues("customerPhone")))

	obs.SetRevenueToday(35000)
	require.Equal(t, 35000.0, testutil.ToFloat64(obs.RevenueToday))
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.NewLoggerTo(&buf, "json", "warn")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	fallback := obs.NewLoggerTo(&buf, "json", "nonsense")
	require.Equal(t, zerolog.InfoLevel, fallback.GetLevel())
}
