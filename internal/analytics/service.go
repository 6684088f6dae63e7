package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/noah-isme/barber-billing/internal/cache"
	"github.com/noah-isme/barber-billing/internal/catalog"
	"github.com/noah-isme/barber-billing/internal/obs"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

const meterName = "github.com/noah-isme/barber-billing/internal/analytics"

// Query describes a report request. An explicit From or To overrides the period bounds.
type Query struct {
	Period    Period
	Ref       time.Time
	From      *time.Time
	To        *time.Time
	BarberID  string
	ServiceID string
	Top       int
}

// Service computes reports over the transaction store with an optional Redis cache.
type Service struct {
	Store    *transactions.Store
	Catalog  *catalog.Catalog
	Cache    *cache.JSON
	Location *time.Location
	Now      func() time.Time
	Logger   zerolog.Logger
}

var reportLatency, _ = otel.Meter(meterName).Float64Histogram(
	"analytics.report.duration",
	metric.WithUnit("ms"),
	metric.WithDescription("Time spent building analytics reports."),
)

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s != nil && s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Criteria resolves q into concrete filter criteria.
func (s *Service) Criteria(q Query) Criteria {
	ref := q.Ref
	if ref.IsZero() {
		ref = s.now()
	}
	rng := DateRange(q.Period, ref, s.location())
	if q.From != nil {
		rng.From = *q.From
	}
	if q.To != nil {
		rng.To = *q.To
	}
	return Criteria{Range: rng, BarberID: q.BarberID, ServiceID: q.ServiceID}
}

// Report returns the aggregated report for q. Cached reports are keyed on the store revision,
// so every new transaction invalidates them.
func (s *Service) Report(ctx context.Context, q Query) (Report, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return Report{}, errors.New("analytics service not configured")
	}
	started := time.Now()
	c := s.Criteria(q)
	if !c.Range.From.IsZero() && !c.Range.To.IsZero() && c.Range.To.Before(c.Range.From) {
		return Report{}, ErrInvalidRange
	}

	txns, rev := s.Store.Snapshot()
	key := cache.Key("an", "report", rev, c.Range.From, c.Range.To, c.BarberID, c.ServiceID)

	var report Report
	hit, err := s.Cache.Get(ctx, key, &report)
	if err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("analytics cache read failed")
	}
	if s.Cache.Enabled() {
		obs.ObserveReportCache(hit)
	}
	if !hit {
		report = Aggregate(txns, s.Catalog, c, s.location())
		if err := s.Cache.Set(ctx, key, report); err != nil {
			s.Logger.Warn().Err(err).Str("key", key).Msg("analytics cache write failed")
		}
	}
	report.Services = TopServices(report.Services, q.Top)

	if reportLatency != nil {
		reportLatency.Record(ctx, obs.DurationMillis(time.Since(started)),
			metric.WithAttributes(attribute.Bool("cache_hit", hit)))
	}
	return report, nil
}

// Today summarises the current calendar day.
func (s *Service) Today(ctx context.Context) (Report, error) {
	return s.Report(ctx, Query{Period: PeriodDay, Ref: s.now()})
}

// ErrInvalidRange indicates a range whose end precedes its start.
var ErrInvalidRange = errors.New("range end precedes start")
