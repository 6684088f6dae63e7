package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/barber-billing/internal/analytics"
	"github.com/noah-isme/barber-billing/internal/events"
	"github.com/noah-isme/barber-billing/internal/lock"
	"github.com/noah-isme/barber-billing/internal/obs"
	"github.com/noah-isme/barber-billing/internal/pricing"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Closed is the payload of a report.closed event.
type Closed struct {
	Date               string                `json:"date"`
	TotalRevenue       pricing.Money         `json:"totalRevenue"`
	TotalTransactions  int                   `json:"totalTransactions"`
	AverageTransaction pricing.Money         `json:"averageTransaction"`
	TopBarber          string                `json:"topBarber,omitempty"`
	Barbers            []analytics.BarberRow `json:"barbers"`
}

// Claimer grants exclusive, expiring claims on a key.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Closer produces the end-of-day summary.
type Closer struct {
	Analytics *analytics.Service
	Bus       *events.Bus
	Logger    zerolog.Logger
	// Lock, when set, lets a single replica run each day's scheduled close-out.
	Lock Claimer
}

// RunOnce summarises the current day, publishes the revenue gauge and emits report.closed.
func (c *Closer) RunOnce(ctx context.Context) (Closed, error) {
	if c == nil || c.Analytics == nil {
		return Closed{}, errors.New("report closer not configured")
	}
	rep, err := c.Analytics.Today(ctx)
	if err != nil {
		return Closed{}, fmt.Errorf("daily report: %w", err)
	}
	day := rep.Criteria.Range.From.Format(analytics.DayKeyLayout)
	closed := Closed{
		Date:               day,
		TotalRevenue:       rep.Summary.TotalRevenue,
		TotalTransactions:  rep.Summary.TotalTransactions,
		AverageTransaction: rep.Summary.AverageTransaction,
		Barbers:            rep.Barbers,
	}
	if len(rep.Barbers) > 0 && rep.Barbers[0].Revenue > 0 {
		closed.TopBarber = rep.Barbers[0].Name
	}

	obs.SetRevenueToday(closed.TotalRevenue)
	c.Logger.Info().
		Str("date", day).
		Str("revenue", pricing.Format(closed.TotalRevenue)).
		Int("transactions", closed.TotalTransactions).
		Str("average", pricing.Format(closed.AverageTransaction)).
		Str("top_barber", closed.TopBarber).
		Msg("daily close-out")

	if c.Bus != nil {
		if _, err := c.Bus.Emit(ctx, events.TopicReportClosed, day, closed); err != nil {
			c.Logger.Warn().Err(err).Str("date", day).Msg("report.closed delivery failed")
		}
	}
	return closed, nil
}

// Schedule registers RunScheduled on expr in loc and starts the scheduler. An empty expr returns nil.
// The caller stops the returned scheduler on shutdown.
func Schedule(c *Closer, expr string, loc *time.Location, timeout time.Duration) (*cron.Cron, error) {
	if expr == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sched := cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))
	_, err := sched.AddFunc(expr, func() {
		defer func() {
			if rec := recover(); rec != nil {
				c.Logger.Error().Interface("panic", rec).Msg("daily close-out panicked")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.RunScheduled(ctx); err != nil {
			c.Logger.Error().Err(err).Msg("daily close-out failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", expr, err)
	}
	sched.Start()
	return sched, nil
}

// RunScheduled runs RunOnce under the day's claim. The claim is kept on success so that
// other replicas firing on the same schedule skip the day.
func (c *Closer) RunScheduled(ctx context.Context) error {
	if c.Lock == nil {
		_, err := c.RunOnce(ctx)
		return err
	}
	if c.Analytics == nil {
		return errors.New("report closer not configured")
	}
	day := c.Analytics.Criteria(analytics.Query{Period: analytics.PeriodDay}).Range.From.Format(analytics.DayKeyLayout)
	release, err := c.Lock.Claim(ctx, "barber:lock:closeout:"+day, 24*time.Hour)
	if errors.Is(err, lock.ErrHeld) {
		c.Logger.Info().Str("date", day).Msg("daily close-out already claimed")
		return nil
	}
	if err != nil {
		return fmt.Errorf("claim close-out: %w", err)
	}
	if _, err := c.RunOnce(ctx); err != nil {
		release()
		return err
	}
	return nil
}
