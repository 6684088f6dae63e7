package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/barber-billing/internal/analytics"
	"github.com/noah-isme/barber-billing/internal/billing"
	"github.com/noah-isme/barber-billing/internal/cache"
	"github.com/noah-isme/barber-billing/internal/catalog"
	"github.com/noah-isme/barber-billing/internal/common"
	"github.com/noah-isme/barber-billing/internal/config"
	"github.com/noah-isme/barber-billing/internal/events"
	"github.com/noah-isme/barber-billing/internal/health"
	"github.com/noah-isme/barber-billing/internal/lock"
	"github.com/noah-isme/barber-billing/internal/obs"
	"github.com/noah-isme/barber-billing/internal/ratelimit"
	"github.com/noah-isme/barber-billing/internal/report"
	"github.com/noah-isme/barber-billing/internal/resilience"
	"github.com/noah-isme/barber-billing/internal/security"
	"github.com/noah-isme/barber-billing/internal/seed"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

// journalSize bounds the in-process event journal.
const journalSize = 256

// Deps carries externally owned resources. Every field is optional.
type Deps struct {
	Redis      *redis.Client
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Now        func() time.Time
}

// App holds the wired services and the HTTP router.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Catalog   *catalog.Catalog
	Store     *transactions.Store
	Journal   *events.Journal
	Bus       *events.Bus
	Billing   *billing.Service
	Analytics *analytics.Service
	Closer    *report.Closer
	Router    http.Handler
}

// New wires every service from cfg and seeds the store with demo transactions.
func New(cfg *config.Config, logger zerolog.Logger, deps Deps) (*App, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location()

	cat := seed.Catalog()
	store := transactions.NewStore()
	if cfg.SeedTransactions > 0 {
		demo := seed.Generate(cat, seed.Options{
			Count: cfg.SeedTransactions,
			Days:  cfg.SeedDays,
			Now:   now(),
			Seed:  cfg.SeedRandom,
		})
		if err := store.Seed(demo); err != nil {
			return nil, fmt.Errorf("seed transactions: %w", err)
		}
		logger.Info().Int("count", len(demo)).Int("days", cfg.SeedDays).Msg("seeded demo transactions")
	}

	journal := events.NewJournal(journalSize)
	notifiers := []events.Notifier{events.LogNotifier{Logger: logger}}
	if cfg.Obs.MetricsEnabled {
		notifiers = append(notifiers, obs.TransactionMetrics{})
	}
	bus := &events.Bus{Store: journal, Notifiers: notifiers, Now: now}

	ids, err := billing.NewSnowflakeIDs(1)
	if err != nil {
		return nil, fmt.Errorf("id generator: %w", err)
	}
	billingSvc := &billing.Service{
		Catalog: cat,
		Store:   store,
		Bus:     bus,
		IDs:     ids,
		Delay:   cfg.SubmitDelay,
		Now:     now,
		Logger:  logger,
	}
	if cfg.Obs.MetricsEnabled {
		resilience.MustRegisterMetrics(cfg.Obs.MetricsNamespace, deps.Registerer)
	}
	reportCache := cache.NewJSON(deps.Redis, "barber:", cfg.AnalyticsCacheTTL).
		WithBreaker(resilience.NewBreaker("report_cache", 5, 0.5, 30*time.Second).WithLogger(logger))
	analyticsSvc := &analytics.Service{
		Store:    store,
		Catalog:  cat,
		Cache:    reportCache,
		Location: loc,
		Now:      now,
		Logger:   logger,
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Catalog:   cat,
		Store:     store,
		Journal:   journal,
		Bus:       bus,
		Billing:   billingSvc,
		Analytics: analyticsSvc,
		Closer:    &report.Closer{Analytics: analyticsSvc, Bus: bus, Logger: logger},
	}
	if deps.Redis != nil {
		a.Closer.Lock = lock.Locker{R: deps.Redis}
	}
	a.Router = a.routes(deps)
	return a, nil
}

func (a *App) routes(deps Deps) http.Handler {
	cfg := a.Config
	logger := a.Logger

	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, deps.Registerer)
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), deps.Registerer)
	}

	var limiter ratelimit.Allower = ratelimit.NewMemory("rl:")
	if deps.Redis != nil {
		limiter = ratelimit.Sliding{Client: deps.Redis, Prefix: "barber:rl:"}
	}
	submitLimit := ratelimit.Handler{
		Limiter: limiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("commit:"),
			Window: time.Minute,
			Max:    cfg.RateLimitSubmitPerMinute,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}
	idem := &common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL}

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Catalog: a.Catalog})
	billingHandler := &billing.Handler{Svc: a.Billing, Location: cfg.Location()}
	transactionsHandler := &transactions.Handler{Store: a.Store}
	analyticsHandler := &analytics.Handler{Svc: a.Analytics}
	eventsHandler := &events.Handler{Journal: a.Journal}
	healthHandler := health.Handler{
		Checker: health.RedisChecker{Client: deps.Redis},
		Store:   a.Store,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.Obs.TracingEnabled {
		r.Use(obs.TracingMiddleware(cfg.Obs.ServiceName))
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "X-Total-Count", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.IsProduction()}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if httpMetrics != nil {
		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/services", catalogHandler.Services)
		v.Get("/barbers", catalogHandler.Barbers)
		v.Get("/barbers/{id}", catalogHandler.Barber)
		v.Get("/customers", catalogHandler.Customers)

		v.Post("/billing/quote", billingHandler.Quote)

		v.With(submitLimit.Middleware, idem.Middleware).Post("/transactions", billingHandler.Commit)
		v.Get("/transactions", transactionsHandler.List)
		v.Get("/transactions.csv", transactionsHandler.Export)
		v.Get("/transactions/{id}", transactionsHandler.Get)

		v.Get("/analytics/report", analyticsHandler.Report)
		v.Get("/analytics/report.csv", analyticsHandler.ExportCSV)

		v.Get("/events", eventsHandler.Recent)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
