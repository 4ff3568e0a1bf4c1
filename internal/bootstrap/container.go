package bootstrap

import (
	chclient "plutus/internal/adapters/clickhouse"
	"plutus/internal/adapters/config"
	"plutus/internal/adapters/errors/noop"
	"plutus/internal/adapters/errors/sentry"
	"plutus/internal/adapters/kafka"
	pgclient "plutus/internal/adapters/postgres"
	redisclient "plutus/internal/adapters/redis"
	"plutus/internal/api"
	"plutus/internal/api/health"
	"plutus/internal/api/reports"
	"plutus/internal/consumers"
	"plutus/internal/export"
	"plutus/internal/metrics"
	chrepo "plutus/internal/repository/clickhouse"
	pgrepo "plutus/internal/repository/postgres"
	redisrepo "plutus/internal/repository/redis"
	reportservice "plutus/internal/services/report"
	"plutus/internal/workers"
	"plutus/pkg/errors"
	"plutus/pkg/logger"
)

// Container holds all application dependencies in initialization order
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Data stores
	PG    *pgclient.Client
	CH    *chclient.Client
	Redis *redisclient.Client

	// Repositories
	TradeRepo *pgrepo.TradeRepository
	PrefsRepo *redisrepo.PrefsRepository
	AuditRepo *chrepo.AuditRepository
	Cache     *redisrepo.ReportCache

	// Services
	ReportService *reportservice.Service

	// Application layer
	HTTPServer      *api.Server
	TradeConsumer   *consumers.TradeConsumer
	WorkerScheduler *workers.Scheduler
}

// New builds the full dependency graph. Fails fast: any unreachable store
// aborts startup.
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	c.ErrorTracker = newErrorTracker(cfg, log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()

	if err := c.initStores(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initApplication()

	metrics.RegisterCollector(log, c.PG.DB(), c.CH.Conn(), c.Redis.Client())

	return c, nil
}

func newErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

func (c *Container) initStores() error {
	pg, err := pgclient.NewClient(c.Config.Postgres)
	if err != nil {
		return errors.Wrap(err, "postgres")
	}
	c.PG = pg

	ch, err := chclient.NewClient(c.Config.ClickHouse)
	if err != nil {
		return errors.Wrap(err, "clickhouse")
	}
	c.CH = ch

	rd, err := redisclient.NewClient(c.Config.Redis)
	if err != nil {
		return errors.Wrap(err, "redis")
	}
	c.Redis = rd

	c.Log.Info("Data stores connected")
	return nil
}

func (c *Container) initRepositories() {
	c.TradeRepo = pgrepo.NewTradeRepository(c.PG.DB())
	c.PrefsRepo = redisrepo.NewPrefsRepository(c.Redis.Client())
	c.AuditRepo = chrepo.NewAuditRepository(c.CH.Conn())
	c.Cache = redisrepo.NewReportCache(c.Redis.Client(), c.Config.Report.CacheTTL)
}

func (c *Container) initServices() {
	renderers := export.NewRegistry(c.Config.Export.PDFTableRows)
	c.ReportService = reportservice.NewService(
		c.TradeRepo, c.PrefsRepo, c.AuditRepo, c.Cache, renderers, c.Log,
	)
}

func (c *Container) initApplication() {
	healthHandler := health.New(
		c.Log, c.PG.DB(), c.CH.Conn(), c.Redis.Client(),
		c.Config.App.Name, c.Config.App.Version,
	)

	reportHandler := reports.NewHandler(
		c.ReportService,
		reports.NewExportLimiter(c.Config.Export.RatePerMinute),
		c.Log,
	)

	c.HTTPServer = api.NewServer(api.ServerConfig{
		Port:        c.Config.Server.Port,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, healthHandler, reportHandler, c.Log)

	tradeKafkaConsumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: c.Config.Kafka.Brokers,
		GroupID: c.Config.Kafka.GroupID,
		Topic:   kafka.TopicTradeClosed,
	})
	c.TradeConsumer = consumers.NewTradeConsumer(
		tradeKafkaConsumer, c.TradeRepo, c.ReportService, c.Log,
	)

	c.WorkerScheduler = workers.NewScheduler()
	c.WorkerScheduler.RegisterWorker(workers.NewCacheWarmWorker(
		c.TradeRepo,
		c.ReportService,
		c.Config.Workers.CacheWarmInterval,
		c.Config.Workers.ActiveUserWindow,
		c.Config.Workers.CacheWarmEnabled,
	))
}
