package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"ecogw/internal/domain/models"
	"ecogw/internal/domain/repository"
	"ecogw/internal/handler/api"
	"ecogw/internal/registers"
	internalrepo "ecogw/internal/repository"
	"ecogw/internal/scheduler"
	"ecogw/internal/service/ecogaz"
	"ecogw/internal/service/ecowatt"
	"ecogw/internal/service/fetcher"
	"ecogw/internal/usecase"
	"ecogw/pkg/cache"
	"ecogw/pkg/config"
	xhttp "ecogw/pkg/http"
	pkgkafka "ecogw/pkg/kafka"
	applogger "ecogw/pkg/logger"
	"ecogw/pkg/metrics"
	"ecogw/pkg/modbus"
	"ecogw/pkg/server"
	"ecogw/pkg/util"
)

// PollingJobs are the provider jobs, in register order.
type PollingJobs []*usecase.PollingJob

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideRegisterTable lays out one block per provider.
func ProvideRegisterTable(cfg *config.Config) (*registers.Table, error) {
	table, err := registers.NewTable(
		registers.Block{Name: "ecogaz", Start: cfg.Ecogaz.Start, Size: cfg.Ecogaz.Days},
		registers.Block{Name: "ecowatt", Start: cfg.Ecowatt.Start, Size: cfg.Ecowatt.Days},
	)
	if err != nil {
		return nil, fmt.Errorf("register table: %w", err)
	}
	return table, nil
}

// ProvideHTTPClient creates the outbound client shared by the providers.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Scheduler.FetchTimeout))
}

// ProvideCache creates the raw payload cache; nil when disabled.
func ProvideCache(cfg *config.Config) (cache.BytesCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxEntries),
			cache.WithMemoryCleanup(cfg.Cache.Memory.CleanupInterval),
		), nil
	case "redis":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdleConns, cfg.Cache.Redis.PoolTimeout),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	default:
		return nil, nil
	}
}

// ProvidePublisher creates the Kafka window publisher; nil when disabled.
func ProvidePublisher(cfg *config.Config, reg *prometheus.Registry) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

func fetcherOptions(cfg *config.Config, c cache.BytesCache, logger *applogger.Logger) []fetcher.Option {
	opts := []fetcher.Option{fetcher.WithLogger(logger)}
	if c != nil {
		opts = append(opts, fetcher.WithCache(c, cfg.Cache.TTL))
	}
	if cfg.Breaker.Enabled {
		opts = append(opts, fetcher.WithBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout))
	}
	return opts
}

// ProvidePollingJobs builds the ecogaz and ecowatt jobs.
func ProvidePollingJobs(
	cfg *config.Config,
	client *xhttp.Client,
	c cache.BytesCache,
	table *registers.Table,
	recorder *metrics.Recorder,
	pub repository.Publisher,
	logger *applogger.Logger,
) (PollingJobs, error) {
	loc, err := util.LoadLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", cfg.Location, err)
	}

	jobOpts := []usecase.PollingJobOption{usecase.WithFetchTimeout(cfg.Scheduler.FetchTimeout)}
	if pub != nil {
		jobOpts = append(jobOpts, usecase.WithPublisher(pub))
	}

	gaz := fetcher.New(
		ecogaz.NewSource(cfg.Ecogaz.URL, client),
		ecogaz.Decode,
		fetcherOptions(cfg, c, logger)...,
	)

	wattOpts := fetcherOptions(cfg, c, logger)
	if cfg.Ecowatt.MinRequestInterval > 0 {
		wattOpts = append(wattOpts, fetcher.WithLimiter(rate.NewLimiter(rate.Every(cfg.Ecowatt.MinRequestInterval), 1)))
	}
	watt := fetcher.New(
		ecowatt.NewSource(ecowatt.Config{
			ClientID:     cfg.Ecowatt.ClientID,
			ClientSecret: cfg.Ecowatt.ClientSecret,
			TokenURL:     cfg.Ecowatt.TokenURL,
			SignalsURL:   cfg.Ecowatt.SignalsURL,
			Sandbox:      cfg.Ecowatt.Sandbox,
		}, client),
		ecowatt.Decode,
		wattOpts...,
	)

	return PollingJobs{
		usecase.NewPollingJob(gaz,
			usecase.Layout{Start: cfg.Ecogaz.Start, Days: cfg.Ecogaz.Days, Location: loc, Palette: models.EcogazPalette},
			table, recorder, logger, jobOpts...),
		usecase.NewPollingJob(watt,
			usecase.Layout{Start: cfg.Ecowatt.Start, Days: cfg.Ecowatt.Days, Location: loc, Palette: models.EcowattPalette},
			table, recorder, logger, jobOpts...),
	}, nil
}

// ProvideScheduler registers every job with its schedule.
func ProvideScheduler(cfg *config.Config, jobs PollingJobs, table *registers.Table, logger *applogger.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(logger, scheduler.WithTick(cfg.Scheduler.Tick))

	schedules := []scheduler.Schedule{
		{Interval: cfg.Ecogaz.Interval, Enabled: cfg.Ecogaz.Enabled, RunNow: cfg.Ecogaz.RunNow},
		{Interval: cfg.Ecowatt.Interval, Enabled: cfg.Ecowatt.Enabled, RunNow: cfg.Ecowatt.RunNow},
	}
	for i, job := range jobs {
		if err := s.Add(job, schedules[i]); err != nil {
			return nil, err
		}
	}

	debug := scheduler.Schedule{Interval: cfg.Debug.Interval, Enabled: cfg.Debug.Enabled}
	if err := s.Add(usecase.NewDebugJob(table, logger), debug); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideRegisterServer creates the read side of the table.
func ProvideRegisterServer(table *registers.Table, recorder *metrics.Recorder) *usecase.RegisterServer {
	return usecase.NewRegisterServer(table, recorder)
}

// ProvideModbusServer creates the Modbus TCP listener.
func ProvideModbusServer(cfg *config.Config, rs *usecase.RegisterServer, logger *applogger.Logger) (*modbus.Server, error) {
	return modbus.NewServer(rs, logger,
		modbus.WithAddress(cfg.Modbus.Host, cfg.Modbus.Port),
		modbus.WithTimeout(cfg.Modbus.Timeout),
		modbus.WithMaxClients(cfg.Modbus.MaxClients),
	)
}

// ProvideHTTPServer creates the status API server; nil when disabled.
func ProvideHTTPServer(
	cfg *config.Config,
	rs *usecase.RegisterServer,
	sched *scheduler.Scheduler,
	jobs PollingJobs,
	reg *prometheus.Registry,
	recorder *metrics.Recorder,
	logger *applogger.Logger,
) *xhttp.Server {
	if !cfg.HTTP.Enabled {
		return nil
	}

	windows := make([]api.WindowSource, 0, len(jobs))
	for _, j := range jobs {
		windows = append(windows, j)
	}
	handler := api.NewStatusEchoHandler(logger, rs, sched, windows...)

	return xhttp.NewServer(handler, logger,
		xhttp.WithHost(cfg.HTTP.Host),
		xhttp.WithPort(cfg.HTTP.Port),
		xhttp.WithTimeouts(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, cfg.HTTP.ShutdownTimeout),
		xhttp.WithMetrics(reg, recorder),
	)
}

// ProvideApp assembles the lifecycle.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	sched *scheduler.Scheduler,
	mb *modbus.Server,
	httpSrv *xhttp.Server,
	pub repository.Publisher,
	c cache.BytesCache,
) *server.App {
	opts := []server.Option{
		server.WithListener("modbus", mb),
		server.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout + cfg.Scheduler.FetchTimeout),
	}
	if httpSrv != nil {
		opts = append(opts, server.WithListener("http", httpSrv))
	}
	if pub != nil {
		opts = append(opts, server.WithCloser("kafka", pub))
	}
	if c != nil {
		opts = append(opts, server.WithCloser("cache", c))
	}

	logger.Info("gateway configured",
		applogger.String("modbus", fmt.Sprintf("%s:%d", cfg.Modbus.Host, cfg.Modbus.Port)),
		applogger.Bool("http", cfg.HTTP.Enabled),
		applogger.String("cache", cfg.Cache.Backend),
		applogger.Bool("kafka", cfg.Kafka.Enabled),
		applogger.Duration("tick_ms", cfg.Scheduler.Tick),
	)
	return server.New(logger, sched, opts...)
}
