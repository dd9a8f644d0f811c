package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"time"

	gomodbus "github.com/goburrow/modbus"

	"ecogw/internal/domain/models"
	"ecogw/internal/domain/repository"
	internalrepo "ecogw/internal/repository"
	"ecogw/internal/service/ecogaz"
	"ecogw/internal/service/ecowatt"
	"ecogw/internal/service/fetcher"
	"ecogw/internal/usecase"
	"ecogw/pkg/config"
	xhttp "ecogw/pkg/http"
	pkgkafka "ecogw/pkg/kafka"
	"ecogw/pkg/util"
)

const (
	exitNetwork     = 1
	exitFormat      = 2
	exitUsage       = 3
	exitUnavailable = 4
)

// exitError carries the process exit code of a failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, format string, args ...interface{}) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitNetwork
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	var (
		configPath string
		provider   string
		sandbox    bool
		read       string
		start      uint
		count      uint
		follow     bool
	)
	flag.StringVar(&configPath, "config", "", "config file path (optional)")
	flag.StringVar(&provider, "provider", "ecogaz", "provider to show: ecogaz or ecowatt")
	flag.BoolVar(&sandbox, "sandbox", false, "use the RTE sandbox signals endpoint")
	flag.StringVar(&read, "read", "", "read gateway registers from host:port instead of a provider")
	flag.UintVar(&start, "start", 0, "first register for -read")
	flag.UintVar(&count, "count", 6, "register count for -read")
	flag.BoolVar(&follow, "follow", false, "print windows published on the kafka topic")
	flag.Parse()

	cfg, err := config.Load(configPath, func(c *config.Config) {
		if sandbox {
			c.Ecowatt.Sandbox = true
		}
	})
	if err != nil {
		return withCode(exitUsage, "config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case read != "":
		if start > 0xFFFF || count == 0 || count > 125 {
			return withCode(exitUsage, "start must fit 16 bits and count be 1..125")
		}
		return readRegisters(read, uint16(start), uint16(count))
	case follow:
		return followWindows(ctx, cfg)
	default:
		return showProvider(ctx, cfg, provider)
	}
}

func showProvider(ctx context.Context, cfg *config.Config, provider string) error {
	loc, err := util.LoadLocation(cfg.Location)
	if err != nil {
		return withCode(exitUsage, "location: %w", err)
	}
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Scheduler.FetchTimeout))

	var (
		f      repository.SignalFetcher
		layout usecase.Layout
	)
	switch provider {
	case "ecogaz":
		f = fetcher.New(ecogaz.NewSource(cfg.Ecogaz.URL, client), ecogaz.Decode)
		layout = usecase.Layout{Start: cfg.Ecogaz.Start, Days: cfg.Ecogaz.Days, Location: loc, Palette: models.EcogazPalette}
	case "ecowatt":
		src := ecowatt.NewSource(ecowatt.Config{
			ClientID:     cfg.Ecowatt.ClientID,
			ClientSecret: cfg.Ecowatt.ClientSecret,
			TokenURL:     cfg.Ecowatt.TokenURL,
			SignalsURL:   cfg.Ecowatt.SignalsURL,
			Sandbox:      cfg.Ecowatt.Sandbox,
		}, client)
		f = fetcher.New(src, ecowatt.Decode)
		layout = usecase.Layout{Start: cfg.Ecowatt.Start, Days: cfg.Ecowatt.Days, Location: loc, Palette: models.EcowattPalette}
	default:
		return withCode(exitUsage, "unknown provider %q", provider)
	}

	signals, err := f.Fetch(ctx)
	if err != nil {
		return fetchError(err)
	}

	days := usecase.BuildWindow(layout, layout.Today(time.Now()), signals)
	renderWindow(os.Stdout, days, provider == "ecowatt")
	return nil
}

func fetchError(err error) error {
	if errors.Is(err, models.ErrFormat) {
		return withCode(exitFormat, "wrong data format: %w", err)
	}
	return withCode(exitNetwork, "network error: %w", err)
}

func readRegisters(addr string, start, count uint16) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(502))
	}
	h := gomodbus.NewTCPClientHandler(addr)
	h.Timeout = 5 * time.Second
	h.SlaveId = 1
	if err := h.Connect(); err != nil {
		return withCode(exitNetwork, "connect %s: %w", addr, err)
	}
	defer h.Close()

	b, err := gomodbus.NewClient(h).ReadHoldingRegisters(start, count)
	if err != nil {
		return readError(err, start, count)
	}
	renderRegisters(os.Stdout, start, b)
	return nil
}

// readError maps an illegal-data-address exception, which the gateway returns for
// registers with no data yet, to exitUnavailable.
func readError(err error, start, count uint16) error {
	var me *gomodbus.ModbusError
	if errors.As(err, &me) && me.ExceptionCode == gomodbus.ExceptionCodeIllegalDataAddress {
		return withCode(exitUnavailable, "registers %d..%d unavailable", start, int(start)+int(count)-1)
	}
	return withCode(exitNetwork, "read: %w", err)
}

func followWindows(ctx context.Context, cfg *config.Config) error {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerTopic(cfg.Kafka.Topic),
	)
	if err != nil {
		return withCode(exitUsage, "kafka: %w", err)
	}
	defer consumer.Close()

	err = consumer.Run(ctx, func(_ context.Context, _, value []byte) error {
		w, err := internalrepo.DecodeWindow(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip undecodable message: %v\n", err)
			return nil
		}
		fmt.Printf("%s run=%s fetched=%t at %s\n", w.Job, w.RunID, w.Fetched, w.Generated.Format(time.RFC3339))
		renderWindow(os.Stdout, w.Days, w.Job == "ecowatt")
		return nil
	})
	if err != nil {
		return withCode(exitNetwork, "kafka: %w", err)
	}
	return nil
}
