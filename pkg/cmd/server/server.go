package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	natsio "github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/log"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/config"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/db/postgres"
	ingest "github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/ingest/nats"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/processing/fuel"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/repository/fuelhistory"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/utils"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/utils/broadcast"
)

var appConfig config.Config // holds processed config values

//nolint:funlen // by design
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the fuel strategy processor",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			appConfig = config.Config{PrintMessage: config.PrintMessage}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"debug",
		"controls the log level for sql methods")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules for the text logger, e.g. 'debug:fuel.* info:*'")
	cmd.Flags().Float64Var(&config.FuelCutoff,
		"fuel-cutoff",
		fuel.DefaultFuelCutoff,
		"amount of fuel the engine needs to not run dry")
	cmd.Flags().Float64Var(&config.PitQuirkThreshold,
		"pit-quirk-threshold",
		0.5,
		"track pct below which 'approaching pits' is treated as pit exit")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().BoolVar(&config.PrintMessage,
		"print-message",
		false,
		"if true and log level is debug, the snapshot payload will be printed")
	cmd.Flags().StringVar(&config.TLSCertFile,
		"tls-cert",
		"",
		"file containing the TLS certificate for the NATS connection")
	cmd.Flags().StringVar(&config.TLSKeyFile,
		"tls-key",
		"",
		"file containing the TLS private key for the NATS connection")
	cmd.Flags().StringVar(&config.TLSCAFile,
		"tls-ca",
		"",
		"file containing the root CA used to verify the NATS server")
	cmd.Flags().StringVar(&config.TraefikCerts,
		"traefik-certs",
		"",
		"path to the traefik acme.json file")
	cmd.Flags().StringVar(&config.TraefikCertDomain,
		"traefik-cert-domain",
		"",
		"domain to lookup within the traefik certs")
	cmd.Flags().StringVar(&config.HistoryCacheTTL,
		"history-cache-ttl",
		"5m",
		"duration to keep fuel history entries cached")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLoggers() (logger, sqlLogger *log.Logger) {
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		if config.LogFilter != "" {
			var err error
			logger, err = log.DevLoggerWithFilter(
				os.Stderr,
				config.LogFilter,
				log.WithCaller(true),
				log.AddCallerSkip(1))
			if err != nil {
				log.Warn("invalid log filter rules, ignoring",
					log.ErrorField(err))
			}
		}
		if logger == nil {
			logger = log.DevLogger(
				os.Stderr,
				parseLogLevel(config.LogLevel, log.DebugLevel),
				log.WithCaller(true),
				log.AddCallerSkip(1))
		}
		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	return logger, sqlLogger
}

func waitForRequiredServices() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	wg := errgroup.Group{}
	wg.Go(func() error {
		return utils.WaitForTCP(utils.ExtractFromDBURL(config.DB), timeout)
	})
	wg.Go(func() error {
		return utils.WaitForTCP(utils.ExtractFromNatsURL(config.NatsURL), timeout)
	})
	if err := wg.Wait(); err != nil {
		log.Fatal("required services not ready", log.ErrorField(err))
	}
}

//nolint:funlen,cyclop // by design
func startServer() error {
	logger, sqlLogger := setupLoggers()
	log.ResetDefault(logger)

	log.Debug("Config:",
		log.String("db", config.DB),
		log.String("natsUrl", config.NatsURL),
		log.String("subjectPrefix", config.SubjectPrefix),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port",
			log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	waitForRequiredServices()

	var telemetry *config.Telemetry
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(context.Background()); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(
			otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	log.Info("Starting server")
	pool := postgres.InitWithURL(
		config.DB,
		postgres.WithTracer(sqlLogger),
	)
	defer postgres.CloseDb()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	natsOpts := []natsio.Option{}
	if tlsConfig := NewTLSConfigProvider(ctx, logger); tlsConfig != nil {
		natsOpts = append(natsOpts, natsio.Secure(tlsConfig))
	}
	conn, err := natsio.Connect(config.NatsURL, natsOpts...)
	if err != nil {
		log.Error("could not connect to NATS", log.ErrorField(err))
		return err
	}
	defer conn.Close()

	orchestrator := fuel.NewOrchestrator(
		fuel.WithHistoryStore(historyStore(pool)),
		fuel.WithFuelCutoff(config.FuelCutoff),
		fuel.WithPitQuirkThreshold(config.PitQuirkThreshold),
		fuel.WithLogger(logger.Named("fuel")))

	source, err := ingest.NewSource(conn, orchestrator,
		ingest.WithContext(ctx),
		ingest.WithSubjectPrefix(config.SubjectPrefix))
	if err != nil {
		log.Error("could not attach to telemetry subjects", log.ErrorField(err))
		return err
	}
	defer source.Close()

	bcst := broadcast.NewBroadcastServer(
		config.SubjectPrefix, "snapshots", source.Snapshots())
	defer bcst.Close()

	log.Info("Server started")

	wg, wgCtx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		ch := bcst.Subscribe()
		defer bcst.CancelSubscription(ch)
		for {
			select {
			case <-wgCtx.Done():
				return nil
			case snap, ok := <-ch:
				if !ok {
					return nil
				}
				publishSnapshot(conn, snap)
			}
		}
	})
	if err := wg.Wait(); err != nil {
		log.Error("server terminated with error", log.ErrorField(err))
	}

	if telemetry != nil {
		telemetry.Shutdown()
	}

	log.Info("Server terminated")
	return nil
}

func historyStore(pool *pgxpool.Pool) fuel.HistoryStore {
	ttl, err := time.ParseDuration(config.HistoryCacheTTL)
	if err != nil {
		log.Warn("Invalid history cache ttl. Setting default 5m",
			log.ErrorField(err))
		ttl = 5 * time.Minute
	}
	return fuelhistory.NewCachedStore(fuelhistory.NewDbStore(pool), ttl)
}

func publishSnapshot(conn *natsio.Conn, snap *model.FuelSnapshot) {
	if appConfig.PrintMessage && log.DebugEnabled() {
		log.Debug("snapshot",
			log.Int("lapsCompleted", snap.LapsCompleted),
			log.Int("lapsRemaining", snap.RaceLapsRemaining),
			log.Float64("fuel", snap.CurrentFuelLevel))
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error("could not marshal snapshot", log.ErrorField(err))
		return
	}
	subject := fmt.Sprintf("%s.snapshot", config.SubjectPrefix)
	if err := conn.Publish(subject, data); err != nil {
		log.Warn("could not publish snapshot", log.ErrorField(err))
	}
}
