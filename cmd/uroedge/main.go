package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/urosmart/uroedge/coordinator"
	"github.com/urosmart/uroedge/coordinator/api"
	"github.com/urosmart/uroedge/coordinator/middleware"
	"github.com/urosmart/uroedge/detection"
	"github.com/urosmart/uroedge/pkg/connectivity"
	"github.com/urosmart/uroedge/pkg/mqtt"
	"github.com/urosmart/uroedge/pkg/storage"
)

const (
	svcName       = "coordinator"
	defHTTPPort   = "8090"
	envPrefixHTTP = "UROEDGE_HTTP_"
	pathEnv       = ".env"
)

type envConfig struct {
	LogLevel      string        `env:"UROEDGE_LOG_LEVEL"      envDefault:"info"`
	InstanceID    string        `env:"UROEDGE_INSTANCE_ID"`
	StorageDir    string        `env:"UROEDGE_STORAGE_DIR"    envDefault:"./models"`
	BootstrapPath string        `env:"UROEDGE_BOOTSTRAP_PATH"`
	Threshold     int           `env:"UROEDGE_THRESHOLD"      envDefault:"3"`
	MaxPending    int           `env:"UROEDGE_MAX_PENDING"    envDefault:"64"`
	AggInterval   time.Duration `env:"UROEDGE_AGG_INTERVAL"   envDefault:"1800s"`
	AggSchedule   string        `env:"UROEDGE_AGG_SCHEDULE"`
	ProbeAddr     string        `env:"UROEDGE_PROBE_ADDR"     envDefault:"8.8.8.8:53"`
	ProbeURL      string        `env:"UROEDGE_PROBE_URL"      envDefault:"https://www.google.com"`
	ProbeTimeout  time.Duration `env:"UROEDGE_PROBE_TIMEOUT"  envDefault:"3s"`
	CacheTTL      time.Duration `env:"UROEDGE_CACHE_TTL"      envDefault:"30s"`
	PollInterval  time.Duration `env:"UROEDGE_POLL_INTERVAL"  envDefault:"60s"`
	MQTTAddress   string        `env:"UROEDGE_MQTT_ADDRESS"`
	MQTTQoS       uint8         `env:"UROEDGE_MQTT_QOS"       envDefault:"2"`
	MQTTTimeout   time.Duration `env:"UROEDGE_MQTT_TIMEOUT"   envDefault:"30s"`
	MQTTUsername  string        `env:"UROEDGE_MQTT_USERNAME"`
	MQTTPassword  string        `env:"UROEDGE_MQTT_PASSWORD"`
	OTELURL       url.URL       `env:"UROEDGE_OTEL_URL"`
	TraceRatio    float64       `env:"UROEDGE_TRACE_RATIO"    envDefault:"0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, "", cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	var pubsub mqtt.PubSub
	if cfg.MQTTAddress != "" {
		ps, err := mqtt.NewPubSub(cfg.MQTTAddress, cfg.MQTTQoS, svcName, cfg.MQTTUsername, cfg.MQTTPassword, cfg.MQTTTimeout, logger)
		if err != nil {
			logger.Error("failed to initialize mqtt pubsub", slog.String("error", err.Error()))

			return
		}
		pubsub = ps
	}

	store, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		logger.Error("failed to initialize model store", slog.String("error", err.Error()))

		return
	}

	monitor := connectivity.NewMonitor(connectivity.Config{
		ProbeAddr:    cfg.ProbeAddr,
		ProbeURL:     cfg.ProbeURL,
		ProbeTimeout: cfg.ProbeTimeout,
		CacheTTL:     cfg.CacheTTL,
		PollInterval: cfg.PollInterval,
	}, logger)

	// The inference runtime is attached by the deployment; without one
	// the detection endpoints fail closed.
	pipeline := detection.NewPipeline(nil, logger)

	svc, err := coordinator.NewService(coordinator.Config{
		Threshold:     cfg.Threshold,
		MaxPending:    cfg.MaxPending,
		Interval:      cfg.AggInterval,
		CronExpr:      cfg.AggSchedule,
		BootstrapPath: cfg.BootstrapPath,
	}, store, monitor, pubsub, pipeline, logger)
	if err != nil {
		logger.Error("failed to initialize coordinator", slog.String("error", err.Error()))

		return
	}
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	if pubsub != nil {
		if err := svc.Subscribe(ctx); err != nil {
			logger.Error("failed to subscribe to update topic", slog.String("error", err.Error()))

			return
		}
	}

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))

		return
	}

	hs := httpserver.NewServer(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		svc.Start(ctx)

		return nil
	})

	g.Go(func() error {
		monitor.Poll(ctx)

		return nil
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
}
