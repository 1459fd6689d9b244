package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/jonathanfoster/python-kismet-db/v1/export"
	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
	"github.com/jonathanfoster/python-kismet-db/v1/logger"
	"github.com/jonathanfoster/python-kismet-db/v1/metrics"
	"github.com/jonathanfoster/python-kismet-db/v1/minio"
	"github.com/jonathanfoster/python-kismet-db/v1/tracer"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 15 * time.Second
)

// services are the components a command runs against.
type services struct {
	fx.In

	Reader   kismetdb.Reader
	Fetcher  *minio.Fetcher
	Exporter *export.Exporter
	Logger   *logger.Logger
	Tracer   *tracer.Tracer
}

// envCarrier reads a parent trace context handed down by the calling process
// through the TRACEPARENT, TRACESTATE and BAGGAGE environment variables.
func envCarrier() map[string]string {
	carrier := make(map[string]string)
	for _, key := range []string{"traceparent", "tracestate", "baggage"} {
		if v := os.Getenv(strings.ToUpper(key)); v != "" {
			carrier[key] = v
		}
	}
	return carrier
}

// runApp starts the module graph for cfg, calls run, then stops the graph.
// out is the destination of the jsonl sink.
func runApp(ctx context.Context, cfg AppConfig, out io.Writer, run func(context.Context, services) error) error {
	var svc services
	app := fx.New(
		fx.WithLogger(func(l *logger.Logger) fxevent.Logger {
			zl := &fxevent.ZapLogger{Logger: l.Zap.Named("fx")}
			zl.UseLogLevel(zapcore.DebugLevel)
			return zl
		}),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		kismetdb.FXModule,
		minio.FXModule,
		export.FXModule,
		fx.Supply(cfg.Logger, cfg.Metrics, cfg.Tracer, cfg.Reader, cfg.Minio, cfg.Export),
		fx.Provide(
			fx.Annotate(
				func() io.Writer { return out },
				fx.ResultTags(`name:"export_output"`),
			),
			func(l *logger.Logger) kismetdb.Logger { return l },
			func(l *logger.Logger) tracer.Logger { return l },
			func(l *logger.Logger) minio.Logger { return l },
			func(l *logger.Logger) export.Logger { return l },
		),
		fx.Invoke(func(s services) { svc = s }),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := run(svc.Tracer.SetCarrierOnContext(ctx, envCarrier()), svc)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
