package minio

import (
	"context"

	"go.uber.org/fx"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// FXModule provides the log Fetcher. When an endpoint is configured the
// connection is checked on start.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    minio.FXModule,
//	    fx.Supply(minio.Config{Connection: minio.ConnectionConfig{Endpoint: "localhost:9000"}}),
//	    fx.Provide(func(l *logger.Logger) minio.Logger { return l }),
//	)
var FXModule = fx.Module("minio",
	fx.Provide(NewFetcherWithDI),
	fx.Invoke(RegisterMinioLifecycle),
)

// MinioParams groups the dependencies needed to create a Fetcher.
type MinioParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewFetcherWithDI creates a Fetcher from injected dependencies.
func NewFetcherWithDI(params MinioParams) (*Fetcher, error) {
	f, err := NewFetcher(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		f = f.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		f = f.WithObserver(params.Observer)
	}
	return f, nil
}

// RegisterMinioLifecycle pings the endpoint on start. A fetcher without an
// endpoint starts without a check.
func RegisterMinioLifecycle(lc fx.Lifecycle, f *Fetcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !f.Configured() {
				return nil
			}
			if err := f.Ping(ctx); err != nil {
				return err
			}
			f.logInfo(ctx, "minio fetcher connected", map[string]interface{}{
				"endpoint": f.cfg.Connection.Endpoint,
			})
			return nil
		},
	})
}
