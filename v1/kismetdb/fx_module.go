package kismetdb

import (
	"context"

	"go.uber.org/fx"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// FXModule is an fx module that provides the Kismet log reader.
// It registers the Client constructor for dependency injection, exposes it
// as the Reader interface, and logs the effective configuration on start.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    kismetdb.FXModule,
//	    fx.Provide(
//	        func() kismetdb.Config { return kismetdb.Config{DecodePolicy: kismetdb.DecodeSkip} },
//	        func(l *logger.Logger) kismetdb.Logger { return l },
//	    ),
//	    fx.Invoke(func(r kismetdb.Reader) { /* open tables */ }),
//	)
//
// Dependencies required by this module:
//   - A kismetdb.Config instance
//   - Optionally a kismetdb.Logger and an observability.Observer
var FXModule = fx.Module("kismetdb",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			ProvideReader,
			fx.As(new(Reader)),
		),
	),
	fx.Invoke(RegisterKismetDBLifecycle),
)

// ProvideReader exposes the concrete *Client as the Reader interface.
func ProvideReader(c *Client) Reader {
	return c
}

// KismetDBParams groups the dependencies needed to create a Client.
type KismetDBParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Client from injected dependencies. The logger and
// observer are attached only when the container provides them.
func NewClientWithDI(params KismetDBParams) *Client {
	client := NewClient(params.Config, params.Logger)
	if params.Observer != nil {
		client = client.WithObserver(params.Observer)
	}
	return client
}

// RegisterKismetDBLifecycle logs the reader configuration once the
// application starts. Tables are closed by whoever opened them.
func RegisterKismetDBLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			client.logger.Info("kismet log reader ready", nil, map[string]interface{}{
				"decode_policy":  string(client.cfg.DecodePolicy),
				"max_open_conns": client.cfg.MaxOpenConns,
				"tables":         SchemaNames(),
			})
			return nil
		},
	})
}
