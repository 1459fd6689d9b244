package export

import (
	"context"
	"io"

	"go.uber.org/fx"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
	"github.com/jonathanfoster/python-kismet-db/v1/tracer"
)

// FXModule provides the configured Sink and an Exporter writing to it. The
// sink is closed when the application stops.
var FXModule = fx.Module("export",
	fx.Provide(
		NewSinkWithDI,
		NewExporterWithDI,
	),
	fx.Invoke(RegisterExportLifecycle),
)

// SinkParams groups the dependencies needed to build a Sink.
type SinkParams struct {
	fx.In

	Config Config
	Output io.Writer      `name:"export_output" optional:"true"`
	Tracer *tracer.Tracer `optional:"true"`
}

// NewSinkWithDI builds the sink named by the injected Config.
func NewSinkWithDI(params SinkParams) (Sink, error) {
	var carrier CarrierFunc
	if params.Tracer != nil {
		carrier = params.Tracer.GetCarrier
	}
	return NewSink(context.Background(), params.Config, params.Output, carrier)
}

// ExporterParams groups the dependencies needed to create an Exporter.
type ExporterParams struct {
	fx.In

	Sink     Sink
	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewExporterWithDI creates an Exporter from injected dependencies.
func NewExporterWithDI(params ExporterParams) *Exporter {
	e := NewExporter(params.Sink, params.Config)
	if params.Logger != nil {
		e = e.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		e = e.WithObserver(params.Observer)
	}
	return e
}

// RegisterExportLifecycle closes the sink on stop.
func RegisterExportLifecycle(lc fx.Lifecycle, sink Sink) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return sink.Close()
		},
	})
}
