package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// ObserveOperation records one completed operation. It implements
// observability.Observer, so *Metrics can be handed to kismetdb.Client,
// export.Exporter and minio.Fetcher.
//
// Size is added to items_total when positive. Successful operations update
// last_success_timestamp_seconds.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	labels := prometheus.Labels{
		"component": ctx.Component,
		"operation": ctx.Operation,
		"resource":  ctx.Resource,
	}

	m.operationsTotal.With(prometheus.Labels{
		"component": ctx.Component,
		"operation": ctx.Operation,
		"resource":  ctx.Resource,
		"status":    ctx.Status(),
	}).Inc()

	if ctx.Duration > 0 {
		m.operationDuration.With(labels).Observe(ctx.Duration.Seconds())
	}
	if ctx.Size > 0 {
		m.itemsTotal.With(labels).Add(float64(ctx.Size))
	}
	if ctx.Error == nil {
		m.lastSuccess.With(labels).SetToCurrentTime()
	}
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
