package export

import (
	"time"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
func (e *Exporter) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if e.observer == nil {
		return
	}

	e.observer.ObserveOperation(observability.OperationContext{
		Component:   "export",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
