package kismetdb

import (
	"time"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
// This is used internally to track opens, queries and decode failures for metrics.
//
// Notes:
//   - resource: table name
//   - subResource: optional qualifier, unused by queries
func (t *Table) observeOperation(operation, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if t == nil || t.observer == nil {
		return
	}

	t.observer.ObserveOperation(observability.OperationContext{
		Component:   "kismetdb",
		Operation:   operation,
		Resource:    t.name,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}

// observeOperation reports client-level operations that happen outside any table.
func (c *Client) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   "kismetdb",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
