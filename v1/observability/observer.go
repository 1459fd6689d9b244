// Package observability defines the hook through which library packages
// report the operations they perform. Packages accept an optional Observer and
// call it once per operation; what happens next (metrics, logs, audit trails)
// is up to the implementation plugged in by the application.
//
// Example:
//
//	type countingObserver struct{ n atomic.Int64 }
//
//	func (o *countingObserver) ObserveOperation(ctx observability.OperationContext) {
//	    o.n.Add(1)
//	}
//
//	client := kismetdb.NewClient(cfg, log).WithObserver(&countingObserver{})
package observability

import "time"

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "kismetdb" or "minio".
	Component string

	// Operation is the verb, e.g. "open", "get_meta", "fetch".
	Operation string

	// Resource is the primary object, e.g. a table name or a bucket.
	Resource string

	// SubResource further qualifies Resource, e.g. an object key. May be empty.
	SubResource string

	// Duration is the wall time the operation took.
	Duration time.Duration

	// Error is the operation's error, nil on success.
	Error error

	// Size is an operation-specific count: rows read, bytes fetched, records sent.
	Size int64

	// Metadata carries extra component-specific fields. May be nil.
	Metadata map[string]interface{}
}

// Status returns "error" when the operation failed and "success" otherwise.
func (c OperationContext) Status() string {
	if c.Error != nil {
		return "error"
	}
	return "success"
}

// Observer receives operation reports. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}
