package observability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationContext_Status(t *testing.T) {
	assert.Equal(t, "success", OperationContext{Operation: "get_meta"}.Status())
	assert.Equal(t, "error", OperationContext{Operation: "fetch", Error: errors.New("no such key")}.Status())
}

func TestObserverFunc(t *testing.T) {
	var got []string
	var obs Observer = ObserverFunc(func(ctx OperationContext) {
		got = append(got, ctx.Component+"."+ctx.Operation)
	})

	obs.ObserveOperation(OperationContext{Component: "kismetdb", Operation: "open"})
	obs.ObserveOperation(OperationContext{Component: "minio", Operation: "fetch"})

	assert.Equal(t, []string{"kismetdb.open", "minio.fetch"}, got)
}
