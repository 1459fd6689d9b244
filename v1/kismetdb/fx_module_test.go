package kismetdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

func TestFXModule_ProvidesReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().Info("kismet log reader ready", nil, gomock.Any()).Times(1)

	var reader Reader
	app := fxtest.New(t,
		FXModule,
		fx.Supply(Config{DecodePolicy: DecodeSkip}),
		fx.Provide(func() Logger { return log }),
		fx.Populate(&reader),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, reader)
	client, ok := reader.(*Client)
	require.True(t, ok)
	assert.Equal(t, DecodeSkip, client.Config().DecodePolicy)
	assert.Equal(t, DefaultMaxOpenConns, client.Config().MaxOpenConns)
}

func TestFXModule_WiresObserver(t *testing.T) {
	var seen []observability.OperationContext
	obs := observability.ObserverFunc(func(ctx observability.OperationContext) {
		seen = append(seen, ctx)
	})

	var reader Reader
	app := fxtest.New(t,
		FXModule,
		fx.Supply(Config{}),
		fx.Provide(func() observability.Observer { return obs }),
		fx.Populate(&reader),
	)
	app.RequireStart()
	defer app.RequireStop()

	l := seedDevices(t, 5)
	version, err := reader.DetectVersion(context.Background(), l.path)
	require.NoError(t, err)
	assert.Equal(t, 5, version)

	require.Len(t, seen, 1)
	assert.Equal(t, "detect_version", seen[0].Operation)
	assert.Equal(t, l.path, seen[0].Resource)
}
