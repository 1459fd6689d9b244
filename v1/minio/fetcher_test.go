package minio

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestParseObjectURL(t *testing.T) {
	tests := []struct {
		ref        string
		wantBucket string
		wantKey    string
	}{
		{"s3://captures/Kismet-20240101.kismet", "captures", "Kismet-20240101.kismet"},
		{"minio://captures/2024/01/Kismet-20240101.kismet", "captures", "2024/01/Kismet-20240101.kismet"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			bucket, key, err := ParseObjectURL(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestParseObjectURL_Rejects(t *testing.T) {
	for _, ref := range []string{
		"captures/Kismet.kismet",
		"https://captures/Kismet.kismet",
		"s3://captures",
		"s3://captures/",
		"s3://captures/2024/",
		"s3:///Kismet.kismet",
		"s3://%zz/key",
	} {
		t.Run(ref, func(t *testing.T) {
			_, _, err := ParseObjectURL(ref)
			assert.ErrorIs(t, err, ErrInvalidObjectURL)
		})
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("s3://captures/a.kismet"))
	assert.True(t, IsRemote("minio://captures/a.kismet"))
	assert.False(t, IsRemote("/var/log/kismet/a.kismet"))
	assert.False(t, IsRemote("a.kismet"))
	assert.False(t, IsRemote("file:///var/log/kismet/a.kismet"))
}

func TestResolve_LocalPathPassesThrough(t *testing.T) {
	f, err := NewFetcher(Config{})
	require.NoError(t, err)
	assert.False(t, f.Configured())

	path, cleanup, err := f.Resolve(context.Background(), "/var/log/kismet/a.kismet")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/kismet/a.kismet", path)
	assert.NoError(t, cleanup())
}

func TestFetch_NotConfigured(t *testing.T) {
	f, err := NewFetcher(Config{})
	require.NoError(t, err)

	_, _, err = f.Resolve(context.Background(), "s3://captures/a.kismet")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, f.Ping(context.Background()), ErrNotConfigured)
}

func TestFetch_InvalidURLBeforeConfiguration(t *testing.T) {
	f, err := NewFetcher(Config{})
	require.NoError(t, err)

	_, _, err = f.Fetch(context.Background(), "s3://captures/")
	assert.ErrorIs(t, err, ErrInvalidObjectURL)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"NoSuchKey", ErrObjectNotFound},
		{"NoSuchBucket", ErrBucketNotFound},
		{"AccessDenied", ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			in := minio.ErrorResponse{Code: tt.code, BucketName: "captures", Key: "a.kismet", StatusCode: http.StatusNotFound}
			assert.ErrorIs(t, TranslateError(in), tt.want)
		})
	}

	other := errors.New("connection reset by peer")
	assert.Same(t, other, TranslateError(other))
	assert.NoError(t, TranslateError(nil))
}

func TestFXModule_WithoutEndpoint(t *testing.T) {
	var f *Fetcher
	app := fxtest.New(t,
		FXModule,
		fx.Supply(Config{}),
		fx.Populate(&f),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, f)
	assert.False(t, f.Configured())
}
