package minio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jonathanfoster/python-kismet-db/v1/observability"
)

// Logger is the context-aware logging surface the fetcher uses.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=minio
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// remoteSchemes are the URL schemes Resolve treats as object references.
var remoteSchemes = map[string]bool{"s3": true, "minio": true}

// Fetcher downloads Kismet logs stored in MinIO or S3 to local files, since
// SQLite can only open files on disk.
type Fetcher struct {
	client   *minio.Client
	cfg      Config
	logger   Logger
	observer observability.Observer
}

// NewFetcher creates a Fetcher. No request is made; use Ping to check the
// connection. With an empty endpoint the Fetcher still resolves local paths
// but every remote fetch fails with ErrNotConfigured.
//
// Example:
//
//	f, err := minio.NewFetcher(minio.Config{Connection: minio.ConnectionConfig{
//	    Endpoint:        "localhost:9000",
//	    AccessKeyID:     "minio_admin",
//	    SecretAccessKey: "minio_admin",
//	}})
//	if err != nil {
//	    return err
//	}
//	path, cleanup, err := f.Resolve(ctx, "s3://captures/2024/Kismet-20240101-10-00-00-1.kismet")
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
func NewFetcher(cfg Config) (*Fetcher, error) {
	f := &Fetcher{cfg: cfg}
	if cfg.Connection.Endpoint == "" {
		return f, nil
	}

	client, err := minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	f.client = client
	return f, nil
}

// WithLogger attaches a logger and returns the fetcher for chaining.
func (f *Fetcher) WithLogger(logger Logger) *Fetcher {
	f.logger = logger
	return f
}

// WithObserver attaches an observer notified of every fetch.
func (f *Fetcher) WithObserver(observer observability.Observer) *Fetcher {
	f.observer = observer
	return f
}

// Configured reports whether remote logs can be fetched.
func (f *Fetcher) Configured() bool {
	return f.client != nil
}

// Ping checks that the endpoint answers and the credentials are accepted.
func (f *Fetcher) Ping(ctx context.Context) error {
	if f.client == nil {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := f.client.ListBuckets(ctx)
	return TranslateError(err)
}

// IsRemote reports whether ref is an s3:// or minio:// object reference.
func IsRemote(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && remoteSchemes[u.Scheme]
}

// ParseObjectURL splits an s3://bucket/key or minio://bucket/key reference.
func ParseObjectURL(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidObjectURL, err)
	}
	if !remoteSchemes[u.Scheme] {
		return "", "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidObjectURL, u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q must name a bucket and an object", ErrInvalidObjectURL, ref)
	}
	return u.Host, key, nil
}

// Resolve returns a local path for ref. Local paths are returned as is with a
// no-op cleanup; object references are downloaded with Fetch.
func (f *Fetcher) Resolve(ctx context.Context, ref string) (string, func() error, error) {
	if !IsRemote(ref) {
		return ref, func() error { return nil }, nil
	}
	return f.Fetch(ctx, ref)
}

// Fetch downloads the object behind ref into a fresh temporary directory.
// The returned cleanup removes the directory; callers must call it once the
// log is closed.
//
// Parameters:
//   - ctx: Context for the download
//   - ref: s3://bucket/key or minio://bucket/key
//
// Returns:
//   - string: Path of the downloaded file, keeping the object's base name
//   - func() error: Removes the download
//   - error: ErrInvalidObjectURL, ErrNotConfigured, ErrObjectNotFound,
//     ErrBucketNotFound, ErrAccessDenied or a transport error
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, func() error, error) {
	start := time.Now()

	bucket, key, err := ParseObjectURL(ref)
	if err != nil {
		return "", nil, err
	}
	if f.client == nil {
		return "", nil, ErrNotConfigured
	}

	local, size, err := f.download(ctx, bucket, key)
	f.observeOperation("fetch", bucket, key, time.Since(start), err, size, nil)
	if err != nil {
		f.logError(ctx, "failed to fetch kismet log", err, map[string]interface{}{
			"bucket": bucket,
			"key":    key,
		})
		return "", nil, err
	}

	f.logInfo(ctx, "fetched kismet log", map[string]interface{}{
		"bucket": bucket,
		"key":    key,
		"bytes":  size,
		"path":   local,
	})
	dir := filepath.Dir(local)
	return local, func() error { return os.RemoveAll(dir) }, nil
}

func (f *Fetcher) download(ctx context.Context, bucket, key string) (string, int64, error) {
	info, err := f.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		err = TranslateError(err)
		// A HEAD on a missing bucket can come back as NoSuchKey.
		if errors.Is(err, ErrObjectNotFound) {
			if ok, existsErr := f.client.BucketExists(ctx, bucket); existsErr == nil && !ok {
				return "", 0, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
			}
		}
		return "", 0, err
	}

	dir, err := os.MkdirTemp(f.cfg.Download.TempDir, "kismetdb-fetch-")
	if err != nil {
		return "", 0, fmt.Errorf("create download directory: %w", err)
	}

	local := filepath.Join(dir, path.Base(key))
	if err := f.client.FGetObject(ctx, bucket, key, local, minio.GetObjectOptions{}); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			f.logWarn(ctx, "failed to remove partial download", rmErr, map[string]interface{}{"dir": dir})
		}
		return "", 0, TranslateError(err)
	}
	return local, info.Size, nil
}

func (f *Fetcher) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if f.logger != nil {
		f.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (f *Fetcher) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if f.logger != nil {
		f.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (f *Fetcher) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if f.logger != nil {
		f.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
