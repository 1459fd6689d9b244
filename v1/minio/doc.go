// Package minio fetches Kismet logs kept in MinIO or another S3-compatible
// object store.
//
// SQLite opens files, not streams, so a log referenced as
// s3://bucket/key (or minio://bucket/key) is downloaded into a temporary
// directory first. Resolve passes local paths through untouched, which lets
// the command line tool accept both forms:
//
//	path, cleanup, err := fetcher.Resolve(ctx, arg)
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
//	devices, err := reader.Devices(ctx, path)
package minio
