package minio

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Common fetcher errors
var (
	// ErrNotConfigured is returned when a remote log is requested but no endpoint is configured.
	ErrNotConfigured = errors.New("minio: no endpoint configured")

	// ErrInvalidObjectURL is returned for URLs that are not s3://bucket/key or minio://bucket/key.
	ErrInvalidObjectURL = errors.New("minio: invalid object url")

	// ErrObjectNotFound is returned when the object does not exist.
	ErrObjectNotFound = errors.New("minio: object not found")

	// ErrBucketNotFound is returned when the bucket does not exist.
	ErrBucketNotFound = errors.New("minio: bucket not found")

	// ErrAccessDenied is returned when the credentials may not read the object.
	ErrAccessDenied = errors.New("minio: access denied")
)

// TranslateError maps S3 error responses onto the package sentinels. Other
// errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, resp.BucketName, resp.Key)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrBucketNotFound, resp.BucketName)
	case "AccessDenied":
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	return err
}
