package export

import "errors"

var (
	// ErrUnknownSink is returned for a Config.Sink that names no sink.
	ErrUnknownSink = errors.New("export: unknown sink")

	// ErrSinkClosed is returned by Write after Close.
	ErrSinkClosed = errors.New("export: sink closed")

	// ErrMissingConfig is returned when a sink lacks a required setting.
	ErrMissingConfig = errors.New("export: missing configuration")
)
