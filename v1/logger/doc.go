// Package logger provides structured logging on top of Uber's zap.
//
// Every package in this module declares its own small Logger interface with
// Info, Debug, Warn, Error and Fatal methods taking a message, an optional
// error and optional field maps. *Logger implements all of them.
//
// # Direct Usage (Without FX)
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		ServiceName:   "kismetdb",
//		EnableTracing: true,
//	})
//
//	log.Info("opened log", nil, map[string]interface{}{
//		"path": "Kismet-20240101-10-00-00-1.kismet",
//	})
//
//	// With tracing enabled, trace_id and span_id are taken from ctx.
//	log.InfoWithContext(ctx, "export finished", nil, map[string]interface{}{
//		"records": 1204,
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Supply(logger.Config{Level: logger.Debug}),
//	)
//
// Entries are written to stderr as JSON, or in zap's console format when
// Config.Encoding is "console".
package logger
