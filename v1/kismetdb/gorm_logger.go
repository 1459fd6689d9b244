package kismetdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger forwards gorm's statement log to the package Logger.
type gormLogger struct {
	log   Logger
	level gormlogger.LogLevel
}

// newGormLogger is silent unless logQueries is set, in which case every
// statement is logged at debug level and failures at error level.
func newGormLogger(log Logger, logQueries bool) gormlogger.Interface {
	level := gormlogger.Silent
	if logQueries {
		level = gormlogger.Info
	}
	return &gormLogger{log: log, level: level}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Debug(fmt.Sprintf(msg, args...), nil, nil)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...), nil, nil)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, args...), nil, nil)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	sql, rows := fc()
	fields := map[string]interface{}{
		"sql":        sql,
		"rows":       rows,
		"elapsed_ms": time.Since(begin).Milliseconds(),
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.Error("kismetdb statement failed", err, fields)
	case l.level >= gormlogger.Info:
		l.log.Debug("kismetdb statement", nil, fields)
	}
}
