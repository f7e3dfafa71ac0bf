package pool

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pitabwire/util"
	glogger "gorm.io/gorm/logger"

	"github.com/pitabwire/i18nutils/config"
	"github.com/pitabwire/i18nutils/data"
)

const (
	tintAttrCodeDuration = 214
	tintAttrCodeRows     = 12
	tintAttrCodeQuery    = 2
)

// queryLogger routes gorm output through the context logger. Queries are logged at debug level,
// at info level when query logging is enabled, and at warn level once they cross the slow threshold.
type queryLogger struct {
	baseLogger    *util.LogEntry
	logQueries    bool
	slowThreshold time.Duration
}

func newQueryLogger(ctx context.Context, cfg config.ConfigurationDatabaseTracing) glogger.Interface {
	l := &queryLogger{
		baseLogger:    util.Log(ctx),
		slowThreshold: config.DefaultSlowQueryThreshold,
	}
	if cfg != nil {
		l.logQueries = cfg.CanDatabaseTraceQueries()
		l.slowThreshold = cfg.GetDatabaseSlowQueryLogThreshold()
	}
	return l
}

func (l *queryLogger) LogMode(_ glogger.LogLevel) glogger.Interface {
	return l
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...any) {
	l.baseLogger.WithContext(ctx).Info(msg, args...)
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.baseLogger.WithContext(ctx).Warn(msg, args...)
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...any) {
	l.baseLogger.WithContext(ctx).Error(msg, args...)
}

func (l *queryLogger) level(ctx context.Context, log *util.LogEntry, slow, failed bool) (slog.Level, bool) {
	switch {
	case failed:
		return slog.LevelError, true
	case log.Enabled(ctx, slog.LevelDebug):
		return slog.LevelDebug, true
	case l.logQueries && log.Enabled(ctx, slog.LevelInfo):
		return slog.LevelInfo, true
	case slow && log.Enabled(ctx, slog.LevelWarn):
		return slog.LevelWarn, true
	default:
		return slog.LevelInfo, false
	}
}

// Trace logs one executed statement.
func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	baseLog := l.baseLogger.WithContext(ctx)

	slow := l.slowThreshold != 0 && elapsed > l.slowThreshold
	failed := err != nil && !data.ErrorIsNoRows(err)

	lvl, ok := l.level(ctx, baseLog, slow, failed)
	if !ok {
		return
	}

	sql, rows := fc()
	log := baseLog.With(
		tint.Attr(tintAttrCodeDuration, slog.Any("duration", elapsed.String())),
		tint.Attr(tintAttrCodeRows, slog.Any("rows", strconv.FormatInt(rows, 10))),
		tint.Attr(tintAttrCodeQuery, slog.Any("query", sql)),
	)
	defer log.Release()

	if slow {
		log = log.WithField("slow_query", fmt.Sprintf(">= %v", l.slowThreshold))
	}

	switch lvl {
	case slog.LevelError:
		log.WithError(err).Error("query failed")
	case slog.LevelDebug:
		log.Debug("query executed")
	case slog.LevelWarn:
		log.Warn("query is slow")
	default:
		log.Info("query executed")
	}
}
