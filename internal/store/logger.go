package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// queryLogger routes gorm's log output to zerolog. SQL statements are
// traced at debug level; slow statements and failures are warnings.
type queryLogger struct {
	log   zerolog.Logger
	level logger.LogLevel
}

func newQueryLogger(l zerolog.Logger) logger.Interface {
	return &queryLogger{log: l.With().Str("component", "sql").Logger(), level: logger.Warn}
}

func (q *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *q
	c.level = level
	return &c
}

func (q *queryLogger) Info(_ context.Context, msg string, args ...any) {
	if q.level >= logger.Info {
		q.log.Info().Msg(fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Warn(_ context.Context, msg string, args ...any) {
	if q.level >= logger.Warn {
		q.log.Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Error(_ context.Context, msg string, args ...any) {
	if q.level >= logger.Error {
		q.log.Error().Msg(fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && q.level >= logger.Error:
		sql, rows := fc()
		q.log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case elapsed > slowQuery && q.level >= logger.Warn:
		sql, rows := fc()
		q.log.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case q.log.GetLevel() <= zerolog.DebugLevel:
		sql, rows := fc()
		q.log.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
