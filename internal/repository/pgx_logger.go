package repository

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// pgxLogger adapts zerolog to the pgx tracelog interface.
type pgxLogger struct {
	logger zerolog.Logger
}

func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With().Str("component", "pgx").Logger()}
}

// Log implements tracelog.Logger.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var ev *zerolog.Event
	switch level {
	case tracelog.LogLevelNone:
		return
	case tracelog.LogLevelTrace:
		ev = l.logger.Trace()
	case tracelog.LogLevelDebug:
		ev = l.logger.Debug()
	case tracelog.LogLevelInfo:
		ev = l.logger.Info()
	case tracelog.LogLevelWarn:
		ev = l.logger.Warn()
	case tracelog.LogLevelError:
		ev = l.logger.Error()
	default:
		ev = l.logger.Info().Str("pgx_log_level", level.String())
	}

	// sql and args are lifted out so event payload arguments stay filterable
	if sql, ok := data["sql"].(string); ok {
		ev = ev.Str("sql", sql)
		delete(data, "sql")
	}
	if args, ok := data["args"]; ok {
		ev = ev.Interface("args", args)
		delete(data, "args")
	}
	if len(data) > 0 {
		ev = ev.Fields(data)
	}
	ev.Msg(msg)
}

// traceLevel mirrors the zerolog level onto pgx so SQL noise follows the app level.
func traceLevel(l zerolog.Level) tracelog.LogLevel {
	switch {
	case l <= zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case l <= zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case l <= zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case l <= zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}
