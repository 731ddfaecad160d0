package logging

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	gormLogger "gorm.io/gorm/logger"
)

// gormWriter forwards GORM's printf-style output to slog.
type gormWriter struct {
	logger *slog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

// Gorm adapts an slog logger for gorm.Config.Logger.
// Only slow queries and errors are reported unless debug is set.
func Gorm(logger *slog.Logger, debug bool) gormLogger.Interface {
	level := gormLogger.Warn
	if debug {
		level = gormLogger.Info
	}
	return gormLogger.New(gormWriter{logger: logger}, gormLogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}
