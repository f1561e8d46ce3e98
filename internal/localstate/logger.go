package localstate

import (
	"fmt"
	"log/slog"
	"strings"
)

// badgerLogger routes Badger's printf logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(line(format, args))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(line(format, args))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(line(format, args))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(line(format, args))
}

func line(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf("badger: "+format, args...))
}
