// Package stdlogger adapts printf style loggers, such as gorm's, to zerolog.
package stdlogger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes printf style messages to the global zerolog logger.
type Logger struct {
	component string
	level     zerolog.Level
}

// New returns a logger tagging every line with component. Printf writes at level.
func New(component string, level zerolog.Level) *Logger {
	return &Logger{component: component, level: level}
}

// Printf implements gorm's logger.Writer.
func (l *Logger) Printf(format string, args ...any) {
	l.write(l.level, format, args...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) { l.write(zerolog.DebugLevel, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { l.write(zerolog.InfoLevel, format, args...) }

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, args ...any) { l.write(zerolog.WarnLevel, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { l.write(zerolog.ErrorLevel, format, args...) }

func (l *Logger) write(level zerolog.Level, format string, args ...any) {
	log.WithLevel(level).
		Str("component", l.component).
		Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
