package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/bombsimon/logrusr/v4"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"

	"github.com/akuity/redeployer/internal/os"
)

type (
	Level  uint32
	Format string
)

const (
	ErrorLevel = Level(logrus.ErrorLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	DebugLevel = Level(logrus.DebugLevel)
	TraceLevel = Level(logrus.TraceLevel)

	ConsoleFormat Format = "console"
	JSONFormat    Format = "json"

	LogLevelEnvVar  = "LOG_LEVEL"
	LogFormatEnvVar = "LOG_FORMAT"
)

var globalLogger *Logger

func init() {
	level, err := ParseLevel(os.GetEnv(LogLevelEnvVar, "INFO"))
	if err != nil {
		panic(err)
	}
	format, err := ParseFormat(os.GetEnv(LogFormatEnvVar, string(ConsoleFormat)))
	if err != nil {
		panic(err)
	}
	globalLogger = NewLogger(level, format)
}

// Logger is a wrapper around logr.Logger that provides a more ergonomic API.
type Logger struct {
	callStackHelper func()
	logger          logr.Logger
}

// Wrap returns a new *Logger that wraps the provided logr.Logger.
func Wrap(logrLogger logr.Logger) *Logger {
	logger := &Logger{}
	logger.callStackHelper, logger.logger = logrLogger.WithCallStackHelper()
	return logger
}

// NewLogger returns a new *Logger with the provided log level and format.
func NewLogger(level Level, format Format) *Logger {
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.Level(level))
	if format == JSONFormat {
		logrusLogger.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "message",
			},
		})
	}
	return Wrap(logrusr.New(logrusLogger))
}

// NewDiscardLogger returns a *Logger that discards all output. This is
// primarily useful for tests.
func NewDiscardLogger() *Logger {
	logrusLogger := logrus.New()
	logrusLogger.SetOutput(io.Discard)
	return Wrap(logrusr.New(logrusLogger))
}

// ParseLevel parses a case-insensitive level name. Only levels that can be
// represented by logr are accepted.
func ParseLevel(levelStr string) (Level, error) {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return 0, err
	}
	switch level {
	case logrus.ErrorLevel, logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel:
		return Level(level), nil
	default:
		return 0, fmt.Errorf("invalid log level %q", levelStr)
	}
}

// ParseFormat parses a case-insensitive log format name.
func ParseFormat(formatStr string) (Format, error) {
	switch format := Format(strings.ToLower(strings.TrimSpace(formatStr))); format {
	case ConsoleFormat, JSONFormat:
		return format, nil
	default:
		return "", fmt.Errorf("invalid log format %q", formatStr)
	}
}

// Error logs a message at the error level.
func (l *Logger) Error(err error, msg string, keysAndValues ...any) {
	l.callStackHelper()
	l.logger.Error(err, msg, keysAndValues...)
}

// Info logs a message at the info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.callStackHelper()
	l.logger.Info(msg, keysAndValues...)
}

// Debug logs a message at the debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.callStackHelper()
	l.logger.V(1).Info(msg, keysAndValues...)
}

// Trace logs a message at the trace level.
func (l *Logger) Trace(msg string, keysAndValues ...any) {
	l.callStackHelper()
	l.logger.V(2).Info(msg, keysAndValues...)
}

// GetLogger returns the underlying logr.Logger for cases where one needs to
// interact with the logr API directly.
func (l *Logger) GetLogger() logr.Logger {
	return l.logger
}

// WithValues adds key-value pairs to a logger's context.
func (l *Logger) WithValues(keysAndValues ...any) *Logger {
	return &Logger{
		callStackHelper: l.callStackHelper,
		logger:          l.logger.WithValues(keysAndValues...),
	}
}
