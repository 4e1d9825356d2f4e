package gap

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used by every layer of the stack.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	ChildLogger(tags map[string]interface{}) Logger
}

var (
	logger   Logger
	loggerMu sync.Mutex
)

// SetLogger replaces the package logger. Components created afterwards log through it.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = newStderrLogger()
	}
	return logger
}

// SetLogLevel changes the level of the package logger when it is logrus backed.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	l, ok := GetLogger().(*logrusLogger)
	if !ok {
		return errors.New("logger is not logrus backed")
	}
	l.Entry.Logger.SetLevel(lvl)
	return nil
}

// NewLogger wraps an existing logrus logger.
func NewLogger(l *logrus.Logger) Logger {
	return &logrusLogger{Entry: logrus.NewEntry(l)}
}

// ComponentLogger returns a child of the package logger tagged with a component name.
func ComponentLogger(name string) Logger {
	return GetLogger().ChildLogger(map[string]interface{}{"component": name})
}

type logrusLogger struct {
	*logrus.Entry
}

func newStderrLogger() Logger {
	return NewLogger(&logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Level:     logrus.InfoLevel,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
	})
}

func (l *logrusLogger) ChildLogger(tags map[string]interface{}) Logger {
	return &logrusLogger{Entry: l.Entry.WithFields(tags)}
}
