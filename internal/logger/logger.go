// Package logger holds the process-wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log      *zap.Logger
	logMutex sync.RWMutex
	once     sync.Once
)

// Init builds the global logger. Only the first call has an effect.
func Init(level string, development bool) error {
	var initErr error
	once.Do(func() {
		initErr = doInit(level, development)
	})
	return initErr
}

func doInit(level string, development bool) error {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: development,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	newLog, err := config.Build()
	if err != nil {
		return err
	}

	logMutex.Lock()
	log = newLog
	logMutex.Unlock()
	return nil
}

// L returns the global logger, initialising it at info level if needed.
func L() *zap.Logger {
	logMutex.RLock()
	l := log
	logMutex.RUnlock()
	if l != nil {
		return l
	}

	if err := Init("info", false); err != nil {
		return zap.NewNop()
	}
	logMutex.RLock()
	defer logMutex.RUnlock()
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// S returns the sugared form of L.
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// Sync flushes buffered entries.
func Sync() error {
	logMutex.RLock()
	defer logMutex.RUnlock()
	if log != nil {
		return log.Sync()
	}
	return nil
}
