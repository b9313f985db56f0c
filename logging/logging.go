// Package logging builds the process logger.
package logging

import (
	"go.uber.org/zap"
)

// EnvDev selects the human-readable development logger.
const EnvDev = "dev"

// Logger is the logging surface used across csvapi. *zap.SugaredLogger
// satisfies it.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	Infof(template string, args ...any)
	Sync() error
}

// New returns a development logger for EnvDev and a production (JSON)
// logger for any other environment.
func New(env string) (*zap.SugaredLogger, error) {
	var (
		log *zap.Logger
		err error
	)
	if env == EnvDev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}
