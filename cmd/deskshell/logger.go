package main

import (
	"github.com/sirupsen/logrus"

	"github.com/slok/deskshell/cmd/deskshell/commands"
	"github.com/slok/deskshell/internal/log"
	loglogrus "github.com/slok/deskshell/internal/log/logrus"
)

// newLogger returns the application logger. Logs go to stderr so stdout only
// carries command output.
func newLogger(cfg commands.RootCommand, version string) log.Logger {
	if cfg.NoLog {
		return log.Noop
	}

	l := logrus.New()
	l.Out = cfg.Stderr
	if cfg.Debug {
		l.SetLevel(logrus.DebugLevel)
	}

	switch cfg.LoggerType {
	case commands.LoggerTypeJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !cfg.NoColor,
			DisableColors: cfg.NoColor,
			FullTimestamp: true,
		})
	}

	logger := loglogrus.NewLogrus(logrus.NewEntry(l)).WithValues(log.Kv{"version": version})
	logger.Debugf("Debug level is enabled")

	return logger
}
