package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a logger for one run. Every entry carries a run_id.
func New(level string, json bool) (*logrus.Entry, error) {
	log := logrus.New()
	log.Out = os.Stderr

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logrus.NewEntry(log).WithField("run_id", uuid.NewString()), nil
}

// Discard returns an entry that drops everything, for tests and library use.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.Out = io.Discard
	return logrus.NewEntry(log)
}
