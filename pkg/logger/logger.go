package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = newLogger()

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableTimestamp: true,
	})
	log.SetLevel(levelFromEnv())
	return log
}

// DEBUG=1 keeps working as before, GAZEREEL_LOG_LEVEL takes any logrus level name
func levelFromEnv() logrus.Level {
	if os.Getenv("DEBUG") == "1" {
		return logrus.DebugLevel
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("GAZEREEL_LOG_LEVEL")); err == nil {
		return lvl
	}
	return logrus.InfoLevel
}

// Verbose switches the shared logger to debug output, used by the --debug flag.
func Verbose() {
	Log.SetLevel(logrus.DebugLevel)
}
