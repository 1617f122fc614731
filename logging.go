// Package lobbyhub holds process-wide concerns shared by every sub-package:
// the global logger and its initialization.
package lobbyhub

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the global, threadsafe logger used by every server component.
var Log = logrus.New()

// InitLogger configures the global logger from the resolved configuration
// values. It must be called once during startup before any component logs.
func InitLogger(logFilePath, logLevel string) error {
	var w io.Writer = os.Stdout
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("opening log file %q: %w", logFilePath, err)
		}
		w = f
	}

	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", logLevel, err)
	}

	Log = &logrus.Logger{
		Out: w,
		Formatter: &logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			DisableSorting:  true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: lvl,
	}
	return nil
}
