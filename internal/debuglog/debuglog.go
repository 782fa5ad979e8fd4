// Package debuglog exposes the engine's diagnostic logger. It is a nop
// unless PKGSCOUT_DEBUG=1 is set; report content never depends on it.
package debuglog

import (
	"os"

	"go.uber.org/zap"
)

// L is the process-wide diagnostic logger.
var L = newLogger()

func newLogger() *zap.Logger {
	if os.Getenv("PKGSCOUT_DEBUG") != "1" {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Enabled reports whether diagnostic logging is active.
func Enabled() bool {
	return os.Getenv("PKGSCOUT_DEBUG") == "1"
}
