package driver

import (
	"sync"

	"go.uber.org/zap"

	"github.com/LoveWonYoung/passthru/j2534"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the driver package logger, a no-op logger unless SetLogger
// was called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the package logger. Call it before loading drivers.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Loader loads drivers from the file system with Load.
type Loader struct{}

func (Loader) Load(path string) (j2534.Library, error) {
	return Load(path)
}
