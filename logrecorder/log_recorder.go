package logrecorder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NowString 返回当前时间格式为 "20060102_1504" 的字符串
func NowString() string {
	return time.Now().Format("20060102_1504")
}

// MakeDir creates (if needed) the dated sub directory of base, e.g.
// base/2025_04_25, and returns its path.
func MakeDir(base string) (string, error) {
	if base == "" {
		base = "."
	}
	now := time.Now()
	dirName := fmt.Sprintf("%d_%02d_%02d", now.Year(), now.Month(), now.Day())
	fullPath := filepath.Join(base, dirName)

	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return "", fmt.Errorf("创建文件夹失败: %w", err)
	}
	return fullPath, nil
}

// NewLogger builds a production zap logger at level ("debug", "info",
// "warn", "error"). Output goes to stderr and, when dir is not empty, to
// dir/<date>/<name><stamp>.log.
func NewLogger(level, dir, name string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	if dir != "" {
		dated, err := MakeDir(dir)
		if err != nil {
			return nil, err
		}
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(dated, name+NowString()+".log"))
	}
	return cfg.Build()
}
