package logging

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"account-forms/pkg/config"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	sloghttp "github.com/samber/slog-http"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the process logger from cfg. The returned closer releases the
// log file and is a no-op for stdout and stderr.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer
	var closer io.Closer = nopCloser{}
	var fd uintptr
	tty := false
	switch cfg.Output {
	case "stdout":
		output, fd, tty = os.Stdout, os.Stdout.Fd(), true
	case "stderr", "":
		output, fd, tty = os.Stderr, os.Stderr.Fd(), true
	default:
		file := &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
		output, closer = file, file
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text":
		handler = slog.NewTextHandler(output, opts)
	case "pretty":
		handler = tint.NewHandler(output, &tint.Options{Level: level})
	case "":
		if tty && isatty.IsTerminal(fd) {
			handler = tint.NewHandler(output, &tint.Options{Level: level})
		} else {
			handler = slog.NewJSONHandler(output, opts)
		}
	default:
		return nil, nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	return slog.New(handler), closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
	return level, nil
}

// Middleware logs every request handled by next
func Middleware(logger *slog.Logger, next http.Handler) http.Handler {
	logMiddleware := sloghttp.NewWithConfig(logger.With("logger", "http"), sloghttp.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	})
	return logMiddleware(sloghttp.Recovery(next))
}
