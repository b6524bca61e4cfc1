package logger

import (
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Init builds the run reporter logger: every record is written as one line to
// the console writer and to a daily-rotated file under dir, then installed as
// the slog default. The returned cleanup closes the current log file.
func Init(console io.Writer, dir string, level slog.Level) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}
	file := NewDailyFile(dir)

	logger := slog.New(slogmulti.Fanout(
		NewLineHandler(console, opts),
		NewLineHandler(file, opts),
	))
	slog.SetDefault(logger)
	return logger, file.Close
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
