// Package logger создаёт slog-логгер процесса по окружению из конфига.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// EnvLocal окружение разработчика, в нём включён уровень Debug.
const EnvLocal = "local"

// New возвращает текстовый логгер в stdout.
func New(env string) *slog.Logger {
	return newWithWriter(os.Stdout, env)
}

func newWithWriter(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == EnvLocal {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
