package neat

import "log/slog"

var logger = slog.New(slog.DiscardHandler)

// SetLogger routes the package's diagnostics to l. A nil logger silences them.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger = l
}

// Logger returns the package logger, for sub-packages that log alongside it.
func Logger() *slog.Logger {
	return logger
}
