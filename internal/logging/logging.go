// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// redacted replaces values of attributes that look like secrets
const redacted = "[REDACTED]"

var secretAttrs = map[string]bool{
	"key":      true,
	"api_key":  true,
	"password": true,
	"token":    true,
}

// New returns a text logger writing to w. Verbose enables debug records;
// otherwise only warnings and errors are written.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if secretAttrs[strings.ToLower(a.Key)] {
				return slog.String(a.Key, redacted)
			}
			return a
		},
	}))
}
