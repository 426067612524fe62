// Package logging builds the slog loggers used by the weld command and the
// database runners.
package logging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Output formats accepted by New.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatText   = "text"
)

// ErrUnknownFormat is returned by New for an unrecognised format.
var ErrUnknownFormat = errors.New("unknown log format")

type contextKey string

const loggerKey contextKey = "logger"

// PrettyJSONHandler is a custom handler that pretty prints JSON in development
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
	attrs  []slog.Attr
}

func (h *PrettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	// Convert the record to a map
	attrs := make(map[string]interface{})
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	// Add time and level
	attrs["time"] = r.Time.Format(time.RFC3339)
	attrs["level"] = r.Level.String()
	attrs["msg"] = r.Message

	// Marshal with indentation
	prettyJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}

	// Write to the handler's writer with newline
	_, err = h.writer.Write(append(prettyJSON, '\n'))
	return err
}

// WithAttrs keeps the pretty output for loggers built with Logger.With.
func (h *PrettyJSONHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return &PrettyJSONHandler{
		JSONHandler: h.JSONHandler.WithAttrs(as).(*slog.JSONHandler),
		writer:      h.writer,
		attrs:       append(slices.Clone(h.attrs), as...),
	}
}

// NewPrettyJSONHandler creates a new pretty JSON handler writing to w.
func NewPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyJSONHandler {
	return &PrettyJSONHandler{
		JSONHandler: slog.NewJSONHandler(w, opts),
		writer:      w,
	}
}

// ParseLevel maps debug, info, warn or error (any case) to a slog.Level.
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// New builds a logger writing format at level to w.
func New(format, level string, w io.Writer) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: l}

	switch strings.ToLower(format) {
	case FormatJSON, "":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatPretty:
		return slog.New(NewPrettyJSONHandler(w, opts)), nil
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored by WithLogger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
