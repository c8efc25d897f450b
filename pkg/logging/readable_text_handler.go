package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// A slog handler that writes compact, human readable log lines like
// "15:04:05.000|INFO|Fetching releases|package=symfony/console".
type ReadableTextHandler struct {
	options ReadableTextHandlerOptions
	mu      *sync.Mutex
	out     io.Writer
	prefix  string
	attrs   []slog.Attr
}

type ReadableTextHandlerOptions struct {
	Level slog.Leveler
}

func NewReadableTextHandler(out io.Writer, options *ReadableTextHandlerOptions) *ReadableTextHandler {
	handler := &ReadableTextHandler{out: out, mu: &sync.Mutex{}}
	if options == nil {
		options = &ReadableTextHandlerOptions{}
	}
	handler.options = *options
	if handler.options.Level == nil {
		handler.options.Level = slog.LevelInfo
	}
	return handler
}

func (h *ReadableTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.options.Level.Level()
}

func (h *ReadableTextHandler) Handle(ctx context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s|%s|%s", record.Time.Format("15:04:05.000"), record.Level.String(), record.Message))

	// Collect the attributes from "With" calls and from the record itself
	attrStrings := []string{}
	for _, a := range h.attrs {
		attrStrings = append(attrStrings, formatAttr(a, h.prefix))
	}
	record.Attrs(func(a slog.Attr) bool {
		attrStrings = append(attrStrings, formatAttr(a, h.prefix))
		return true
	})
	if len(attrStrings) > 0 {
		sb.WriteString("|")
		sb.WriteString(strings.Join(attrStrings, ", "))
	}
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *ReadableTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *ReadableTextHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	if name != "" {
		clone.prefix = h.prefix + name + "."
	}
	return clone
}

func (h *ReadableTextHandler) clone() *ReadableTextHandler {
	return &ReadableTextHandler{
		options: h.options,
		mu:      h.mu,
		out:     h.out,
		prefix:  h.prefix,
		attrs:   append([]slog.Attr{}, h.attrs...),
	}
}

func formatAttr(a slog.Attr, prefix string) string {
	return fmt.Sprintf("%s%s=%v", prefix, a.Key, a.Value.Resolve().Any())
}
