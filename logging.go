package main

import (
	"context"
	"io"
	"strings"
	"sync"

	"golang.org/x/exp/slog"
)

// Writes one line per record: time, level, message and key=value attributes.
type LogHandler struct {
	h      slog.Handler
	mu     *sync.Mutex
	out    io.Writer
	attrs  []slog.Attr
	prefix string
}

func NewLogHandler(o io.Writer, opts *slog.HandlerOptions) *LogHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &LogHandler{
		out: o,
		h: slog.NewTextHandler(o, &slog.HandlerOptions{
			Level:       opts.Level,
			AddSource:   opts.AddSource,
			ReplaceAttr: nil,
		}),
		mu: &sync.Mutex{},
	}
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	all := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	all = append(all, h.attrs...)
	for _, a := range attrs {
		all = append(all, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &LogHandler{h: h.h.WithAttrs(attrs), out: h.out, mu: h.mu, attrs: all, prefix: h.prefix}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &LogHandler{h: h.h.WithGroup(name), out: h.out, mu: h.mu, attrs: h.attrs, prefix: h.prefix + name + "."}
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, r.Level.String(), r.Message}
	for _, a := range h.attrs {
		strs = _AppendAttr(strs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		strs = _AppendAttr(strs, h.prefix, a)
		return true
	})

	b := []byte(strings.Join(strs, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.out.Write(b)
	return err
}

func _AppendAttr(strs []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return strs
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			strs = _AppendAttr(strs, prefix, ga)
		}
		return strs
	}
	return append(strs, prefix+a.Key+"="+a.Value.String())
}
