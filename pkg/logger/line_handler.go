package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// LineHandler is a slog.Handler that renders records as
//
//	[timestamp] [LEVEL] message {"key":"value"}
//
// The JSON context is omitted when the record carries no attributes.
// Write failures are swallowed.
type LineHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   slog.HandlerOptions
	attrs  []slog.Attr
	groups []string
}

func NewLineHandler(w io.Writer, opts *slog.HandlerOptions) *LineHandler {
	h := &LineHandler{mu: &sync.Mutex{}, w: w}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any)
	for _, a := range h.attrs {
		addAttr(fields, a)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		addAttr(fields, a)
		return true
	})

	var buf bytes.Buffer
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	fmt.Fprintf(&buf, "[%s] [%s] %s", ts.UTC().Format(timestampLayout), r.Level.String(), r.Message)
	if len(fields) > 0 {
		data, err := json.Marshal(fields)
		if err != nil {
			data, err = json.Marshal(stringifyUnencodable(fields))
		}
		if err == nil {
			buf.WriteByte(' ')
			buf.Write(data)
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, _ = h.w.Write(buf.Bytes())
	return nil
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	prefix := strings.Join(h.groups, ".")
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func addAttr(fields map[string]any, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			if a.Key != "" {
				ga.Key = a.Key + "." + ga.Key
			}
			addAttr(fields, ga)
		}
		return
	}
	switch val := v.Any().(type) {
	case error:
		fields[a.Key] = val.Error()
	case time.Duration:
		fields[a.Key] = val.String()
	case time.Time:
		fields[a.Key] = val.UTC().Format(timestampLayout)
	default:
		fields[a.Key] = val
	}
}

// stringifyUnencodable replaces every value JSON cannot encode with its
// fmt.Sprint form.
func stringifyUnencodable(fields map[string]any) map[string]any {
	for k, v := range fields {
		if _, err := json.Marshal(v); err != nil {
			fields[k] = fmt.Sprint(v)
		}
	}
	return fields
}
