// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package maskslog provides a slog.Handler that hides config values from
// diagnostic output.
package maskslog

import (
	"context"
	"log/slog"
	"sync"
)

type options struct {
	attrTransformers   map[string]func(slog.Attr) slog.Attr
	recordTransformers []func(slog.Record) slog.Record
}

// Option configures a Handler.
type Option interface {
	applyOption(*options)
}

type optionFunc func(*options)

func (f optionFunc) applyOption(opts *options) {
	f(opts)
}

var attrPool = &sync.Pool{
	New: func() any {
		s := make([]slog.Attr, 0, 5)
		return &s
	},
}

// rewrite returns a copy of r with f applied to each of its attrs.
func rewrite(r slog.Record, f func(slog.Attr) slog.Attr) slog.Record {
	attrs := attrPool.Get().(*[]slog.Attr)
	defer func() {
		*attrs = (*attrs)[:0]
		attrPool.Put(attrs)
	}()

	r.Attrs(func(a slog.Attr) bool {
		*attrs = append(*attrs, f(a))
		return true
	})

	nr := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	nr.AddAttrs(*attrs...)
	return nr
}

// Attr registers f to transform every attr with the given key.
func Attr(key string, f func(slog.Attr) slog.Attr) Option {
	return optionFunc(func(o *options) {
		o.attrTransformers[key] = f
		o.recordTransformers = append(o.recordTransformers, func(r slog.Record) slog.Record {
			return rewrite(r, func(a slog.Attr) slog.Attr {
				if a.Key == key {
					return f(a)
				}
				return a
			})
		})
	})
}

// Values masks the attrs named by valueKeys on every record carrying a
// string attr keyAttr whose value sensitive reports true for.
//
// A merge record logged with key=db.password, old=... and new=... can be
// masked with Values("key", isSecret, "old", "new").
func Values(keyAttr string, sensitive func(string) bool, valueKeys ...string) Option {
	mask := make(map[string]bool, len(valueKeys))
	for _, k := range valueKeys {
		mask[k] = true
	}

	return optionFunc(func(o *options) {
		o.recordTransformers = append(o.recordTransformers, func(r slog.Record) slog.Record {
			hit := false
			r.Attrs(func(a slog.Attr) bool {
				if a.Key == keyAttr && a.Value.Kind() == slog.KindString && sensitive(a.Value.String()) {
					hit = true
					return false
				}
				return true
			})
			if !hit {
				return r
			}

			return rewrite(r, func(a slog.Attr) slog.Attr {
				if mask[a.Key] {
					return AnonymousStringAttr(a)
				}
				return a
			})
		})
	})
}

// Nested masks, inside the mappings and sequences held by the attrs named
// by valueKeys, the value of every mapping key sensitive reports true for.
// Everything below a sensitive key is hidden along with it.
func Nested(sensitive func(string) bool, valueKeys ...string) Option {
	return optionFunc(func(o *options) {
		for _, k := range valueKeys {
			Attr(k, func(a slog.Attr) slog.Attr {
				v, masked := redact(a.Value.Any(), sensitive)
				if !masked {
					return a
				}
				return slog.Any(a.Key, v)
			}).applyOption(o)
		}
	})
}

// redact returns a copy of v with sensitive mapping values replaced. v is
// returned untouched, and false, when nothing in it is sensitive.
func redact(v any, sensitive func(string) bool) (any, bool) {
	switch x := v.(type) {
	case map[string]any:
		var out map[string]any
		for k, e := range x {
			var nv any = placeholder
			masked := true
			if !sensitive(k) {
				nv, masked = redact(e, sensitive)
			}
			if !masked {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(x))
				for ok, oe := range x {
					out[ok] = oe
				}
			}
			out[k] = nv
		}
		if out == nil {
			return v, false
		}
		return out, true
	case []any:
		var out []any
		for i, e := range x {
			nv, masked := redact(e, sensitive)
			if !masked {
				continue
			}
			if out == nil {
				out = append([]any(nil), x...)
			}
			out[i] = nv
		}
		if out == nil {
			return v, false
		}
		return out, true
	default:
		return v, false
	}
}

const placeholder = "****"

// AnonymousStringAttr replaces the value of a with a fixed placeholder.
func AnonymousStringAttr(a slog.Attr) slog.Attr {
	return slog.String(a.Key, placeholder)
}

// Handler applies its masking options to records before passing them on.
type Handler struct {
	slog slog.Handler

	attrTransformers   map[string]func(slog.Attr) slog.Attr
	recordTransformers []func(slog.Record) slog.Record
}

// NewHandler wraps h.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	o := &options{
		attrTransformers: make(map[string]func(slog.Attr) slog.Attr),
	}
	for _, opt := range opts {
		opt.applyOption(o)
	}
	return &Handler{
		slog:               h,
		attrTransformers:   o.attrTransformers,
		recordTransformers: o.recordTransformers,
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	for _, t := range h.recordTransformers {
		record = t(record)
	}
	return h.slog.Handle(ctx, record)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nr := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		f, exists := h.attrTransformers[a.Key]
		if !exists {
			nr[i] = a
			continue
		}
		nr[i] = f(a)
	}
	return &Handler{
		slog:               h.slog.WithAttrs(nr),
		attrTransformers:   h.attrTransformers,
		recordTransformers: h.recordTransformers,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog:               h.slog.WithGroup(name),
		attrTransformers:   h.attrTransformers,
		recordTransformers: h.recordTransformers,
	}
}
