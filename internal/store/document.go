package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/metrics"
)

// Document binds one storage key to a typed value. Persistence failures
// are logged and swallowed: reads fall back to the default value and
// failed writes leave the in-memory state authoritative.
//
// A Document is not safe for concurrent use; its owner serializes access.
type Document[T any] struct {
	gw       Gateway
	key      string
	codec    Codec[T]
	defaults func() T
	log      *zap.Logger

	// last is the serialized form this handle last read or wrote, nil when
	// the key is known to be absent.
	last *string
}

// NewDocument creates a Document. defaults builds a fresh default value
// and must not return shared mutable state.
func NewDocument[T any](gw Gateway, key string, codec Codec[T], defaults func() T, log *zap.Logger) *Document[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document[T]{
		gw:       gw,
		key:      key,
		codec:    codec,
		defaults: defaults,
		log:      log.With(zap.String("key", key)),
	}
}

// Key returns the storage key.
func (d *Document[T]) Key() string { return d.key }

// Default returns a fresh default value.
func (d *Document[T]) Default() T { return d.defaults() }

// Load reads the stored value. A missing, unreadable or corrupt value
// yields the default.
func (d *Document[T]) Load(ctx context.Context) T {
	raw, ok, err := d.gw.Get(ctx, d.key)
	if err != nil {
		d.fail("get", err)
		return d.defaults()
	}
	if !ok {
		d.last = nil
		return d.defaults()
	}
	d.last = strPtr(raw)

	v, err := d.codec.Decode(raw)
	if err != nil {
		d.fail("decode", err)
		return d.defaults()
	}
	return v
}

// Save writes v. A value that encodes to JSON null removes the key.
func (d *Document[T]) Save(ctx context.Context, v T) {
	raw, err := d.codec.Encode(v)
	if err != nil {
		d.fail("encode", err)
		return
	}
	if raw == "null" {
		d.Remove(ctx)
		return
	}
	if err := d.gw.Set(ctx, d.key, raw); err != nil {
		d.fail("set", err)
		return
	}
	d.last = strPtr(raw)
}

// Remove deletes the stored value.
func (d *Document[T]) Remove(ctx context.Context) {
	if err := d.gw.Remove(ctx, d.key); err != nil {
		d.fail("remove", err)
		return
	}
	d.last = nil
}

// Reset saves and returns a fresh default value.
func (d *Document[T]) Reset(ctx context.Context) T {
	v := d.defaults()
	d.Save(ctx, v)
	return v
}

// ApplyChange interprets an external write. It reports false when the
// change is for another key, repeats what this handle already holds, or
// cannot be decoded. A removal yields the default value.
func (d *Document[T]) ApplyChange(c Change) (T, bool) {
	var zero T
	if c.Key != d.key {
		return zero, false
	}

	if c.NewValue == nil {
		if d.last == nil {
			return zero, false
		}
		d.last = nil
		return d.defaults(), true
	}

	if d.last != nil && *d.last == *c.NewValue {
		return zero, false
	}

	v, err := d.codec.Decode(*c.NewValue)
	if err != nil {
		d.fail("decode", err)
		return zero, false
	}
	d.last = strPtr(*c.NewValue)
	d.log.Debug("applied external change")
	return v, true
}

func (d *Document[T]) fail(op string, err error) {
	metrics.PersistenceErrors.WithLabelValues(d.key, op).Inc()
	d.log.Warn("persistence failure", zap.String("op", op), zap.Error(err))
}
