package storage

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Value is a typed, JSON-encoded view of one key. A missing or undecodable
// stored value reads as the initial value.
type Value[T any] struct {
	store   Store
	key     string
	initial T
	log     *zap.Logger
}

func NewValue[T any](s Store, key string, initial T, log *zap.Logger) *Value[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Value[T]{store: s, key: key, initial: initial, log: log.With(zap.String("key", key))}
}

func (v *Value[T]) Key() string { return v.key }

func (v *Value[T]) Initial() T { return v.initial }

// Load returns the stored value. Read and decode failures are logged and
// yield the initial value.
func (v *Value[T]) Load() T {
	b, ok, err := v.store.Get(v.key)
	if err != nil {
		v.log.Error("storage read", zap.Error(err))
		return v.initial
	}
	if !ok {
		return v.initial
	}
	return v.decode(b)
}

func (v *Value[T]) decode(b []byte) T {
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		v.log.Error("storage decode", zap.Error(err))
		return v.initial
	}
	return out
}

// Encode returns the stored representation of val.
func (v *Value[T]) Encode(val T) ([]byte, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", v.key, err)
	}
	return b, nil
}

func (v *Value[T]) Save(val T) error {
	b, err := v.Encode(val)
	if err != nil {
		return err
	}
	if err := v.store.Set(v.key, b); err != nil {
		return fmt.Errorf("write %s: %w", v.key, err)
	}
	return nil
}

func (v *Value[T]) Clear() error {
	if err := v.store.Delete(v.key); err != nil {
		return fmt.Errorf("delete %s: %w", v.key, err)
	}
	return nil
}

// Watch calls fn with the decoded value each time another instance writes
// the key. A deleted or undecodable value is reported as the initial value.
func (v *Value[T]) Watch(fn func(T)) (cancel func()) {
	return v.store.OnExternalChange(v.key, func(b []byte, ok bool) {
		if !ok {
			fn(v.initial)
			return
		}
		fn(v.decode(b))
	})
}
