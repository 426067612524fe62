package query

import "database/sql/driver"

// Optional distinguishes "no value" from a present value. An absent Optional
// turns comparisons into IS NULL / IS NOT NULL and assignments into =NULL.
type Optional[T any] struct {
	val T
	ok  bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{val: v, ok: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr maps nil to None and anything else to Some.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.val, o.ok
}

// IsNone reports whether the value is absent.
func (o Optional[T]) IsNone() bool {
	return !o.ok
}

// Value implements driver.Valuer; an absent value binds as NULL.
func (o Optional[T]) Value() (driver.Value, error) {
	if !o.ok {
		return nil, nil
	}
	if v, ok := any(o.val).(driver.Valuer); ok {
		return v.Value()
	}
	return driver.DefaultParameterConverter.ConvertValue(o.val)
}

func (o Optional[T]) unwrap() (any, bool) {
	return o.val, o.ok
}

// optional is satisfied by every Optional[T].
type optional interface {
	unwrap() (any, bool)
}
