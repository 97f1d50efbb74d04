package request

import (
	"maps"
	"reflect"
)

// Extensions is a side channel keyed by type: it holds at most one value of
// each type. Packages define their own types (Params, mount paths, decoded
// credentials) so that their entries never collide.
type Extensions struct {
	values map[reflect.Type]any
}

// Params holds the named captures of the matched route pattern.
type Params map[string]string

// Set stores v, replacing any earlier value of type T.
func Set[T any](e *Extensions, v T) {
	if e.values == nil {
		e.values = make(map[reflect.Type]any)
	}
	e.values[reflect.TypeFor[T]()] = v
}

// Get returns the value of type T, if one is stored.
func Get[T any](e *Extensions) (T, bool) {
	v, ok := e.values[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Remove deletes the value of type T and returns it.
func Remove[T any](e *Extensions) (T, bool) {
	v, ok := Get[T](e)
	if ok {
		delete(e.values, reflect.TypeFor[T]())
	}
	return v, ok
}

// Len returns the number of stored values.
func (e *Extensions) Len() int {
	return len(e.values)
}

// Clone returns a shallow copy.
func (e *Extensions) Clone() Extensions {
	return Extensions{values: maps.Clone(e.values)}
}
