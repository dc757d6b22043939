// Package instantiate builds decoded values from field-resolving thunks, either
// immediately (Eager) or on first access (Lazy).
package instantiate

import (
	"reflect"
	"sync"

	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/typ"
)

type (
	// Thunk resolves one decoded value.
	Thunk func() (interface{}, error)

	// Field is a named field thunk.
	Field struct {
		Name    string
		Resolve Thunk
	}

	// Instantiator creates records, lists and dicts out of thunks.
	Instantiator interface {
		Record(t *typ.Type, fields []Field) (interface{}, error)
		List(t *typ.Type, items []Thunk) (interface{}, error)
		Dict(t *typ.Type, keys []string, items []Thunk) (interface{}, error)
	}

	// Support is the per-record-identity table used to build record values.
	Support struct {
		Record *registry.Record
		Type   reflect.Type
	}

	// Supports caches Support per record identity.
	Supports struct {
		registry *registry.Registry
		mux      sync.RWMutex
		byName   map[string]*Support
	}
)

// Value returns a thunk resolving to value.
func Value(value interface{}) Thunk {
	return func() (interface{}, error) { return value, nil }
}

// NewSupports creates a support table cache.
func NewSupports(r *registry.Registry) *Supports {
	return &Supports{registry: r, byName: map[string]*Support{}}
}

// Support returns the support of a record or generic type, built once per identity.
func (s *Supports) Support(t *typ.Type) (*Support, error) {
	if !t.IsObject() {
		return nil, errs.New(errs.UnexpectedValue, "expected record type, got %s", t)
	}
	name := t.Name()
	s.mux.RLock()
	ret, ok := s.byName[name]
	s.mux.RUnlock()
	if ok {
		return ret, nil
	}
	record, err := s.registry.Describe(name)
	if err != nil {
		return nil, err
	}
	ret = &Support{Record: record, Type: reflect.PtrTo(record.Type)}
	s.mux.Lock()
	defer s.mux.Unlock()
	if prev, ok := s.byName[name]; ok {
		return prev, nil
	}
	s.byName[name] = ret
	return ret, nil
}

// Len returns the number of cached supports.
func (s *Supports) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.byName)
}

// Build allocates a record and sets fields from resolved values.
func (s *Support) Build(values map[string]interface{}) (interface{}, error) {
	ptr := reflect.New(s.Record.Type)
	base := ptr.UnsafePointer()
	for name, value := range values {
		field, ok := s.Record.Field(name)
		if !ok {
			return nil, errs.New(errs.UnexpectedValue, "%s has no field %s", s.Record.Name, name)
		}
		converted, err := Convert(value, field.GoType())
		if err != nil {
			return nil, errs.Wrap(errs.UnexpectedValue, err, "%s.%s", s.Record.Name, name)
		}
		field.Set(base, converted)
	}
	return ptr.Interface(), nil
}
