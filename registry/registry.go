// Package registry holds record and enum identities and builds cached field
// descriptors for them.
package registry

import (
	"reflect"
	"sync"

	"github.com/viant/tagly/format/text"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/typ"
)

type (
	entry struct {
		name      string
		rType     reflect.Type
		templates []string
		parent    string
	}

	// Option configures record registration.
	Option func(e *entry)

	// Registry maps identities to Go types.
	Registry struct {
		caseFormat text.CaseFormat
		types      *typ.Cache
		mux        sync.RWMutex
		records    map[string]*entry
		enums      map[string]*Enum
		names      map[reflect.Type]string
		described  map[string]*Record
	}
)

// Templates declares record type parameters.
func Templates(names ...string) Option {
	return func(e *entry) { e.templates = names }
}

// Parent declares the identity resolved by the parent keyword.
func Parent(name string) Option {
	return func(e *entry) { e.parent = name }
}

// New creates a registry; field keys without explicit tags use caseFormat.
func New(caseFormat text.CaseFormat, types *typ.Cache) *Registry {
	if types == nil {
		types = typ.NewCache(1024)
	}
	return &Registry{
		caseFormat: caseFormat,
		types:      types,
		records:    map[string]*entry{},
		enums:      map[string]*Enum{},
		names:      map[reflect.Type]string{},
		described:  map[string]*Record{},
	}
}

// Register registers a struct (or pointer to struct) sample under name.
func (r *Registry) Register(name string, sample interface{}, opts ...Option) error {
	rType := structType(reflect.TypeOf(sample))
	if rType == nil {
		return errs.New(errs.InvalidArgument, "%s: expected struct sample, got %T", name, sample)
	}
	e := &entry{name: name, rType: rType}
	for _, opt := range opts {
		opt(e)
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	if prev, ok := r.records[name]; ok && prev.rType != rType {
		return errs.New(errs.InvalidArgument, "%s is already registered for %s", name, prev.rType)
	}
	r.records[name] = e
	r.names[rType] = name
	delete(r.described, name)
	return nil
}

// RegisterEnum registers a named string or integer type; cases restrict accepted values.
func (r *Registry) RegisterEnum(name string, sample interface{}, cases ...interface{}) error {
	rType := reflect.TypeOf(sample)
	if rType == nil {
		return errs.New(errs.InvalidArgument, "%s: nil enum sample", name)
	}
	enum, err := newEnum(name, rType, cases)
	if err != nil {
		return err
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.enums[name] = enum
	r.names[rType] = name
	return nil
}

// Enum returns a registered enum.
func (r *Registry) Enum(name string) (*Enum, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret, ok := r.enums[name]
	return ret, ok
}

// IsEnum reports whether name identifies an enum.
func (r *Registry) IsEnum(name string) bool {
	_, ok := r.Enum(name)
	return ok
}

// Templates returns declared type parameters of a record.
func (r *Registry) Templates(name string) ([]string, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	e, ok := r.records[name]
	if !ok {
		return nil, false
	}
	return e.templates, true
}

// TypeName resolves a Go type identity, registering unknown named structs by Go name.
func (r *Registry) TypeName(rType reflect.Type) (string, typ.Kind, bool) {
	r.mux.RLock()
	name, ok := r.names[rType]
	_, isEnum := r.enums[name]
	r.mux.RUnlock()
	if ok {
		if isEnum {
			return name, typ.Enum, true
		}
		return name, typ.Record, true
	}
	if rType.Kind() != reflect.Struct || rType.Name() == "" {
		return "", 0, false
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	if name, ok = r.names[rType]; ok {
		return name, typ.Record, true
	}
	name = rType.Name()
	if prev, ok := r.records[name]; ok && prev.rType != rType {
		name = rType.String()
	}
	r.records[name] = &entry{name: name, rType: rType}
	r.names[rType] = name
	return name, typ.Record, true
}

// TypeOf builds a type from a Go value.
func (r *Registry) TypeOf(value interface{}) (*typ.Type, error) {
	return typ.FromReflect(reflect.TypeOf(value), r)
}

// Parse parses a type expression resolving enums and generics against the registry.
func (r *Registry) Parse(expression string) (*typ.Type, error) {
	builder := &typ.Builder{Resolver: r, Cache: r.types}
	return builder.Parse(expression)
}

// Builder returns a type builder scoped to a declaring record.
func (r *Registry) Builder(declaring string) *typ.Builder {
	ret := &typ.Builder{Resolver: r, Declaring: declaring, Cache: r.types}
	r.mux.RLock()
	if e, ok := r.records[declaring]; ok {
		ret.Parent = e.parent
		ret.Templates = e.templates
	}
	r.mux.RUnlock()
	return ret
}

// CaseFormat returns the configured field key case format.
func (r *Registry) CaseFormat() text.CaseFormat { return r.caseFormat }

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	e, ok := r.records[name]
	return e, ok
}

func structType(rType reflect.Type) reflect.Type {
	if rType == nil {
		return nil
	}
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	if rType.Kind() != reflect.Struct {
		return nil
	}
	return rType
}
