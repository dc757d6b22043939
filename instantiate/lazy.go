package instantiate

import (
	"sync"

	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/typ"
)

type (
	// Lazy defers every thunk until first access.
	Lazy struct {
		eager *Eager
	}

	memo struct {
		once  sync.Once
		thunk Thunk
		value interface{}
		err   error
	}

	// LazyRecord is a record placeholder whose fields decode on first access.
	LazyRecord struct {
		Type    *typ.Type
		support *Support
		names   []string
		fields  map[string]*memo
	}

	// LazyList is a list placeholder whose items decode on first access.
	LazyList struct {
		Type  *typ.Type
		eager *Eager
		items []*memo
	}

	// LazyDict is a dict placeholder whose values decode on first access.
	LazyDict struct {
		Type  *typ.Type
		eager *Eager
		keys  []string
		items map[string]*memo
	}
)

func (m *memo) get() (interface{}, error) {
	m.once.Do(func() {
		m.value, m.err = m.thunk()
	})
	return m.value, m.err
}

func memoOf(thunk Thunk) *memo { return &memo{thunk: thunk} }

// NewLazy creates a lazy instantiator.
func NewLazy(r *registry.Registry, supports *Supports) *Lazy {
	return &Lazy{eager: NewEager(r, supports)}
}

// Record returns a *LazyRecord.
func (l *Lazy) Record(t *typ.Type, fields []Field) (interface{}, error) {
	support, err := l.eager.supports.Support(t)
	if err != nil {
		return nil, err
	}
	ret := &LazyRecord{Type: t, support: support, fields: make(map[string]*memo, len(fields))}
	for _, field := range fields {
		if _, ok := support.Record.Field(field.Name); !ok {
			return nil, errs.New(errs.UnexpectedValue, "%s has no field %s", t.Name(), field.Name)
		}
		if _, ok := ret.fields[field.Name]; !ok {
			ret.names = append(ret.names, field.Name)
		}
		ret.fields[field.Name] = memoOf(field.Resolve)
	}
	return ret, nil
}

// List returns a *LazyList.
func (l *Lazy) List(t *typ.Type, items []Thunk) (interface{}, error) {
	ret := &LazyList{Type: t, eager: l.eager, items: make([]*memo, len(items))}
	for i, item := range items {
		ret.items[i] = memoOf(item)
	}
	return ret, nil
}

// Dict returns a *LazyDict.
func (l *Lazy) Dict(t *typ.Type, keys []string, items []Thunk) (interface{}, error) {
	ret := &LazyDict{Type: t, eager: l.eager, keys: keys, items: make(map[string]*memo, len(items))}
	for i, item := range items {
		ret.items[keys[i]] = memoOf(item)
	}
	return ret, nil
}

// Has reports whether the field was present in the input.
func (r *LazyRecord) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Fields returns present field names in input order.
func (r *LazyRecord) Fields() []string { return r.names }

// Get decodes a field on first call and returns the memoized value after.
func (r *LazyRecord) Get(name string) (interface{}, error) {
	field, ok := r.fields[name]
	if !ok {
		if _, declared := r.support.Record.Field(name); !declared {
			return nil, errs.New(errs.UnexpectedValue, "%s has no field %s", r.Type.Name(), name)
		}
		return nil, nil
	}
	return field.get()
}

// Materialize decodes all fields and returns the struct pointer.
func (r *LazyRecord) Materialize() (interface{}, error) {
	values := make(map[string]interface{}, len(r.fields))
	for _, name := range r.names {
		value, err := r.fields[name].get()
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return r.support.Build(values)
}

// Len returns the number of items.
func (l *LazyList) Len() int { return len(l.items) }

// Get decodes the item at index on first call.
func (l *LazyList) Get(index int) (interface{}, error) {
	if index < 0 || index >= len(l.items) {
		return nil, errs.New(errs.InvalidArgument, "index %d out of range [0,%d)", index, len(l.items))
	}
	return l.items[index].get()
}

// Materialize decodes all items into a typed slice.
func (l *LazyList) Materialize() (interface{}, error) {
	thunks := make([]Thunk, len(l.items))
	for i, item := range l.items {
		thunks[i] = item.get
	}
	return l.eager.List(l.Type, thunks)
}

// Keys returns keys in input order.
func (d *LazyDict) Keys() []string { return d.keys }

// Get decodes the value under key on first call.
func (d *LazyDict) Get(key string) (interface{}, bool, error) {
	item, ok := d.items[key]
	if !ok {
		return nil, false, nil
	}
	value, err := item.get()
	return value, true, err
}

// Materialize decodes all values into a typed map.
func (d *LazyDict) Materialize() (interface{}, error) {
	keys := make([]string, 0, len(d.keys))
	thunks := make([]Thunk, 0, len(d.keys))
	for _, key := range d.keys {
		if _, ok := d.items[key]; !ok {
			continue
		}
		keys = append(keys, key)
		thunks = append(thunks, d.items[key].get)
	}
	return d.eager.Dict(d.Type, keys, thunks)
}
