package instantiate

import (
	"reflect"
	"strconv"

	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/typ"
)

// Eager resolves every thunk immediately, in order, and builds typed Go values.
type Eager struct {
	registry *registry.Registry
	supports *Supports
}

// NewEager creates an eager instantiator.
func NewEager(r *registry.Registry, supports *Supports) *Eager {
	if supports == nil {
		supports = NewSupports(r)
	}
	return &Eager{registry: r, supports: supports}
}

// Record builds a struct pointer.
func (e *Eager) Record(t *typ.Type, fields []Field) (interface{}, error) {
	support, err := e.supports.Support(t)
	if err != nil {
		return nil, err
	}
	values := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		value, err := field.Resolve()
		if err != nil {
			return nil, err
		}
		values[field.Name] = value
	}
	return support.Build(values)
}

// List builds a typed slice.
func (e *Eager) List(t *typ.Type, items []Thunk) (interface{}, error) {
	rType, err := e.registry.GoType(t.NonNullable())
	if err != nil {
		return nil, err
	}
	ret := reflect.MakeSlice(rType, len(items), len(items))
	for i, item := range items {
		value, err := item()
		if err != nil {
			return nil, err
		}
		converted, err := Convert(value, rType.Elem())
		if err != nil {
			return nil, err
		}
		ret.Index(i).Set(converted)
	}
	return ret.Interface(), nil
}

// Dict builds a typed map.
func (e *Eager) Dict(t *typ.Type, keys []string, items []Thunk) (interface{}, error) {
	rType, err := e.registry.GoType(t.NonNullable())
	if err != nil {
		return nil, err
	}
	ret := reflect.MakeMapWithSize(rType, len(items))
	for i, item := range items {
		value, err := item()
		if err != nil {
			return nil, err
		}
		converted, err := Convert(value, rType.Elem())
		if err != nil {
			return nil, err
		}
		key, err := dictKey(keys[i], rType.Key())
		if err != nil {
			return nil, err
		}
		ret.SetMapIndex(key, converted)
	}
	return ret.Interface(), nil
}

func dictKey(key string, rType reflect.Type) (reflect.Value, error) {
	if rType.Kind() == reflect.String {
		return reflect.ValueOf(key).Convert(rType), nil
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return reflect.Value{}, errs.New(errs.UnexpectedValue, "expected integer key, got %q", key)
	}
	return reflect.ValueOf(i).Convert(rType), nil
}
