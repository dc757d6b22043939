package registry

import (
	"reflect"
	"unsafe"

	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/internal/tags"
	"github.com/viant/typecodec/typ"
	"github.com/viant/xunsafe"
)

type (
	// Field describes a record field.
	Field struct {
		Name      string
		Key       string
		Type      *typ.Type
		Exported  bool
		Groups    []string
		OmitEmpty bool
		Formatter string
		rType     reflect.Type
		xField    *xunsafe.Field
	}

	// Record describes a registered struct.
	Record struct {
		Name      string
		Type      reflect.Type
		Templates []string
		Parent    string
		Fields    []*Field
		byName    map[string]*Field
		byKey     map[string]*Field
	}
)

// Describe returns the cached descriptor of a record identity.
func (r *Registry) Describe(name string) (*Record, error) {
	r.mux.RLock()
	ret, ok := r.described[name]
	r.mux.RUnlock()
	if ok {
		return ret, nil
	}
	e, ok := r.lookup(name)
	if !ok {
		return nil, errs.New(errs.InvalidType, "unknown record %s", name)
	}
	ret, err := r.describe(e)
	if err != nil {
		return nil, err
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	if prev, ok := r.described[name]; ok {
		return prev, nil
	}
	r.described[name] = ret
	return ret, nil
}

func (r *Registry) describe(e *entry) (*Record, error) {
	ret := &Record{
		Name:      e.name,
		Type:      e.rType,
		Templates: e.templates,
		Parent:    e.parent,
		byName:    map[string]*Field{},
		byKey:     map[string]*Field{},
	}
	builder := r.Builder(e.name)
	for i := 0; i < e.rType.NumField(); i++ {
		sf := e.rType.Field(i)
		resolved, err := tags.Resolve(sf, r.caseFormat)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, err, "%s.%s", e.name, sf.Name)
		}
		if resolved.Ignore || (!sf.IsExported() && resolved.Codec == nil) {
			continue
		}
		field := &Field{
			Name:      sf.Name,
			Key:       resolved.Key,
			Exported:  sf.IsExported(),
			OmitEmpty: resolved.OmitEmpty,
			rType:     sf.Type,
			xField:    xunsafe.NewField(sf),
		}
		if codec := resolved.Codec; codec != nil {
			field.Groups = codec.Groups
			field.Formatter = codec.Formatter
			if codec.Type != "" {
				if field.Type, err = builder.Parse(codec.Type); err != nil {
					return nil, errs.Wrap(errs.InvalidType, err, "%s.%s", e.name, sf.Name)
				}
			}
		}
		if field.Type == nil {
			if field.Type, err = typ.FromReflect(sf.Type, r); err != nil {
				return nil, errs.Wrap(errs.UnsupportedType, err, "%s.%s", e.name, sf.Name)
			}
		}
		ret.Fields = append(ret.Fields, field)
		ret.byName[field.Name] = field
		ret.byKey[field.Key] = field
	}
	return ret, nil
}

// Field returns a field by Go name.
func (r *Record) Field(name string) (*Field, bool) {
	ret, ok := r.byName[name]
	return ret, ok
}

// FieldByKey returns a field by JSON key.
func (r *Record) FieldByKey(key string) (*Field, bool) {
	ret, ok := r.byKey[key]
	return ret, ok
}

// New allocates a zero record value.
func (r *Record) New() interface{} { return reflect.New(r.Type).Interface() }

// Pointer returns the struct address of value (a struct pointer or struct).
func (r *Record) Pointer(value interface{}) (unsafe.Pointer, error) {
	if value == nil {
		return nil, errs.New(errs.UnexpectedValue, "expected %s, got null", r.Name)
	}
	rValue := reflect.ValueOf(value)
	switch {
	case rValue.Kind() == reflect.Ptr && rValue.Type().Elem() == r.Type:
		if rValue.IsNil() {
			return nil, errs.New(errs.UnexpectedValue, "nil %s", r.Name)
		}
		return xunsafe.AsPointer(value), nil
	case rValue.Type() == r.Type:
		ptr := reflect.New(r.Type)
		ptr.Elem().Set(rValue)
		return xunsafe.AsPointer(ptr.Interface()), nil
	}
	return nil, errs.New(errs.UnexpectedValue, "expected %s, got %T", r.Name, value)
}

// GoType returns the field Go type.
func (f *Field) GoType() reflect.Type { return f.rType }

// Value reads the field of the struct at ptr; nil pointers read as nil and
// pointers to non-struct values are dereferenced.
func (f *Field) Value(ptr unsafe.Pointer) interface{} {
	value := f.xField.Value(ptr)
	if f.rType.Kind() != reflect.Ptr {
		return value
	}
	rValue := reflect.ValueOf(value)
	if rValue.IsNil() {
		return nil
	}
	if f.rType.Elem().Kind() == reflect.Struct {
		return value
	}
	return rValue.Elem().Interface()
}

// Set stores value, which must be assignable to the field Go type.
func (f *Field) Set(ptr unsafe.Pointer, value reflect.Value) {
	reflect.NewAt(f.rType, f.xField.Pointer(ptr)).Elem().Set(value)
}

// InGroups reports whether the field is selected by groups; fields without groups always are.
func (f *Field) InGroups(groups []string) bool {
	if len(groups) == 0 || len(f.Groups) == 0 {
		return true
	}
	for _, candidate := range f.Groups {
		for _, group := range groups {
			if candidate == group {
				return true
			}
		}
	}
	return false
}
