package registry

import (
	"reflect"

	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/typ"
)

var (
	interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
	intType       = reflect.TypeOf(0)
	floatType     = reflect.TypeOf(0.0)
	stringType    = reflect.TypeOf("")
	boolType      = reflect.TypeOf(false)
)

// GoType returns the Go storage type of t.
func (r *Registry) GoType(t *typ.Type) (reflect.Type, error) {
	var ret reflect.Type
	switch t.Kind() {
	case typ.Null, typ.Union, typ.Template:
		return interfaceType, nil
	case typ.Bool:
		ret = boolType
	case typ.Int:
		ret = intType
	case typ.Float:
		ret = floatType
	case typ.String:
		ret = stringType
	case typ.Enum:
		enum, ok := r.Enum(t.Name())
		if !ok {
			return nil, errs.New(errs.InvalidType, "unknown enum %s", t.Name())
		}
		ret = enum.Type
	case typ.Record, typ.Generic:
		e, ok := r.lookup(t.Name())
		if !ok {
			return nil, errs.New(errs.InvalidType, "unknown record %s", t.Name())
		}
		return reflect.PtrTo(e.rType), nil
	case typ.Collection:
		value, err := r.GoType(t.Value())
		if err != nil {
			return nil, err
		}
		if t.IsList() {
			return reflect.SliceOf(value), nil
		}
		key := stringType
		if t.Key().Kind() == typ.Int {
			key = intType
		}
		return reflect.MapOf(key, value), nil
	default:
		return nil, errs.New(errs.UnsupportedType, "no Go type for %s", t)
	}
	if t.IsNullable() {
		return reflect.PtrTo(ret), nil
	}
	return ret, nil
}
