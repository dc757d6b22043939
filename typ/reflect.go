package typ

import (
	"reflect"

	"github.com/viant/typecodec/errs"
)

// Namer resolves Go types to registered identities.
type Namer interface {
	// TypeName returns identity and kind (Record or Enum) of a named Go type.
	TypeName(rType reflect.Type) (name string, kind Kind, ok bool)
}

// FromReflect builds a type from a Go type. Pointers become nullable, slices and
// arrays become lists, maps keyed by strings or integers become dictionaries and
// structs become records named by namer (the Go type name otherwise).
func FromReflect(rType reflect.Type, namer Namer) (*Type, error) {
	if rType == nil {
		return nil, errs.New(errs.InvalidType, "nil reflect type")
	}
	if namer != nil && rType.Kind() != reflect.Ptr {
		if name, kind, ok := namer.TypeName(rType); ok {
			if kind == Enum {
				return EnumOf(name), nil
			}
			return RecordOf(name), nil
		}
	}
	switch rType.Kind() {
	case reflect.Bool:
		return BoolType(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return IntType(), nil
	case reflect.Float32, reflect.Float64:
		return FloatType(), nil
	case reflect.String:
		return StringType(), nil
	case reflect.Ptr:
		elem, err := FromReflect(rType.Elem(), namer)
		if err != nil {
			return nil, err
		}
		return Nullable(elem), nil
	case reflect.Slice, reflect.Array:
		elem, err := FromReflect(rType.Elem(), namer)
		if err != nil {
			return nil, err
		}
		return ListOf(elem), nil
	case reflect.Map:
		var key *Type
		switch rType.Key().Kind() {
		case reflect.String:
			key = StringType()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			key = IntType()
		default:
			return nil, errs.New(errs.UnsupportedType, "unsupported map key %s", rType.Key())
		}
		value, err := FromReflect(rType.Elem(), namer)
		if err != nil {
			return nil, err
		}
		return DictOf(key, value), nil
	case reflect.Struct:
		if rType.Name() == "" {
			return nil, errs.New(errs.UnsupportedType, "anonymous struct %s has no identity", rType)
		}
		return RecordOf(rType.Name()), nil
	case reflect.Interface:
		return nil, errs.New(errs.UnsupportedType, "%s needs a declared type", rType)
	}
	return nil, errs.New(errs.UnsupportedType, "unsupported kind %s", rType.Kind())
}
