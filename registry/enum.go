package registry

import (
	"reflect"

	"github.com/viant/typecodec/errs"
)

// Enum describes a named string or integer type.
type Enum struct {
	Name  string
	Type  reflect.Type
	cases map[interface{}]bool
}

func newEnum(name string, rType reflect.Type, cases []interface{}) (*Enum, error) {
	ret := &Enum{Name: name, Type: rType}
	if backingKind(rType) == reflect.Invalid {
		return nil, errs.New(errs.InvalidArgument, "enum %s must be backed by string or integer, got %s", name, rType)
	}
	if len(cases) == 0 {
		return ret, nil
	}
	accepted := make(map[interface{}]bool, len(cases))
	for _, item := range cases {
		value, err := ret.Value(item)
		if err != nil {
			return nil, err
		}
		if _, isString := value.(string); isString != (backingKind(rType) == reflect.String) {
			return nil, errs.New(errs.UnexpectedValue, "%v is not a %s backed %s case", item, backingKind(rType), name)
		}
		accepted[value] = true
	}
	ret.cases = accepted
	return ret, nil
}

// Value returns the backing value (string or int) of an enum value.
func (e *Enum) Value(value interface{}) (interface{}, error) {
	rValue := reflect.ValueOf(value)
	var ret interface{}
	switch rValue.Kind() {
	case reflect.String:
		ret = rValue.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		ret = int(rValue.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ret = int(rValue.Uint())
	default:
		return nil, errs.New(errs.UnexpectedValue, "%v is not a %s value", value, e.Name)
	}
	if e.cases != nil && !e.cases[ret] {
		return nil, errs.New(errs.UnexpectedValue, "%v is not a %s case", value, e.Name)
	}
	return ret, nil
}

// From converts a decoded backing value into the enum Go type.
func (e *Enum) From(backing interface{}) (interface{}, error) {
	if f, ok := backing.(float64); ok && f == float64(int(f)) {
		backing = int(f)
	}
	value, err := e.Value(backing)
	if err != nil {
		return nil, err
	}
	rValue := reflect.ValueOf(value)
	kind := backingKind(e.Type)
	if (kind == reflect.String) != (rValue.Kind() == reflect.String) {
		return nil, errs.New(errs.UnexpectedValue, "expected %s backing value for %s, got %T", kind, e.Name, backing)
	}
	return rValue.Convert(e.Type).Interface(), nil
}

func backingKind(rType reflect.Type) reflect.Kind {
	switch rType.Kind() {
	case reflect.String:
		return reflect.String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.Int
	}
	return reflect.Invalid
}
