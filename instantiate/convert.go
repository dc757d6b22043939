package instantiate

import (
	"math"
	"reflect"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/viant/typecodec/errs"
)

// Materializer is implemented by lazy values that can be turned into typed values.
type Materializer interface {
	Materialize() (interface{}, error)
}

// Convert converts a decoded value into rType.
func Convert(value interface{}, rType reflect.Type) (reflect.Value, error) {
	if m, ok := value.(Materializer); ok {
		materialized, err := m.Materialize()
		if err != nil {
			return reflect.Value{}, err
		}
		value = materialized
	}
	if value == nil {
		return reflect.Zero(rType), nil
	}
	rValue := reflect.ValueOf(value)
	if rValue.Type() == rType || (rType.Kind() == reflect.Interface && rValue.Type().Implements(rType)) {
		return rValue, nil
	}
	switch rType.Kind() {
	case reflect.Ptr:
		if rValue.Kind() == reflect.Ptr {
			if rValue.IsNil() {
				return reflect.Zero(rType), nil
			}
			rValue = rValue.Elem()
		}
		elem, err := Convert(rValue.Interface(), rType.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(rType.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	case reflect.Slice:
		return convertSlice(rValue, rType)
	case reflect.Map:
		return convertMap(rValue, rType)
	}
	if rValue.Kind() == reflect.Ptr {
		if rValue.IsNil() {
			return reflect.Zero(rType), nil
		}
		return Convert(rValue.Elem().Interface(), rType)
	}
	return convertScalar(value, rValue, rType)
}

func convertSlice(rValue reflect.Value, rType reflect.Type) (reflect.Value, error) {
	if kind := rValue.Kind(); kind != reflect.Slice && kind != reflect.Array {
		return reflect.Value{}, errs.New(errs.UnexpectedValue, "expected list for %s, got %s", rType, rValue.Type())
	}
	ret := reflect.MakeSlice(rType, rValue.Len(), rValue.Len())
	for i := 0; i < rValue.Len(); i++ {
		item, err := Convert(rValue.Index(i).Interface(), rType.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ret.Index(i).Set(item)
	}
	return ret, nil
}

func convertMap(rValue reflect.Value, rType reflect.Type) (reflect.Value, error) {
	if rValue.Kind() != reflect.Map {
		return reflect.Value{}, errs.New(errs.UnexpectedValue, "expected dict for %s, got %s", rType, rValue.Type())
	}
	ret := reflect.MakeMapWithSize(rType, rValue.Len())
	iter := rValue.MapRange()
	for iter.Next() {
		key, err := convertKey(iter.Key().Interface(), rType.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		item, err := Convert(iter.Value().Interface(), rType.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ret.SetMapIndex(key, item)
	}
	return ret, nil
}

func convertKey(key interface{}, rType reflect.Type) (reflect.Value, error) {
	if text, ok := key.(string); ok && rType.Kind() != reflect.String {
		i, err := strconv.Atoi(text)
		if err != nil {
			return reflect.Value{}, errs.New(errs.UnexpectedValue, "expected integer key, got %q", text)
		}
		key = i
	}
	return Convert(key, rType)
}

func convertScalar(value interface{}, rValue reflect.Value, rType reflect.Type) (reflect.Value, error) {
	if number, ok := value.(json.Number); ok {
		if i, err := number.Int64(); err == nil {
			value = int(i)
		} else if f, err := number.Float64(); err == nil {
			value = f
		}
		rValue = reflect.ValueOf(value)
	}
	switch rType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f, ok := value.(float64); ok {
			if f != math.Trunc(f) {
				return reflect.Value{}, errs.New(errs.UnexpectedValue, "expected integer, got %v", f)
			}
			rValue = reflect.ValueOf(int64(f))
		}
		if !isNumeric(rValue.Kind()) {
			break
		}
		return rValue.Convert(rType), nil
	case reflect.Float32, reflect.Float64:
		if !isNumeric(rValue.Kind()) {
			break
		}
		return rValue.Convert(rType), nil
	case reflect.String, reflect.Bool:
		if rValue.Kind() != rType.Kind() {
			break
		}
		return rValue.Convert(rType), nil
	}
	return reflect.Value{}, errs.New(errs.UnexpectedValue, "cannot convert %T to %s", value, rType)
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
