package visitor

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"sort"
)

// MapVisitor holds a map of type map[K]E and implements the Visitor interface.
type MapVisitor[K cmp.Ordered, E any] struct {
	data map[K]E
}

// MapVisitorOf creates a visitor iterating aMap in ascending key order.
func MapVisitorOf[K cmp.Ordered, E any](aMap map[K]E) Visitor[K, E] {
	visitor := &MapVisitor[K, E]{data: aMap}
	return visitor.Visit
}

// Visit iterates over the map in key order and calls f for each (key, element).
// - If f returns (true, nil), iteration continues.
// - If f returns (false, nil), iteration stops early.
// - If f returns an error, iteration stops with that error.
func (v *MapVisitor[K, E]) Visit(f func(key K, element E) (bool, error)) error {
	keys := make([]K, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		continueVisit, err := f(k, v.data[k])
		if err != nil {
			return err
		}
		if !continueVisit {
			break
		}
	}
	return nil
}

// AnyMapVisitorOf dynamically creates a key-ordered visitor from any map value.
func AnyMapVisitorOf(value interface{}) (Visitor[any, any], error) {
	switch actual := value.(type) {
	case map[string]interface{}:
		return AnyTypedMapVisitorOf[string, interface{}](actual), nil
	case map[string]string:
		return AnyTypedMapVisitorOf[string, string](actual), nil
	case map[string]int:
		return AnyTypedMapVisitorOf[string, int](actual), nil
	case map[string]float64:
		return AnyTypedMapVisitorOf[string, float64](actual), nil
	case map[string]bool:
		return AnyTypedMapVisitorOf[string, bool](actual), nil
	case map[int]interface{}:
		return AnyTypedMapVisitorOf[int, interface{}](actual), nil
	case map[int]string:
		return AnyTypedMapVisitorOf[int, string](actual), nil
	}
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	visitor := &AnyMapVisitor{data: val}
	return visitor.Visit, nil
}

// AnyTypedMapVisitorOf returns a key-ordered visitor of aMap.
func AnyTypedMapVisitorOf[K cmp.Ordered, V any](aMap map[K]V) Visitor[any, any] {
	visit := MapVisitorOf(aMap)
	return func(f func(key any, element any) (bool, error)) error {
		return visit(func(key K, element V) (bool, error) {
			return f(key, element)
		})
	}
}

// AnyMapVisitor visits a map of any type via reflection.
type AnyMapVisitor struct {
	data reflect.Value
}

// Visit iterates over the map via reflection in key order.
func (v *AnyMapVisitor) Visit(f func(key any, element any) (bool, error)) error {
	keys := v.data.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	for _, key := range keys {
		continueVisit, err := f(key.Interface(), v.data.MapIndex(key).Interface())
		if err != nil {
			return err
		}
		if !continueVisit {
			break
		}
	}
	return nil
}

func lessKey(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.String:
		return a.String() < b.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	}
	return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
}
