package visitor

import (
	"fmt"
	"reflect"
)

// Visitor is an interface that Visits over pairs of (key, element).
// The Visit method calls the provided callback for each pair.
// If the callback returns (false, nil), the Visit stops.
// If the callback returns an error, the Visit stops and returns that error.
type Visitor[K comparable, E any] func(func(key K, element E) (bool, error)) error

// Visitable is implemented by collections that iterate themselves.
type Visitable interface {
	Visit(f func(key, element any) (bool, error)) error
}

// Of returns a visitor for a slice, array, map or Visitable; nil visits nothing.
func Of(value interface{}) (Visitor[any, any], error) {
	switch actual := value.(type) {
	case nil:
		return empty, nil
	case Visitable:
		return actual.Visit, nil
	}
	rValue := reflect.ValueOf(value)
	switch rValue.Kind() {
	case reflect.Ptr:
		if rValue.IsNil() {
			return empty, nil
		}
		return Of(rValue.Elem().Interface())
	case reflect.Slice, reflect.Array:
		visit, err := AnySliceVisitorOf(value)
		if err != nil {
			return nil, err
		}
		return func(f func(key any, element any) (bool, error)) error {
			return visit(func(key int, element any) (bool, error) {
				return f(key, element)
			})
		}, nil
	case reflect.Map:
		return AnyMapVisitorOf(value)
	}
	return nil, fmt.Errorf("expected collection, got %T", value)
}

func empty(func(key any, element any) (bool, error)) error { return nil }
