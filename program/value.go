package program

import (
	"fmt"
	"reflect"

	"github.com/viant/typecodec/errs"
)

// IsNull reports whether value is nil or a nil pointer, slice, map or func.
func IsNull(value interface{}) bool {
	if value == nil {
		return true
	}
	rValue := reflect.ValueOf(value)
	switch rValue.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Interface:
		return rValue.IsNil()
	}
	return false
}

func truthy(value interface{}) bool {
	switch actual := value.(type) {
	case bool:
		return actual
	case string:
		return actual != ""
	case int:
		return actual != 0
	case float64:
		return actual != 0
	}
	return !IsNull(value)
}

func number(value interface{}) (float64, bool, bool) {
	switch actual := value.(type) {
	case int:
		return float64(actual), true, true
	case int64:
		return float64(actual), true, true
	case float64:
		return actual, false, true
	}
	return 0, false, false
}

func equal(left, right interface{}) bool {
	leftNull, rightNull := IsNull(left), IsNull(right)
	if leftNull || rightNull {
		return leftNull == rightNull
	}
	if l, _, ok := number(left); ok {
		if r, _, ok := number(right); ok {
			return l == r
		}
		return false
	}
	lType, rType := reflect.TypeOf(left), reflect.TypeOf(right)
	if lType != rType || !lType.Comparable() {
		return false
	}
	return left == right
}

func arithmetic(op string, left, right interface{}) (interface{}, error) {
	if op == "+" {
		if l, ok := left.(string); ok {
			return l + fmt.Sprint(right), nil
		}
		if r, ok := right.(string); ok {
			return fmt.Sprint(left) + r, nil
		}
	}
	l, lInt, lok := number(left)
	r, rInt, rok := number(right)
	if !lok || !rok {
		return nil, errs.New(errs.UnexpectedValue, "cannot apply %s to %T and %T", op, left, right)
	}
	ret := l + r
	if op == "-" {
		ret = l - r
	}
	if lInt && rInt {
		return int(ret), nil
	}
	return ret, nil
}

func compare(op string, left, right interface{}) (interface{}, error) {
	var cmp int
	if l, ok := left.(string); ok {
		r, ok := right.(string)
		if !ok {
			return nil, errs.New(errs.UnexpectedValue, "cannot compare %T with %T", left, right)
		}
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	} else {
		l, _, lok := number(left)
		r, _, rok := number(right)
		if !lok || !rok {
			return nil, errs.New(errs.UnexpectedValue, "cannot compare %T with %T", left, right)
		}
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	}
	switch op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	}
	return cmp >= 0, nil
}
