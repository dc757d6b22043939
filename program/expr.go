package program

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
)

// Func is a compiled closure value.
type Func struct {
	params   []string
	captured map[string]interface{}
	body     execFn
	env      *Env
}

// Invoke runs the closure with args bound to its parameters.
func (fn *Func) Invoke(args ...interface{}) (interface{}, error) {
	vars := make(map[string]interface{}, len(fn.captured)+len(fn.params))
	for k, v := range fn.captured {
		vars[k] = v
	}
	for i, param := range fn.params {
		var arg interface{}
		if i < len(args) {
			arg = args[i]
		}
		vars[param] = arg
	}
	_, ret, err := fn.body(&frame{env: fn.env, vars: vars})
	return ret, err
}

func compileExpr(expr ast.Expr) (evalFn, error) {
	switch actual := expr.(type) {
	case *ast.Literal:
		value := actual.Value
		return func(f *frame) (interface{}, error) { return value, nil }, nil
	case *ast.Variable:
		name := actual.Name
		return func(f *frame) (interface{}, error) { return f.lookup(name) }, nil
	case *ast.Property:
		return compileProperty(actual)
	case *ast.Index:
		return compileIndex(actual)
	case *ast.Binary:
		return compileBinary(actual)
	case *ast.Unary:
		return compileUnary(actual)
	case *ast.Call:
		return compileCall(actual)
	case *ast.Closure:
		return compileClosure(actual)
	case *ast.TemplateString:
		parts, err := compileExprs(actual.Parts)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (interface{}, error) {
			sb := strings.Builder{}
			for _, part := range parts {
				v, err := part(f)
				if err != nil {
					return nil, err
				}
				if v != nil {
					sb.WriteString(fmt.Sprint(v))
				}
			}
			return sb.String(), nil
		}, nil
	case *ast.Raw:
		return nil, errs.New(errs.InvalidArgument, "raw fragment %q cannot be executed", actual.Code)
	}
	return nil, errs.New(errs.InvalidArgument, "unsupported expression %T", expr)
}

func compileExprs(exprs []ast.Expr) ([]evalFn, error) {
	ret := make([]evalFn, len(exprs))
	for i, expr := range exprs {
		fn, err := compileExpr(expr)
		if err != nil {
			return nil, err
		}
		ret[i] = fn
	}
	return ret, nil
}

func evalAll(f *frame, exprs []evalFn) ([]interface{}, error) {
	ret := make([]interface{}, len(exprs))
	for i, expr := range exprs {
		v, err := expr(f)
		if err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

func compileProperty(expr *ast.Property) (evalFn, error) {
	target, err := compileExpr(expr.Target)
	if err != nil {
		return nil, err
	}
	name := expr.Name
	return func(f *frame) (interface{}, error) {
		value, err := target(f)
		if err != nil {
			return nil, err
		}
		switch actual := value.(type) {
		case map[string]interface{}:
			return actual[name], nil
		case *Array:
			ret, _ := actual.Get(name)
			return ret, nil
		}
		if f.env.Accessor == nil {
			return nil, errs.New(errs.UnexpectedValue, "no accessor for %T.%s", value, name)
		}
		return f.env.Accessor.Property(value, name)
	}, nil
}

func compileIndex(expr *ast.Index) (evalFn, error) {
	if expr.Key == nil {
		return nil, errs.New(errs.InvalidArgument, "append index used as a value")
	}
	target, err := compileExpr(expr.Target)
	if err != nil {
		return nil, err
	}
	key, err := compileExpr(expr.Key)
	if err != nil {
		return nil, err
	}
	return func(f *frame) (interface{}, error) {
		c, err := target(f)
		if err != nil {
			return nil, err
		}
		k, err := key(f)
		if err != nil {
			return nil, err
		}
		return index(c, k)
	}, nil
}

func index(collection, key interface{}) (interface{}, error) {
	switch actual := collection.(type) {
	case *Array:
		ret, _ := actual.Get(key)
		return ret, nil
	case map[string]interface{}:
		if k, ok := key.(string); ok {
			return actual[k], nil
		}
	case []interface{}:
		if i, ok := key.(int); ok && i >= 0 && i < len(actual) {
			return actual[i], nil
		}
		return nil, nil
	case nil:
		return nil, nil
	}
	rValue := reflect.ValueOf(collection)
	switch rValue.Kind() {
	case reflect.Map:
		rKey := reflect.ValueOf(key)
		if !rKey.IsValid() || !rKey.Type().AssignableTo(rValue.Type().Key()) {
			return nil, nil
		}
		if item := rValue.MapIndex(rKey); item.IsValid() {
			return item.Interface(), nil
		}
		return nil, nil
	case reflect.Slice, reflect.Array:
		if i, ok := key.(int); ok && i >= 0 && i < rValue.Len() {
			return rValue.Index(i).Interface(), nil
		}
		return nil, nil
	}
	return nil, errs.New(errs.UnexpectedValue, "cannot index %T", collection)
}

func compileCall(expr *ast.Call) (evalFn, error) {
	args, err := compileExprs(expr.Args)
	if err != nil {
		return nil, err
	}
	name := expr.Name
	if expr.Recv == nil {
		return func(f *frame) (interface{}, error) {
			values, err := evalAll(f, args)
			if err != nil {
				return nil, err
			}
			return f.builtin(name, values)
		}, nil
	}
	recv, err := compileExpr(expr.Recv)
	if err != nil {
		return nil, err
	}
	return func(f *frame) (interface{}, error) {
		target, err := recv(f)
		if err != nil {
			return nil, err
		}
		values, err := evalAll(f, args)
		if err != nil {
			return nil, err
		}
		if name == "" {
			fn, ok := target.(*Func)
			if !ok {
				return nil, errs.New(errs.UnexpectedValue, "%T is not callable", target)
			}
			return fn.Invoke(values...)
		}
		callable, ok := target.(Callable)
		if !ok {
			return nil, errs.New(errs.UnexpectedValue, "%T has no method %s", target, name)
		}
		return callable.Call(name, values)
	}, nil
}

func compileClosure(expr *ast.Closure) (evalFn, error) {
	body, err := compileBlock(expr.Body)
	if err != nil {
		return nil, err
	}
	params, uses := expr.Params, expr.Uses
	return func(f *frame) (interface{}, error) {
		captured := make(map[string]interface{}, len(uses))
		for _, name := range uses {
			value, err := f.lookup(name)
			if err != nil {
				return nil, err
			}
			captured[name] = value
		}
		return &Func{params: params, captured: captured, body: body, env: f.env}, nil
	}, nil
}

func compileUnary(expr *ast.Unary) (evalFn, error) {
	operand, err := compileExpr(expr.Operand)
	if err != nil {
		return nil, err
	}
	switch expr.Op {
	case "!":
		return func(f *frame) (interface{}, error) {
			v, err := operand(f)
			if err != nil {
				return nil, err
			}
			return !truthy(v), nil
		}, nil
	case "-":
		return func(f *frame) (interface{}, error) {
			v, err := operand(f)
			if err != nil {
				return nil, err
			}
			return arithmetic("-", 0, v)
		}, nil
	}
	return nil, errs.New(errs.InvalidArgument, "unsupported unary operator %s", expr.Op)
}

func compileBinary(expr *ast.Binary) (evalFn, error) {
	left, err := compileExpr(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(expr.Right)
	if err != nil {
		return nil, err
	}
	op := expr.Op
	switch op {
	case "&&", "||":
		return func(f *frame) (interface{}, error) {
			l, err := left(f)
			if err != nil {
				return nil, err
			}
			if truthy(l) == (op == "||") {
				return truthy(l), nil
			}
			r, err := right(f)
			if err != nil {
				return nil, err
			}
			return truthy(r), nil
		}, nil
	case "==", "!=", "<", "<=", ">", ">=", "+", "-":
	default:
		return nil, errs.New(errs.InvalidArgument, "unsupported binary operator %s", op)
	}
	return func(f *frame) (interface{}, error) {
		l, err := left(f)
		if err != nil {
			return nil, err
		}
		r, err := right(f)
		if err != nil {
			return nil, err
		}
		switch op {
		case "==":
			return equal(l, r), nil
		case "!=":
			return !equal(l, r), nil
		case "+", "-":
			return arithmetic(op, l, r)
		}
		return compare(op, l, r)
	}, nil
}
