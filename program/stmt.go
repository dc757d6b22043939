package program

import (
	"fmt"

	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/visitor"
)

func compileBlock(stmts []ast.Stmt) (execFn, error) {
	ops := make([]execFn, 0, len(stmts))
	for _, stmt := range stmts {
		op, err := compileStmt(stmt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return func(f *frame) (flow, interface{}, error) {
		for _, op := range ops {
			state, ret, err := op(f)
			if err != nil || state == returned {
				return state, ret, err
			}
		}
		return next, nil, nil
	}, nil
}

func compileStmt(stmt ast.Stmt) (execFn, error) {
	switch actual := stmt.(type) {
	case *ast.Assign:
		return compileAssign(actual)
	case *ast.ExprStmt:
		expr, err := compileExpr(actual.Expr)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (flow, interface{}, error) {
			_, err := expr(f)
			return next, nil, err
		}, nil
	case *ast.Foreach:
		return compileForeach(actual)
	case *ast.If:
		return compileIf(actual)
	case *ast.Return:
		if actual.Value == nil {
			return func(f *frame) (flow, interface{}, error) { return returned, nil, nil }, nil
		}
		value, err := compileExpr(actual.Value)
		if err != nil {
			return nil, err
		}
		return func(f *frame) (flow, interface{}, error) {
			ret, err := value(f)
			return returned, ret, err
		}, nil
	case *ast.Throw:
		return compileThrow(actual)
	case *ast.Try:
		return compileTry(actual)
	}
	return nil, errs.New(errs.InvalidArgument, "unsupported statement %T", stmt)
}

func compileAssign(stmt *ast.Assign) (execFn, error) {
	value, err := compileExpr(stmt.Value)
	if err != nil {
		return nil, err
	}
	switch target := stmt.Target.(type) {
	case *ast.Variable:
		name := target.Name
		return func(f *frame) (flow, interface{}, error) {
			v, err := value(f)
			if err != nil {
				return next, nil, err
			}
			f.vars[name] = v
			return next, nil, nil
		}, nil
	case *ast.Index:
		collection, err := compileExpr(target.Target)
		if err != nil {
			return nil, err
		}
		var key evalFn
		if target.Key != nil {
			if key, err = compileExpr(target.Key); err != nil {
				return nil, err
			}
		}
		return func(f *frame) (flow, interface{}, error) {
			c, err := collection(f)
			if err != nil {
				return next, nil, err
			}
			array, ok := c.(*Array)
			if !ok {
				return next, nil, errs.New(errs.UnexpectedValue, "cannot index-assign %T", c)
			}
			v, err := value(f)
			if err != nil {
				return next, nil, err
			}
			if key == nil {
				array.Append(v)
				return next, nil, nil
			}
			k, err := key(f)
			if err != nil {
				return next, nil, err
			}
			array.Set(k, v)
			return next, nil, nil
		}, nil
	}
	return nil, errs.New(errs.InvalidArgument, "cannot assign to %T", stmt.Target)
}

func compileForeach(stmt *ast.Foreach) (execFn, error) {
	collection, err := compileExpr(stmt.Collection)
	if err != nil {
		return nil, err
	}
	body, err := compileBlock(stmt.Body)
	if err != nil {
		return nil, err
	}
	keyName, valueName := stmt.Key, stmt.Value
	return func(f *frame) (flow, interface{}, error) {
		c, err := collection(f)
		if err != nil {
			return next, nil, err
		}
		visit, err := visitor.Of(c)
		if err != nil {
			return next, nil, errs.Wrap(errs.UnexpectedValue, err, "foreach")
		}
		state, ret := next, interface{}(nil)
		err = visit(func(key, element any) (bool, error) {
			if keyName != "" {
				f.vars[keyName] = key
			}
			f.vars[valueName] = element
			var err error
			state, ret, err = body(f)
			return err == nil && state != returned, err
		})
		return state, ret, err
	}, nil
}

func compileIf(stmt *ast.If) (execFn, error) {
	conds := make([]evalFn, 0, 1+len(stmt.ElseIfs))
	bodies := make([]execFn, 0, 2+len(stmt.ElseIfs))
	cond, err := compileExpr(stmt.Cond)
	if err != nil {
		return nil, err
	}
	body, err := compileBlock(stmt.Then)
	if err != nil {
		return nil, err
	}
	conds, bodies = append(conds, cond), append(bodies, body)
	for _, branch := range stmt.ElseIfs {
		if cond, err = compileExpr(branch.Cond); err != nil {
			return nil, err
		}
		if body, err = compileBlock(branch.Body); err != nil {
			return nil, err
		}
		conds, bodies = append(conds, cond), append(bodies, body)
	}
	otherwise, err := compileBlock(stmt.Else)
	if err != nil {
		return nil, err
	}
	return func(f *frame) (flow, interface{}, error) {
		for i, cond := range conds {
			ok, err := cond(f)
			if err != nil {
				return next, nil, err
			}
			if truthy(ok) {
				return bodies[i](f)
			}
		}
		return otherwise(f)
	}, nil
}

func compileThrow(stmt *ast.Throw) (execFn, error) {
	kind, ok := errs.Lookup(stmt.Kind)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "unknown error kind %s", stmt.Kind)
	}
	var message evalFn
	if stmt.Message != nil {
		var err error
		if message, err = compileExpr(stmt.Message); err != nil {
			return nil, err
		}
	}
	return func(f *frame) (flow, interface{}, error) {
		text := stmt.Kind
		if message != nil {
			m, err := message(f)
			if err != nil {
				return next, nil, err
			}
			text = fmt.Sprint(m)
		}
		return next, nil, errs.New(kind, "%s", text)
	}, nil
}

func compileTry(stmt *ast.Try) (execFn, error) {
	body, err := compileBlock(stmt.Body)
	if err != nil {
		return nil, err
	}
	catch, err := compileBlock(stmt.Catch)
	if err != nil {
		return nil, err
	}
	name := stmt.Var
	return func(f *frame) (flow, interface{}, error) {
		state, ret, err := body(f)
		if err == nil {
			return state, ret, nil
		}
		if name != "" {
			f.vars[name] = err
		}
		return catch(f)
	}, nil
}
