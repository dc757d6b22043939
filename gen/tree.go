package gen

import (
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/typ"
)

// tree generates an eager program: the boundary is decoded once into data,
// which is then walked inline. Records already being walked, and unions, are
// delegated to the walk builtin running the eager program of that type.
func (d *Decoder) tree(t *typ.Type, ctx *Context) ([]ast.Stmt, error) {
	result := ctx.Var("result")
	walk, err := d.walk(t, ast.Var(VarData), result, ctx)
	if err != nil {
		return nil, err
	}
	ret := []ast.Stmt{&ast.If{
		Cond: &ast.Binary{Op: "!=", Left: source(), Right: ast.Lit(nil)},
		Then: []ast.Stmt{ast.Set(ast.Var(VarData), ast.Fn(FnDecodeAll, source(), boundary()))},
	}}
	ret = append(ret, walk...)
	return append(ret, &ast.Return{Value: ast.Var(result)}), nil
}

func (d *Decoder) walk(t *typ.Type, accessor ast.Expr, result string, ctx *Context) ([]ast.Stmt, error) {
	s := &site{t: t, accessor: accessor, ctx: ctx}
	if err := shapeOverride(d.hooks, s); err != nil {
		return nil, err
	}
	switch {
	case s.skip:
		return []ast.Stmt{ast.Set(ast.Var(result), ast.Lit(nil))}, nil
	case s.fragment != nil:
		return s.fragment, nil
	}
	t, accessor, ctx = s.t, s.accessor, s.ctx
	if t.IsNull() {
		return []ast.Stmt{ast.Set(ast.Var(result), ast.Lit(nil))}, nil
	}
	nonNull, err := d.walkValue(t, accessor, result, ctx)
	if err != nil {
		return nil, err
	}
	guard := &ast.If{Cond: ast.IsNull(accessor), Else: nonNull}
	if t.IsNullable() {
		guard.Then = []ast.Stmt{ast.Set(ast.Var(result), ast.Lit(nil))}
	} else {
		guard.Then = []ast.Stmt{nullThrow(t.String())}
	}
	return []ast.Stmt{guard}, nil
}

func (d *Decoder) walkValue(t *typ.Type, accessor ast.Expr, result string, ctx *Context) ([]ast.Stmt, error) {
	if t.IsUnion() {
		selected := ast.Fn(FnSelectUnion, ast.Lit(t.NonNullable().String()))
		return []ast.Stmt{ast.Set(ast.Var(result), ast.Fn(FnWalk, accessor, selected))}, nil
	}
	switch t.Kind() {
	case typ.Bool, typ.Int, typ.Float, typ.String, typ.Enum:
		return []ast.Stmt{ast.Set(ast.Var(result), ast.Fn(FnCast, accessor, ast.Lit(t.NonNullable().String())))}, nil
	case typ.Collection:
		return d.walkCollection(t, accessor, result, ctx)
	case typ.Record, typ.Generic:
		return d.walkRecord(t, accessor, result, ctx)
	case typ.Template:
		return nil, errs.New(errs.InvalidType, "unbound template %s", t)
	}
	return nil, errs.New(errs.UnsupportedType, "cannot decode %s", t)
}

func (d *Decoder) walkCollection(t *typ.Type, accessor ast.Expr, result string, ctx *Context) ([]ast.Stmt, error) {
	items, item, value := ctx.Var("items"), ctx.Var("item"), ctx.Var("value")
	shape, method := "list", "list"
	loop := &ast.Foreach{Collection: accessor, Value: item}
	var key ast.Expr
	if t.IsDict() {
		shape, method = "dict", "dict"
		loop.Key = ctx.Var("key")
		key = ast.Var(loop.Key)
	}
	element, err := d.walk(t.Value(), ast.Var(item), value, ctx)
	if err != nil {
		return nil, err
	}
	loop.Body = append(element, ast.Set(&ast.Index{Target: ast.Var(items), Key: key}, ast.Var(value)))
	return []ast.Stmt{
		ast.Eval(ast.Fn(FnExpect, accessor, ast.Lit(shape))),
		ast.Set(ast.Var(items), ast.Fn(FnArray)),
		loop,
		ast.Set(ast.Var(result), ast.Method(ast.Var(VarInstantiator), method, ast.Lit(t.NonNullable().String()), ast.Var(items))),
	}, nil
}

func (d *Decoder) walkRecord(t *typ.Type, accessor ast.Expr, result string, ctx *Context) ([]ast.Stmt, error) {
	s := &site{t: t, accessor: accessor, ctx: ctx}
	if err := objectOverride(d.hooks, s); err != nil {
		return nil, err
	}
	switch {
	case s.skip:
		return []ast.Stmt{ast.Set(ast.Var(result), ast.Lit(nil))}, nil
	case s.fragment != nil:
		return s.fragment, nil
	case !s.t.Equal(t):
		return d.walk(s.t, s.accessor, result, s.ctx)
	}
	identity := t.NonNullable().String()
	if err := ctx.enter(identity); err != nil {
		return []ast.Stmt{ast.Set(ast.Var(result), ast.Fn(FnWalk, accessor, ast.Lit(identity)))}, nil
	}
	defer ctx.leave(identity)
	fields, err := d.fields(t, s.ctx)
	if err != nil {
		return nil, err
	}
	values := ctx.Var("fields")
	ret := []ast.Stmt{
		ast.Eval(ast.Fn(FnExpect, accessor, ast.Lit("dict"))),
		ast.Set(ast.Var(values), ast.Fn(FnArray)),
	}
	for _, field := range fields {
		raw := &ast.Index{Target: accessor, Key: ast.Lit(field.key)}
		target := &ast.Index{Target: ast.Var(values), Key: ast.Lit(field.name)}
		var body []ast.Stmt
		if field.formatter != "" {
			ctxLiteral, err := field.ctx.literal()
			if err != nil {
				return nil, err
			}
			body = []ast.Stmt{ast.Set(target, ast.Fn(FnParse, ast.Lit(field.formatter), raw, ctxLiteral))}
		} else {
			value := ctx.Var("value")
			if body, err = d.walk(field.t, raw, value, field.ctx); err != nil {
				return nil, err
			}
			body = append(body, ast.Set(target, ast.Var(value)))
		}
		ret = append(ret, &ast.If{Cond: ast.Fn(FnHas, accessor, ast.Lit(field.key)), Then: body})
	}
	return append(ret, ast.Set(ast.Var(result), ast.Method(ast.Var(VarInstantiator), "record", ast.Lit(identity), ast.Var(values)))), nil
}
