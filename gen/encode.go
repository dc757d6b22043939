package gen

import (
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/hook"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/typ"
)

// Encoder generates programs writing the JSON form of the value input to the out sink.
type Encoder struct {
	registry *registry.Registry
	hooks    *hook.Registry
}

// NewEncoder creates an encode generator; hooks may be nil.
func NewEncoder(r *registry.Registry, hooks *hook.Registry) *Encoder {
	return &Encoder{registry: r, hooks: hooks}
}

// Program generates the statements encoding the value input.
func (e *Encoder) Program(t *typ.Type, ctx *Context) ([]ast.Stmt, error) {
	return e.Generate(t, ast.Var(VarValue), ctx)
}

// Generate generates the statements encoding accessor as t.
func (e *Encoder) Generate(t *typ.Type, accessor ast.Expr, ctx *Context) ([]ast.Stmt, error) {
	s := &site{t: t, accessor: accessor, ctx: ctx}
	if err := shapeOverride(e.hooks, s); err != nil {
		return nil, err
	}
	if s.skip {
		return []ast.Stmt{ast.Write("null")}, nil
	}
	if s.fragment != nil {
		return s.fragment, nil
	}
	return e.generate(s.t, s.accessor, s.ctx)
}

func (e *Encoder) generate(t *typ.Type, accessor ast.Expr, ctx *Context) ([]ast.Stmt, error) {
	switch {
	case t.IsNull():
		return []ast.Stmt{ast.Write("null")}, nil
	case t.IsUnion():
		return nil, errs.New(errs.UnsupportedType, "union %s cannot be encoded, declare a concrete type", t)
	case t.IsNullable():
		inner, err := e.generate(t.NonNullable(), accessor, ctx)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.If{
			Cond: ast.IsNull(accessor),
			Then: []ast.Stmt{ast.Write("null")},
			Else: inner,
		}}, nil
	}
	switch t.Kind() {
	case typ.Bool, typ.Int, typ.Float, typ.String:
		return []ast.Stmt{ast.WriteExpr(ast.Fn(FnEncode, accessor))}, nil
	case typ.Enum:
		return []ast.Stmt{ast.WriteExpr(ast.Fn(FnEncode, ast.Fn(FnEnumValue, ast.Lit(t.Name()), accessor)))}, nil
	case typ.Collection:
		return e.collection(t, accessor, ctx)
	case typ.Record, typ.Generic:
		return e.record(t, accessor, ctx)
	case typ.Template:
		return nil, errs.New(errs.InvalidType, "unbound template %s", t)
	}
	return nil, errs.New(errs.UnsupportedType, "cannot encode %s", t)
}

func (e *Encoder) collection(t *typ.Type, accessor ast.Expr, ctx *Context) ([]ast.Stmt, error) {
	prefix, item := ctx.Var("prefix"), ctx.Var("item")
	value, err := e.Generate(t.Value(), ast.Var(item), ctx)
	if err != nil {
		return nil, err
	}
	loop := &ast.Foreach{Collection: accessor, Value: item}
	open, closing := "[", "]"
	loop.Body = append(loop.Body, ast.WriteExpr(ast.Var(prefix)))
	if t.IsDict() {
		open, closing = "{", "}"
		loop.Key = ctx.Var("key")
		loop.Body = append(loop.Body, ast.WriteExpr(&ast.TemplateString{Parts: []ast.Expr{
			ast.Fn(FnEscapeKey, ast.Var(loop.Key)), ast.Lit(":"),
		}}))
	}
	loop.Body = append(loop.Body, value...)
	loop.Body = append(loop.Body, ast.Set(ast.Var(prefix), ast.Lit(",")))
	return []ast.Stmt{
		ast.Set(ast.Var(prefix), ast.Lit("")),
		ast.Write(open),
		loop,
		ast.Write(closing),
	}, nil
}

type encodedField struct {
	key       string
	omitEmpty bool
	accessor  ast.Expr
	value     []ast.Stmt
}

func (e *Encoder) record(t *typ.Type, accessor ast.Expr, ctx *Context) ([]ast.Stmt, error) {
	s := &site{t: t, accessor: accessor, ctx: ctx}
	if err := objectOverride(e.hooks, s); err != nil {
		return nil, err
	}
	switch {
	case s.skip:
		return []ast.Stmt{ast.Write("null")}, nil
	case s.fragment != nil:
		return s.fragment, nil
	case !s.t.Equal(t):
		return e.Generate(s.t, s.accessor, s.ctx)
	}
	accessor, ctx = s.accessor, s.ctx
	bound, err := bindings(e.registry, t)
	if err != nil {
		return nil, err
	}
	record, err := e.registry.Describe(t.Name())
	if err != nil {
		return nil, err
	}
	identity := t.String()
	if err = ctx.enter(identity); err != nil {
		return nil, err
	}
	defer ctx.leave(identity)

	var fields []*encodedField
	omitting := false
	for _, field := range record.Fields {
		if !field.InGroups(ctx.Groups) {
			continue
		}
		encoded, err := e.field(t, record, field, accessor, ctx, bound)
		if err != nil {
			return nil, err
		}
		if encoded == nil {
			continue
		}
		omitting = omitting || encoded.omitEmpty
		fields = append(fields, encoded)
	}
	if omitting {
		return e.omittingLayout(fields, ctx)
	}
	ret := []ast.Stmt{ast.Write("{")}
	for i, field := range fields {
		separator := ""
		if i > 0 {
			separator = ","
		}
		ret = append(ret, ast.Write(separator+field.key+":"))
		ret = append(ret, field.value...)
	}
	return append(ret, ast.Write("}")), nil
}

func (e *Encoder) omittingLayout(fields []*encodedField, ctx *Context) ([]ast.Stmt, error) {
	prefix := ctx.Var("separator")
	ret := []ast.Stmt{ast.Write("{"), ast.Set(ast.Var(prefix), ast.Lit(""))}
	for _, field := range fields {
		body := []ast.Stmt{ast.WriteExpr(ast.Var(prefix)), ast.Write(field.key + ":")}
		body = append(body, field.value...)
		body = append(body, ast.Set(ast.Var(prefix), ast.Lit(",")))
		if !field.omitEmpty {
			ret = append(ret, body...)
			continue
		}
		ret = append(ret, &ast.If{Cond: &ast.Unary{Op: "!", Operand: ast.Fn(FnEmpty, field.accessor)}, Then: body})
	}
	return append(ret, ast.Write("}")), nil
}

func (e *Encoder) field(t *typ.Type, record *registry.Record, field *registry.Field, accessor ast.Expr, ctx *Context, bound map[string]*typ.Type) (*encodedField, error) {
	s := &site{
		t:        typ.Substitute(field.Type, bound),
		accessor: ast.Prop(accessor, field.Name),
		ctx:      ctx,
		key:      field.Key,
	}
	if err := fieldOverride(e.hooks, t.Name(), field, s); err != nil {
		return nil, err
	}
	if s.skip {
		return nil, nil
	}
	if !field.Exported && s.fragment == nil {
		return nil, errs.New(errs.Visibility, "%s.%s is not exported", record.Name, field.Name)
	}
	key, err := quoteKey(s.key)
	if err != nil {
		return nil, err
	}
	ret := &encodedField{key: key, omitEmpty: field.OmitEmpty, accessor: s.accessor, value: s.fragment}
	if ret.value != nil {
		return ret, nil
	}
	name, _, err := formatter(e.hooks, t.Name(), field, s.t)
	if err != nil {
		return nil, err
	}
	if name != "" {
		ctxLiteral, err := s.ctx.literal()
		if err != nil {
			return nil, err
		}
		ret.value = []ast.Stmt{ast.WriteExpr(ast.Fn(FnEncode, ast.Fn(FnFormat, ast.Lit(name), s.accessor, ctxLiteral)))}
		return ret, nil
	}
	if ret.value, err = e.Generate(s.t, s.accessor, s.ctx); err != nil {
		return nil, err
	}
	return ret, nil
}
