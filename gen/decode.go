package gen

import (
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/hook"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/typ"
)

// Decoder generates programs decoding the boundary of the source input.
//
// Lazy programs decode one level: collection elements and record fields
// become closures calling decode on their own boundary. Eager programs decode
// the whole boundary once and walk the resulting tree.
type Decoder struct {
	registry *registry.Registry
	hooks    *hook.Registry
}

// NewDecoder creates a decode generator; hooks may be nil.
func NewDecoder(r *registry.Registry, hooks *hook.Registry) *Decoder {
	return &Decoder{registry: r, hooks: hooks}
}

// Generate generates a lazy or eager decode program of t, as selected by ctx.Lazy.
func (d *Decoder) Generate(t *typ.Type, ctx *Context) ([]ast.Stmt, error) {
	if !ctx.Lazy {
		return d.tree(t, ctx)
	}
	s := &site{t: t, ctx: ctx}
	if err := shapeOverride(d.hooks, s); err != nil {
		return nil, err
	}
	if s.skip {
		return []ast.Stmt{&ast.Return{Value: ast.Lit(nil)}}, nil
	}
	if s.fragment != nil {
		return s.fragment, nil
	}
	t, ctx = s.t, s.ctx
	switch {
	case t.IsNull():
		return []ast.Stmt{&ast.Return{Value: ast.Lit(nil)}}, nil
	case t.IsUnion():
		return d.union(t), nil
	}
	switch t.Kind() {
	case typ.Bool, typ.Int, typ.Float, typ.String, typ.Enum:
		return d.scalar(t, ctx), nil
	case typ.Collection:
		return d.collection(t, ctx), nil
	case typ.Record, typ.Generic:
		return d.record(t, ctx)
	case typ.Template:
		return nil, errs.New(errs.InvalidType, "unbound template %s", t)
	}
	return nil, errs.New(errs.UnsupportedType, "cannot decode %s", t)
}

func source() ast.Expr   { return ast.Var(VarSource) }
func boundary() ast.Expr { return ast.Var(VarBoundary) }

func onNull(t *typ.Type) ast.Stmt {
	if t.IsNullable() {
		return &ast.Return{Value: ast.Lit(nil)}
	}
	return nullThrow(t.String())
}

func (d *Decoder) scalar(t *typ.Type, ctx *Context) []ast.Stmt {
	value := ctx.Var("value")
	return []ast.Stmt{
		ast.Set(ast.Var(value), ast.Fn(FnDecodeScalar, source(), boundary())),
		&ast.If{Cond: ast.IsNull(ast.Var(value)), Then: []ast.Stmt{onNull(t)}},
		&ast.Return{Value: ast.Fn(FnCast, ast.Var(value), ast.Lit(t.NonNullable().String()))},
	}
}

func (d *Decoder) union(t *typ.Type) []ast.Stmt {
	var ret []ast.Stmt
	if t.IsNullable() {
		ret = append(ret, &ast.If{
			Cond: ast.Fn(FnIsNull, source(), boundary()),
			Then: []ast.Stmt{&ast.Return{Value: ast.Lit(nil)}},
		})
	}
	selected := ast.Fn(FnSelectUnion, ast.Lit(t.NonNullable().String()))
	return append(ret, &ast.Return{Value: ast.Fn(FnDecode, source(), selected, boundary())})
}

// thunk returns a closure decoding the element boundary held by variable item as t.
func thunk(t *typ.Type, item string) *ast.Closure {
	return &ast.Closure{
		Uses: []string{VarSource, item},
		Body: []ast.Stmt{&ast.Return{Value: ast.Fn(FnDecode, source(), ast.Lit(t.String()), ast.Var(item))}},
	}
}

func (d *Decoder) collection(t *typ.Type, ctx *Context) []ast.Stmt {
	items, result, item := ctx.Var("items"), ctx.Var("result"), ctx.Var("item")
	split, method := FnSplitList, "list"
	var key ast.Expr
	if t.IsDict() {
		split, method = FnSplitDict, "dict"
		key = ast.Prop(ast.Var(item), "key")
	}
	return []ast.Stmt{
		ast.Set(ast.Var(items), ast.Fn(split, source(), boundary())),
		&ast.If{Cond: ast.IsNull(ast.Var(items)), Then: []ast.Stmt{onNull(t)}},
		ast.Set(ast.Var(result), ast.Fn(FnArray)),
		&ast.Foreach{Collection: ast.Var(items), Value: item, Body: []ast.Stmt{
			ast.Set(&ast.Index{Target: ast.Var(result), Key: key}, thunk(t.Value(), item)),
		}},
		&ast.Return{Value: ast.Method(ast.Var(VarInstantiator), method, ast.Lit(t.NonNullable().String()), ast.Var(result))},
	}
}

type decodedField struct {
	name      string
	key       string
	t         *typ.Type
	formatter string
	ctx       *Context
}

// fields resolves the decodable fields of a record type.
func (d *Decoder) fields(t *typ.Type, ctx *Context) ([]*decodedField, error) {
	bound, err := bindings(d.registry, t)
	if err != nil {
		return nil, err
	}
	record, err := d.registry.Describe(t.Name())
	if err != nil {
		return nil, err
	}
	var ret []*decodedField
	for _, field := range record.Fields {
		if !field.InGroups(ctx.Groups) {
			continue
		}
		s := &site{t: typ.Substitute(field.Type, bound), ctx: ctx, key: field.Key}
		if err := fieldOverride(d.hooks, t.Name(), field, s); err != nil {
			return nil, err
		}
		if s.skip {
			continue
		}
		name, handler, err := formatter(d.hooks, t.Name(), field, s.t)
		if err != nil {
			return nil, err
		}
		if _, ok := handler.(hook.Parser); !ok {
			name = ""
		}
		ret = append(ret, &decodedField{name: field.Name, key: s.key, t: s.t, formatter: name, ctx: s.ctx})
	}
	return ret, nil
}

func (d *Decoder) record(t *typ.Type, ctx *Context) ([]ast.Stmt, error) {
	s := &site{t: t, ctx: ctx}
	if err := objectOverride(d.hooks, s); err != nil {
		return nil, err
	}
	switch {
	case s.skip:
		return []ast.Stmt{&ast.Return{Value: ast.Lit(nil)}}, nil
	case s.fragment != nil:
		return s.fragment, nil
	case !s.t.Equal(t):
		return d.Generate(s.t, s.ctx)
	}
	fields, err := d.fields(t, s.ctx)
	if err != nil {
		return nil, err
	}
	entries, result, entry := ctx.Var("entries"), ctx.Var("fields"), ctx.Var("entry")
	key := ast.Prop(ast.Var(entry), "key")
	dispatch := &ast.If{}
	for _, field := range fields {
		resolve := thunk(field.t, entry)
		if field.formatter != "" {
			ctxLiteral, err := field.ctx.literal()
			if err != nil {
				return nil, err
			}
			resolve.Body = []ast.Stmt{&ast.Return{Value: ast.Fn(FnParse, ast.Lit(field.formatter),
				ast.Fn(FnDecodeAll, source(), ast.Var(entry)), ctxLiteral)}}
		}
		branch := ast.ElseIf{
			Cond: &ast.Binary{Op: "==", Left: key, Right: ast.Lit(field.key)},
			Body: []ast.Stmt{ast.Set(&ast.Index{Target: ast.Var(result), Key: ast.Lit(field.name)}, resolve)},
		}
		if dispatch.Cond == nil {
			dispatch.Cond, dispatch.Then = branch.Cond, branch.Body
			continue
		}
		dispatch.ElseIfs = append(dispatch.ElseIfs, branch)
	}
	loop := &ast.Foreach{Collection: ast.Var(entries), Value: entry}
	if dispatch.Cond != nil {
		loop.Body = []ast.Stmt{dispatch}
	}
	return []ast.Stmt{
		ast.Set(ast.Var(entries), ast.Fn(FnSplitDict, source(), boundary())),
		&ast.If{Cond: ast.IsNull(ast.Var(entries)), Then: []ast.Stmt{onNull(t)}},
		ast.Set(ast.Var(result), ast.Fn(FnArray)),
		loop,
		&ast.Return{Value: ast.Method(ast.Var(VarInstantiator), "record", ast.Lit(t.NonNullable().String()), ast.Var(result))},
	}, nil
}
