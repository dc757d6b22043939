package gen

import (
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/hook"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/typ"
)

// site is the mutable generation target an override applies to.
type site struct {
	t        *typ.Type
	accessor ast.Expr
	ctx      *Context
	key      string
	fragment []ast.Stmt
	skip     bool
}

func (s *site) apply(override *hook.Override) {
	if override == nil {
		return
	}
	if override.Type != nil {
		s.t = override.Type
	}
	if override.Accessor != nil {
		s.accessor = override.Accessor
	}
	if override.Name != "" {
		s.key = override.Name
	}
	if override.Fragment != nil {
		s.fragment = override.Fragment
	}
	s.ctx = s.ctx.With(override.Context)
	s.skip = s.skip || override.Skip
}

func (s *site) hookSite(record, field string) *hook.Site {
	return &hook.Site{Type: s.t, Accessor: s.accessor, Record: record, Field: field, Context: s.ctx.Values}
}

func shapeOverride(hooks *hook.Registry, s *site) error {
	if hooks == nil {
		return nil
	}
	h, ok := hooks.Shape(s.t)
	if !ok {
		return nil
	}
	override, err := h.Shape(s.hookSite("", ""))
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, err, "shape hook for %s", s.t)
	}
	s.apply(override)
	return nil
}

func objectOverride(hooks *hook.Registry, s *site) error {
	if hooks == nil {
		return nil
	}
	h, ok := hooks.Object(s.t.Name())
	if !ok {
		return nil
	}
	override, err := h.Object(s.hookSite(s.t.Name(), ""))
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, err, "object hook for %s", s.t.Name())
	}
	s.apply(override)
	return nil
}

func fieldOverride(hooks *hook.Registry, record string, field *registry.Field, s *site) error {
	if hooks == nil {
		return nil
	}
	h, ok := hooks.Field(record, field.Name)
	if !ok {
		return nil
	}
	override, err := h.Field(s.hookSite(record, field.Name))
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, err, "field hook for %s", hook.FieldScope(record, field.Name))
	}
	s.apply(override)
	return nil
}

// formatter returns the formatter applying to a field; a named formatter must be registered.
func formatter(hooks *hook.Registry, record string, field *registry.Field, t *typ.Type) (string, hook.Formatter, error) {
	if hooks == nil {
		if field.Formatter != "" {
			return "", nil, errs.New(errs.InvalidArgument, "formatter %s of %s is not registered", field.Formatter, hook.FieldScope(record, field.Name))
		}
		return "", nil, nil
	}
	name, ok := hooks.FormatterFor(field.Formatter, record, field.Name, t)
	if !ok {
		return "", nil, nil
	}
	ret, ok := hooks.Formatter(name)
	if !ok {
		return "", nil, errs.New(errs.InvalidArgument, "formatter %s of %s is not registered", name, hook.FieldScope(record, field.Name))
	}
	return name, ret, nil
}

// bindings resolves generic arguments against declared templates.
func bindings(r *registry.Registry, t *typ.Type) (map[string]*typ.Type, error) {
	if !t.IsGeneric() {
		return nil, nil
	}
	args := t.Args()
	if err := r.Builder("").CheckArity(t.Name(), len(args)); err != nil {
		return nil, err
	}
	templates, _ := r.Templates(t.Name())
	ret := make(map[string]*typ.Type, len(templates))
	for i, name := range templates {
		ret[name] = args[i]
	}
	return ret, nil
}
