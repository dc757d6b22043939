// Package hook defines generation-time overrides keyed by record, field or
// shape scope, and runtime formatters.
package hook

import (
	"sort"
	"strings"
	"sync"

	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/typ"
)

// Fallback scopes.
const (
	AnyObject = "*object"
	AnyField  = "*field"
	AnyType   = "*type"
)

type (
	// Site describes what is being generated when a hook is consulted.
	Site struct {
		Type     *typ.Type
		Accessor ast.Expr
		Record   string
		Field    string
		Context  map[string]interface{}
	}

	// Override replaces parts of the generated sub-tree; zero fields keep the default.
	Override struct {
		Type     *typ.Type
		Accessor ast.Expr
		Name     string
		Fragment []ast.Stmt
		Context  map[string]interface{}
		Skip     bool
	}

	// ObjectHook overrides record generation.
	ObjectHook interface {
		Object(site *Site) (*Override, error)
	}

	// FieldHook overrides field generation.
	FieldHook interface {
		Field(site *Site) (*Override, error)
	}

	// TypeHook overrides generation of a shape.
	TypeHook interface {
		Shape(site *Site) (*Override, error)
	}

	// Formatter converts values at encode time; it is called from generated programs.
	Formatter interface {
		Format(value interface{}, ctx map[string]interface{}) (interface{}, error)
	}

	// Parser converts decoded values of formatted fields.
	Parser interface {
		Parse(value interface{}, ctx map[string]interface{}) (interface{}, error)
	}

	// Handler is any hook that can be registered under a scope.
	Handler interface {
		register(registry *Registry, scope string) error
	}

	ObjectFunc    func(site *Site) (*Override, error)
	FieldFunc     func(site *Site) (*Override, error)
	TypeFunc      func(site *Site) (*Override, error)
	FormatterFunc func(value interface{}, ctx map[string]interface{}) (interface{}, error)

	// Registry holds hooks by scope.
	Registry struct {
		mux        sync.RWMutex
		objects    map[string]ObjectHook
		fields     map[string]FieldHook
		types      map[string]TypeHook
		formatters map[string]Formatter
	}
)

func (f ObjectFunc) Object(site *Site) (*Override, error) { return f(site) }
func (f FieldFunc) Field(site *Site) (*Override, error)   { return f(site) }
func (f TypeFunc) Shape(site *Site) (*Override, error)    { return f(site) }
func (f FormatterFunc) Format(value interface{}, ctx map[string]interface{}) (interface{}, error) {
	return f(value, ctx)
}

func (f ObjectFunc) register(r *Registry, scope string) error    { return r.OnObject(scope, f) }
func (f FieldFunc) register(r *Registry, scope string) error     { return r.OnField(scope, f) }
func (f TypeFunc) register(r *Registry, scope string) error      { return r.OnShape(scope, f) }
func (f FormatterFunc) register(r *Registry, scope string) error { return r.AddFormatter(scope, f) }

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		objects:    map[string]ObjectHook{},
		fields:     map[string]FieldHook{},
		types:      map[string]TypeHook{},
		formatters: map[string]Formatter{},
	}
}

// Register registers handler under scope.
func (r *Registry) Register(scope string, handler Handler) error {
	if handler == nil {
		return errs.New(errs.InvalidArgument, "nil hook for %q", scope)
	}
	return handler.register(r, scope)
}

// OnObject registers an object hook for a record identity or AnyObject.
func (r *Registry) OnObject(scope string, hook ObjectHook) error {
	if scope == "" || strings.Contains(scope, "::") {
		return errs.New(errs.InvalidArgument, "invalid object hook scope %q", scope)
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.objects[scope] = hook
	return nil
}

// OnField registers a field hook for "Record::field" or AnyField.
func (r *Registry) OnField(scope string, hook FieldHook) error {
	if scope != AnyField {
		record, field, ok := strings.Cut(scope, "::")
		if !ok || record == "" || field == "" {
			return errs.New(errs.InvalidArgument, "invalid field hook scope %q, expected Record::field", scope)
		}
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.fields[scope] = hook
	return nil
}

// OnShape registers a shape hook for a canonical type string, kind name or AnyType.
func (r *Registry) OnShape(scope string, hook TypeHook) error {
	if scope == "" {
		return errs.New(errs.InvalidArgument, "empty shape hook scope")
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.types[scope] = hook
	return nil
}

// AddFormatter registers a formatter by name; a "Record::field" or shape name
// applies it to matching fields.
func (r *Registry) AddFormatter(name string, formatter Formatter) error {
	if name == "" {
		return errs.New(errs.InvalidArgument, "empty formatter name")
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.formatters[name] = formatter
	return nil
}

// Object returns the most specific object hook.
func (r *Registry) Object(record string) (ObjectHook, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	if ret, ok := r.objects[record]; ok {
		return ret, true
	}
	ret, ok := r.objects[AnyObject]
	return ret, ok
}

// Field returns the most specific field hook.
func (r *Registry) Field(record, field string) (FieldHook, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	if ret, ok := r.fields[FieldScope(record, field)]; ok {
		return ret, true
	}
	ret, ok := r.fields[AnyField]
	return ret, ok
}

// Shape returns the most specific shape hook: canonical type, kind name, then AnyType.
func (r *Registry) Shape(t *typ.Type) (TypeHook, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	if len(r.types) == 0 {
		return nil, false
	}
	for _, scope := range []string{t.String(), t.Kind().String(), AnyType} {
		if ret, ok := r.types[scope]; ok {
			return ret, true
		}
	}
	return nil, false
}

// Formatter returns a formatter by name.
func (r *Registry) Formatter(name string) (Formatter, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret, ok := r.formatters[name]
	return ret, ok
}

// FormatterFor returns the formatter name applying to a field: explicit, field scope, then field shape.
func (r *Registry) FormatterFor(explicit, record, field string, t *typ.Type) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	r.mux.RLock()
	defer r.mux.RUnlock()
	for _, scope := range []string{FieldScope(record, field), t.String()} {
		if _, ok := r.formatters[scope]; ok {
			return scope, true
		}
	}
	return "", false
}

// Signature identifies registered scopes; generated programs depend on it.
func (r *Registry) Signature() string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	var scopes []string
	for scope := range r.objects {
		scopes = append(scopes, "o:"+scope)
	}
	for scope := range r.fields {
		scopes = append(scopes, "f:"+scope)
	}
	for scope := range r.types {
		scopes = append(scopes, "t:"+scope)
	}
	for scope := range r.formatters {
		scopes = append(scopes, "x:"+scope)
	}
	sort.Strings(scopes)
	return strings.Join(scopes, ";")
}

// FieldScope returns "record::field".
func FieldScope(record, field string) string { return record + "::" + field }

// Merge returns ambient overlaid with override.
func Merge(ambient, override map[string]interface{}) map[string]interface{} {
	if len(override) == 0 {
		return ambient
	}
	ret := make(map[string]interface{}, len(ambient)+len(override))
	for k, v := range ambient {
		ret[k] = v
	}
	for k, v := range override {
		ret[k] = v
	}
	return ret
}
