// Package program compiles target-code statement trees into Go closures and
// runs them. It is the execution backend of generated encode and decode programs.
package program

import (
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
)

type (
	// Callable dispatches named calls; builtins and method receivers implement it.
	Callable interface {
		Call(name string, args []interface{}) (interface{}, error)
	}

	// Accessor reads named properties of host values.
	Accessor interface {
		Property(value interface{}, name string) (interface{}, error)
	}

	// Env supplies builtins, property access and input variables to a run.
	Env struct {
		Builtins Callable
		Accessor Accessor
		Vars     map[string]interface{}
	}

	// Program is a compiled statement list.
	Program struct {
		body execFn
		size int
	}

	frame struct {
		env  *Env
		vars map[string]interface{}
	}

	flow int

	evalFn func(f *frame) (interface{}, error)
	execFn func(f *frame) (flow, interface{}, error)
)

const (
	next flow = iota
	returned
)

// Compile compiles stmts.
func Compile(stmts []ast.Stmt) (*Program, error) {
	body, err := compileBlock(stmts)
	if err != nil {
		return nil, err
	}
	return &Program{body: body, size: len(stmts)}, nil
}

// Run executes the program and returns the value of its return statement, if any.
func (p *Program) Run(env *Env) (interface{}, error) {
	if env == nil {
		env = &Env{}
	}
	vars := make(map[string]interface{}, len(env.Vars)+8)
	for k, v := range env.Vars {
		vars[k] = v
	}
	_, ret, err := p.body(&frame{env: env, vars: vars})
	return ret, err
}

func (f *frame) lookup(name string) (interface{}, error) {
	value, ok := f.vars[name]
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "undefined variable %s", name)
	}
	return value, nil
}

func (f *frame) builtin(name string, args []interface{}) (interface{}, error) {
	if f.env.Builtins == nil {
		return nil, errs.New(errs.InvalidArgument, "no builtins for %s()", name)
	}
	return f.env.Builtins.Call(name, args)
}
