// Package gen generates encode and decode programs for types as target-code
// statement trees.
package gen

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/hook"
)

// Program inputs.
const (
	VarValue        = "value"
	VarContext      = "context"
	VarSource       = "source"
	VarBoundary     = "boundary"
	VarInstantiator = "instantiator"
	VarData         = "data"
)

// Builtins called by generated programs.
const (
	FnEncode       = "encode"
	FnEscapeKey    = "escape_key"
	FnEnumValue    = "enum_value"
	FnFormat       = "format"
	FnParse        = "parse"
	FnEmpty        = "empty"
	FnArray        = "array"
	FnDecode       = "decode"
	FnDecodeScalar = "decode_scalar"
	FnDecodeAll    = "decode_all"
	FnSplitList    = "split_list"
	FnSplitDict    = "split_dict"
	FnIsNull       = "is_null"
	FnSelectUnion  = "select_union"
	FnWalk         = "walk"
	FnCast         = "cast"
	FnExpect       = "expect"
	FnHas          = "has"
)

// Context carries generation state for one program.
type Context struct {
	// Values is the ambient context handed to hooks and formatters.
	Values map[string]interface{}
	// Groups selects fields; empty selects all.
	Groups []string
	// Lazy selects lazy decode programs over eager tree walks.
	Lazy       bool
	generating map[string]bool
	seq        *int
}

// NewContext creates a generation context.
func NewContext(values map[string]interface{}, groups []string, lazy bool) *Context {
	seq := 0
	return &Context{Values: values, Groups: groups, Lazy: lazy, generating: map[string]bool{}, seq: &seq}
}

// With returns a context sharing generation state with values merged over the ambient ones.
func (c *Context) With(values map[string]interface{}) *Context {
	if len(values) == 0 {
		return c
	}
	ret := *c
	ret.Values = hook.Merge(c.Values, values)
	return &ret
}

// Var returns a variable name unique within the program.
func (c *Context) Var(prefix string) string {
	*c.seq++
	return prefix + strconv.Itoa(*c.seq)
}

func (c *Context) enter(identity string) error {
	if c.generating[identity] {
		return errs.New(errs.CircularReference, "%s is already being generated", identity)
	}
	c.generating[identity] = true
	return nil
}

func (c *Context) leave(identity string) {
	delete(c.generating, identity)
}

func (c *Context) literal() (ast.Expr, error) {
	if len(c.Values) == 0 {
		return ast.Lit(nil), nil
	}
	data, err := json.Marshal(c.Values)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, err, "context is not serializable")
	}
	return ast.Lit(string(data)), nil
}

func nullThrow(expected string) ast.Stmt {
	return &ast.Throw{Kind: "UnexpectedValue", Message: ast.Lit("expected " + expected + ", got null")}
}

func quoteKey(key string) (string, error) {
	data, err := json.Marshal(key)
	if err != nil {
		return "", errs.Wrap(errs.InvalidArgument, err, "key %q", key)
	}
	return string(data), nil
}
