// Package ast defines the target-code model used by generated encode and decode
// programs: an immutable expression and statement tree, a text renderer and a
// peephole optimizer.
package ast

import (
	"strconv"
	"strings"
)

// OutVar names the output sink variable of encode programs.
const OutVar = "out"

// Node is a renderable tree node.
type Node interface {
	Emit(c *Compiler)
}

// Expr is an expression node.
type Expr interface {
	Node
	OptimizeExpr() Expr
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	Optimize() Stmt
	stmtNode()
}

type (
	// Literal represents a string, int, float64, bool or nil constant.
	Literal struct{ Value interface{} }
	// Variable references a variable.
	Variable struct{ Name string }
	// Property reads a named member of Target.
	Property struct {
		Target Expr
		Name   string
	}
	// Index reads Target[Key]; a nil Key as an assignment target appends.
	Index struct {
		Target Expr
		Key    Expr
	}
	// Binary applies Op to Left and Right.
	Binary struct {
		Op          string
		Left, Right Expr
	}
	// Unary applies Op to Operand.
	Unary struct {
		Op      string
		Operand Expr
	}
	// Call invokes a builtin (nil Recv), a method of Recv, or Recv itself when Name is empty.
	Call struct {
		Recv Expr
		Name string
		Args []Expr
	}
	// Closure is an anonymous routine capturing Uses by value.
	Closure struct {
		Params []string
		Uses   []string
		Body   []Stmt
	}
	// Raw is a verbatim fragment.
	Raw struct{ Code string }
	// TemplateString concatenates string forms of Parts.
	TemplateString struct{ Parts []Expr }
)

type (
	// Assign stores Value into Target.
	Assign struct {
		Target Expr
		Value  Expr
	}
	// ExprStmt evaluates an expression for its effect.
	ExprStmt struct{ Expr Expr }
	// Foreach iterates Collection binding Key (optional) and Value.
	Foreach struct {
		Collection Expr
		Key        string
		Value      string
		Body       []Stmt
	}
	// ElseIf is a conditional branch of If.
	ElseIf struct {
		Cond Expr
		Body []Stmt
	}
	// If is a conditional statement.
	If struct {
		Cond    Expr
		Then    []Stmt
		ElseIfs []ElseIf
		Else    []Stmt
	}
	// Return ends the routine; Value may be nil.
	Return struct{ Value Expr }
	// Throw fails with an error of Kind.
	Throw struct {
		Kind    string
		Message Expr
	}
	// Try runs Body and, on failure, Catch with the error bound to Var.
	Try struct {
		Body  []Stmt
		Var   string
		Catch []Stmt
	}
)

// Lit returns a literal.
func Lit(value interface{}) *Literal { return &Literal{Value: value} }

// Var returns a variable reference.
func Var(name string) *Variable { return &Variable{Name: name} }

// Prop returns a property access.
func Prop(target Expr, name string) *Property { return &Property{Target: target, Name: name} }

// Fn returns a builtin call.
func Fn(name string, args ...Expr) *Call { return &Call{Name: name, Args: args} }

// Method returns a method call.
func Method(recv Expr, name string, args ...Expr) *Call {
	return &Call{Recv: recv, Name: name, Args: args}
}

// Eval wraps expr as a statement.
func Eval(expr Expr) *ExprStmt { return &ExprStmt{Expr: expr} }

// Set returns an assignment.
func Set(target, value Expr) *Assign { return &Assign{Target: target, Value: value} }

// Write emits text to the output sink.
func Write(text string) *ExprStmt { return WriteExpr(Lit(text)) }

// WriteExpr emits a computed value to the output sink.
func WriteExpr(expr Expr) *ExprStmt { return Eval(Method(Var(OutVar), "write", expr)) }

// IsNull returns a null test.
func IsNull(expr Expr) *Binary { return &Binary{Op: "==", Left: expr, Right: Lit(nil)} }

func (*Literal) exprNode()        {}
func (*Variable) exprNode()       {}
func (*Property) exprNode()       {}
func (*Index) exprNode()          {}
func (*Binary) exprNode()         {}
func (*Unary) exprNode()          {}
func (*Call) exprNode()           {}
func (*Closure) exprNode()        {}
func (*Raw) exprNode()            {}
func (*TemplateString) exprNode() {}

func (*Assign) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
func (*Foreach) stmtNode()  {}
func (*If) stmtNode()       {}
func (*Return) stmtNode()   {}
func (*Throw) stmtNode()    {}
func (*Try) stmtNode()      {}

func (l *Literal) Emit(c *Compiler) { c.Raw(FormatLiteral(l.Value)) }

// FormatLiteral renders a constant.
func FormatLiteral(value interface{}) string {
	switch actual := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(actual)
	case bool:
		return strconv.FormatBool(actual)
	case int:
		return strconv.Itoa(actual)
	case float64:
		text := strconv.FormatFloat(actual, 'g', -1, 64)
		if !strings.ContainsAny(text, ".eEn") {
			text += ".0"
		}
		return text
	}
	return strconv.Quote("<invalid literal>")
}

func (v *Variable) Emit(c *Compiler) { c.Raw(v.Name) }

func (p *Property) Emit(c *Compiler) {
	p.Target.Emit(c)
	c.Raw("." + p.Name)
}

func (i *Index) Emit(c *Compiler) {
	i.Target.Emit(c)
	c.Raw("[")
	if i.Key != nil {
		i.Key.Emit(c)
	}
	c.Raw("]")
}

func (b *Binary) Emit(c *Compiler) {
	c.Raw("(")
	b.Left.Emit(c)
	c.Raw(" " + b.Op + " ")
	b.Right.Emit(c)
	c.Raw(")")
}

func (u *Unary) Emit(c *Compiler) {
	c.Raw(u.Op)
	u.Operand.Emit(c)
}

func (f *Call) Emit(c *Compiler) {
	if f.Recv != nil {
		f.Recv.Emit(c)
		if f.Name != "" {
			c.Raw(".")
		}
	}
	c.Raw(f.Name + "(")
	emitList(c, f.Args)
	c.Raw(")")
}

func (f *Closure) Emit(c *Compiler) {
	c.Raw("fn")
	if len(f.Uses) > 0 {
		c.Raw("[" + strings.Join(f.Uses, ", ") + "]")
	}
	c.Raw("(" + strings.Join(f.Params, ", ") + ")")
	emitBody(c, f.Body)
}

func (r *Raw) Emit(c *Compiler) { c.Raw(r.Code) }

func (t *TemplateString) Emit(c *Compiler) {
	c.Raw("`")
	for _, part := range t.Parts {
		if lit, ok := part.(*Literal); ok {
			if text, ok := lit.Value.(string); ok {
				c.Raw(strings.NewReplacer("`", "\\`", "$", "\\$").Replace(text))
				continue
			}
		}
		c.Raw("${")
		part.Emit(c)
		c.Raw("}")
	}
	c.Raw("`")
}

func (a *Assign) Emit(c *Compiler) {
	a.Target.Emit(c)
	c.Raw(" = ")
	a.Value.Emit(c)
	c.Line(";")
}

func (e *ExprStmt) Emit(c *Compiler) {
	e.Expr.Emit(c)
	c.Line(";")
}

func (f *Foreach) Emit(c *Compiler) {
	c.Raw("for ")
	if f.Key != "" {
		c.Raw(f.Key + ", ")
	}
	c.Raw(f.Value + " in ")
	f.Collection.Emit(c)
	emitBody(c, f.Body)
	c.Line("")
}

func (i *If) Emit(c *Compiler) {
	c.Raw("if ")
	i.Cond.Emit(c)
	emitBody(c, i.Then)
	for _, branch := range i.ElseIfs {
		c.Raw(" else if ")
		branch.Cond.Emit(c)
		emitBody(c, branch.Body)
	}
	if len(i.Else) > 0 {
		c.Raw(" else")
		emitBody(c, i.Else)
	}
	c.Line("")
}

func (r *Return) Emit(c *Compiler) {
	if r.Value == nil {
		c.Line("return;")
		return
	}
	c.Raw("return ")
	r.Value.Emit(c)
	c.Line(";")
}

func (t *Throw) Emit(c *Compiler) {
	c.Raw("throw " + t.Kind + "(")
	if t.Message != nil {
		t.Message.Emit(c)
	}
	c.Line(");")
}

func (t *Try) Emit(c *Compiler) {
	c.Raw("try")
	emitBody(c, t.Body)
	c.Raw(" catch " + t.Var)
	emitBody(c, t.Catch)
	c.Line("")
}

func emitList(c *Compiler, exprs []Expr) {
	for i, expr := range exprs {
		if i > 0 {
			c.Raw(", ")
		}
		expr.Emit(c)
	}
}
