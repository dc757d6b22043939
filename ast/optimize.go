package ast

import "strings"

// Optimize returns an optimized copy of stmts: every maximal run of literal
// writes to the output sink is merged into one write and nested bodies are
// optimized recursively. Optimize is idempotent.
func Optimize(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	ret := make([]Stmt, 0, len(stmts))
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		ret = append(ret, Write(strings.Join(run, "")))
		run = run[:0]
	}
	for _, stmt := range stmts {
		if text, ok := LiteralWrite(stmt); ok {
			run = append(run, text)
			continue
		}
		flush()
		ret = append(ret, stmt.Optimize())
	}
	flush()
	return ret
}

// LiteralWrite returns the payload of a write of a string literal to the output sink.
func LiteralWrite(stmt Stmt) (string, bool) {
	exprStmt, ok := stmt.(*ExprStmt)
	if !ok {
		return "", false
	}
	call, ok := exprStmt.Expr.(*Call)
	if !ok || call.Name != "write" || len(call.Args) != 1 {
		return "", false
	}
	if sink, ok := call.Recv.(*Variable); !ok || sink.Name != OutVar {
		return "", false
	}
	lit, ok := call.Args[0].(*Literal)
	if !ok {
		return "", false
	}
	text, ok := lit.Value.(string)
	return text, ok
}

func optimizeExprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	ret := make([]Expr, len(exprs))
	for i, expr := range exprs {
		ret[i] = optimizeExpr(expr)
	}
	return ret
}

func optimizeExpr(expr Expr) Expr {
	if expr == nil {
		return nil
	}
	return expr.OptimizeExpr()
}

func (l *Literal) OptimizeExpr() Expr  { return &Literal{Value: l.Value} }
func (v *Variable) OptimizeExpr() Expr { return &Variable{Name: v.Name} }
func (r *Raw) OptimizeExpr() Expr      { return &Raw{Code: r.Code} }

func (p *Property) OptimizeExpr() Expr {
	return &Property{Target: optimizeExpr(p.Target), Name: p.Name}
}

func (i *Index) OptimizeExpr() Expr {
	return &Index{Target: optimizeExpr(i.Target), Key: optimizeExpr(i.Key)}
}

func (b *Binary) OptimizeExpr() Expr {
	return &Binary{Op: b.Op, Left: optimizeExpr(b.Left), Right: optimizeExpr(b.Right)}
}

func (u *Unary) OptimizeExpr() Expr {
	return &Unary{Op: u.Op, Operand: optimizeExpr(u.Operand)}
}

func (f *Call) OptimizeExpr() Expr {
	return &Call{Recv: optimizeExpr(f.Recv), Name: f.Name, Args: optimizeExprs(f.Args)}
}

func (f *Closure) OptimizeExpr() Expr {
	return &Closure{Params: f.Params, Uses: f.Uses, Body: Optimize(f.Body)}
}

// OptimizeExpr folds adjacent string literal parts.
func (t *TemplateString) OptimizeExpr() Expr {
	var parts []Expr
	for _, part := range t.Parts {
		part = optimizeExpr(part)
		if text, ok := stringLiteral(part); ok && len(parts) > 0 {
			if prev, ok := stringLiteral(parts[len(parts)-1]); ok {
				parts[len(parts)-1] = Lit(prev + text)
				continue
			}
		}
		parts = append(parts, part)
	}
	return &TemplateString{Parts: parts}
}

func stringLiteral(expr Expr) (string, bool) {
	lit, ok := expr.(*Literal)
	if !ok {
		return "", false
	}
	text, ok := lit.Value.(string)
	return text, ok
}

func (a *Assign) Optimize() Stmt {
	return &Assign{Target: optimizeExpr(a.Target), Value: optimizeExpr(a.Value)}
}

func (e *ExprStmt) Optimize() Stmt { return &ExprStmt{Expr: optimizeExpr(e.Expr)} }

func (f *Foreach) Optimize() Stmt {
	return &Foreach{Collection: optimizeExpr(f.Collection), Key: f.Key, Value: f.Value, Body: Optimize(f.Body)}
}

func (i *If) Optimize() Stmt {
	ret := &If{Cond: optimizeExpr(i.Cond), Then: Optimize(i.Then), Else: Optimize(i.Else)}
	for _, branch := range i.ElseIfs {
		ret.ElseIfs = append(ret.ElseIfs, ElseIf{Cond: optimizeExpr(branch.Cond), Body: Optimize(branch.Body)})
	}
	return ret
}

func (r *Return) Optimize() Stmt { return &Return{Value: optimizeExpr(r.Value)} }

func (t *Throw) Optimize() Stmt { return &Throw{Kind: t.Kind, Message: optimizeExpr(t.Message)} }

func (t *Try) Optimize() Stmt {
	return &Try{Body: Optimize(t.Body), Var: t.Var, Catch: Optimize(t.Catch)}
}
