package ast

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/viant/typecodec/errs"
)

type wireNode struct {
	Node     string      `json:"node"`
	Name     string      `json:"name,omitempty"`
	Op       string      `json:"op,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	Text     string      `json:"text,omitempty"`
	Key      string      `json:"key,omitempty"`
	Var      string      `json:"var,omitempty"`
	Target   *wireNode   `json:"target,omitempty"`
	Left     *wireNode   `json:"left,omitempty"`
	Right    *wireNode   `json:"right,omitempty"`
	Args     []*wireNode `json:"args,omitempty"`
	Params   []string    `json:"params,omitempty"`
	Uses     []string    `json:"uses,omitempty"`
	Body     []*wireNode `json:"body,omitempty"`
	Branches []*wireNode `json:"branches,omitempty"`
	Else     []*wireNode `json:"else,omitempty"`
}

// MarshalProgram encodes statements as JSON.
func MarshalProgram(stmts []Stmt) ([]byte, error) {
	return json.Marshal(stmtsToWire(stmts))
}

// UnmarshalProgram decodes statements encoded by MarshalProgram.
func UnmarshalProgram(data []byte) ([]Stmt, error) {
	var nodes []*wireNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, errs.Wrap(errs.InvalidResource, err, "invalid program envelope")
	}
	return stmtsFromWire(nodes)
}

func stmtsToWire(stmts []Stmt) []*wireNode {
	if len(stmts) == 0 {
		return nil
	}
	ret := make([]*wireNode, len(stmts))
	for i, stmt := range stmts {
		ret[i] = toWire(stmt)
	}
	return ret
}

func exprsToWire(exprs []Expr) []*wireNode {
	if len(exprs) == 0 {
		return nil
	}
	ret := make([]*wireNode, len(exprs))
	for i, expr := range exprs {
		ret[i] = toWire(expr)
	}
	return ret
}

func exprToWire(expr Expr) *wireNode {
	if expr == nil {
		return nil
	}
	return toWire(expr)
}

func toWire(node Node) *wireNode {
	switch actual := node.(type) {
	case *Literal:
		kind, text := literalToWire(actual.Value)
		return &wireNode{Node: "literal", Kind: kind, Text: text}
	case *Variable:
		return &wireNode{Node: "var", Name: actual.Name}
	case *Property:
		return &wireNode{Node: "property", Name: actual.Name, Target: exprToWire(actual.Target)}
	case *Index:
		return &wireNode{Node: "index", Target: exprToWire(actual.Target), Right: exprToWire(actual.Key)}
	case *Binary:
		return &wireNode{Node: "binary", Op: actual.Op, Left: exprToWire(actual.Left), Right: exprToWire(actual.Right)}
	case *Unary:
		return &wireNode{Node: "unary", Op: actual.Op, Right: exprToWire(actual.Operand)}
	case *Call:
		return &wireNode{Node: "call", Name: actual.Name, Target: exprToWire(actual.Recv), Args: exprsToWire(actual.Args)}
	case *Closure:
		return &wireNode{Node: "closure", Params: actual.Params, Uses: actual.Uses, Body: stmtsToWire(actual.Body)}
	case *Raw:
		return &wireNode{Node: "raw", Text: actual.Code}
	case *TemplateString:
		return &wireNode{Node: "template", Args: exprsToWire(actual.Parts)}
	case *Assign:
		return &wireNode{Node: "assign", Target: exprToWire(actual.Target), Right: exprToWire(actual.Value)}
	case *ExprStmt:
		return &wireNode{Node: "expr", Right: exprToWire(actual.Expr)}
	case *Foreach:
		return &wireNode{Node: "foreach", Target: exprToWire(actual.Collection), Key: actual.Key, Var: actual.Value, Body: stmtsToWire(actual.Body)}
	case *If:
		ret := &wireNode{Node: "if", Target: exprToWire(actual.Cond), Body: stmtsToWire(actual.Then), Else: stmtsToWire(actual.Else)}
		for _, branch := range actual.ElseIfs {
			ret.Branches = append(ret.Branches, &wireNode{Node: "elseif", Target: exprToWire(branch.Cond), Body: stmtsToWire(branch.Body)})
		}
		return ret
	case *Return:
		return &wireNode{Node: "return", Right: exprToWire(actual.Value)}
	case *Throw:
		return &wireNode{Node: "throw", Kind: actual.Kind, Right: exprToWire(actual.Message)}
	case *Try:
		return &wireNode{Node: "try", Var: actual.Var, Body: stmtsToWire(actual.Body), Else: stmtsToWire(actual.Catch)}
	}
	return &wireNode{Node: "unknown"}
}

func literalToWire(value interface{}) (string, string) {
	switch actual := value.(type) {
	case string:
		return "string", actual
	case int:
		return "int", strconv.Itoa(actual)
	case float64:
		return "float", strconv.FormatFloat(actual, 'g', -1, 64)
	case bool:
		return "bool", strconv.FormatBool(actual)
	}
	return "null", ""
}

func stmtsFromWire(nodes []*wireNode) ([]Stmt, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	ret := make([]Stmt, len(nodes))
	for i, node := range nodes {
		stmt, err := stmtFromWire(node)
		if err != nil {
			return nil, err
		}
		ret[i] = stmt
	}
	return ret, nil
}

func exprsFromWire(nodes []*wireNode) ([]Expr, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	ret := make([]Expr, len(nodes))
	for i, node := range nodes {
		expr, err := exprFromWire(node)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, errs.New(errs.InvalidResource, "missing expression in program envelope")
		}
		ret[i] = expr
	}
	return ret, nil
}

func stmtFromWire(node *wireNode) (Stmt, error) {
	if node == nil {
		return nil, errs.New(errs.InvalidResource, "missing statement in program envelope")
	}
	var err error
	switch node.Node {
	case "assign":
		ret := &Assign{}
		if ret.Target, err = exprFromWire(node.Target); err != nil {
			return nil, err
		}
		ret.Value, err = exprFromWire(node.Right)
		return ret, err
	case "expr":
		ret := &ExprStmt{}
		ret.Expr, err = exprFromWire(node.Right)
		return ret, err
	case "foreach":
		ret := &Foreach{Key: node.Key, Value: node.Var}
		if ret.Collection, err = exprFromWire(node.Target); err != nil {
			return nil, err
		}
		ret.Body, err = stmtsFromWire(node.Body)
		return ret, err
	case "if":
		ret := &If{}
		if ret.Cond, err = exprFromWire(node.Target); err != nil {
			return nil, err
		}
		if ret.Then, err = stmtsFromWire(node.Body); err != nil {
			return nil, err
		}
		if ret.Else, err = stmtsFromWire(node.Else); err != nil {
			return nil, err
		}
		for _, branch := range node.Branches {
			elseIf := ElseIf{}
			if elseIf.Cond, err = exprFromWire(branch.Target); err != nil {
				return nil, err
			}
			if elseIf.Body, err = stmtsFromWire(branch.Body); err != nil {
				return nil, err
			}
			ret.ElseIfs = append(ret.ElseIfs, elseIf)
		}
		return ret, nil
	case "return":
		ret := &Return{}
		ret.Value, err = exprFromWire(node.Right)
		return ret, err
	case "throw":
		ret := &Throw{Kind: node.Kind}
		ret.Message, err = exprFromWire(node.Right)
		return ret, err
	case "try":
		ret := &Try{Var: node.Var}
		if ret.Body, err = stmtsFromWire(node.Body); err != nil {
			return nil, err
		}
		ret.Catch, err = stmtsFromWire(node.Else)
		return ret, err
	}
	return nil, errs.New(errs.InvalidResource, "unknown statement node %q", node.Node)
}

func exprFromWire(node *wireNode) (Expr, error) {
	if node == nil {
		return nil, nil
	}
	var err error
	switch node.Node {
	case "literal":
		value, err := literalFromWire(node.Kind, node.Text)
		if err != nil {
			return nil, err
		}
		return &Literal{Value: value}, nil
	case "var":
		return &Variable{Name: node.Name}, nil
	case "property":
		ret := &Property{Name: node.Name}
		ret.Target, err = exprFromWire(node.Target)
		return ret, err
	case "index":
		ret := &Index{}
		if ret.Target, err = exprFromWire(node.Target); err != nil {
			return nil, err
		}
		ret.Key, err = exprFromWire(node.Right)
		return ret, err
	case "binary":
		ret := &Binary{Op: node.Op}
		if ret.Left, err = exprFromWire(node.Left); err != nil {
			return nil, err
		}
		ret.Right, err = exprFromWire(node.Right)
		return ret, err
	case "unary":
		ret := &Unary{Op: node.Op}
		ret.Operand, err = exprFromWire(node.Right)
		return ret, err
	case "call":
		ret := &Call{Name: node.Name}
		if ret.Recv, err = exprFromWire(node.Target); err != nil {
			return nil, err
		}
		ret.Args, err = exprsFromWire(node.Args)
		return ret, err
	case "closure":
		ret := &Closure{Params: node.Params, Uses: node.Uses}
		ret.Body, err = stmtsFromWire(node.Body)
		return ret, err
	case "raw":
		return &Raw{Code: node.Text}, nil
	case "template":
		ret := &TemplateString{}
		ret.Parts, err = exprsFromWire(node.Args)
		return ret, err
	}
	return nil, errs.New(errs.InvalidResource, "unknown expression node %q", node.Node)
}

func literalFromWire(kind, text string) (interface{}, error) {
	switch kind {
	case "string":
		return text, nil
	case "int":
		value, err := strconv.Atoi(text)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidResource, err, "invalid int literal %q", text)
		}
		return value, nil
	case "float":
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidResource, err, "invalid float literal %q", text)
		}
		return value, nil
	case "bool":
		return text == "true", nil
	case "null":
		return nil, nil
	}
	return nil, errs.New(errs.InvalidResource, "unknown literal kind %q", kind)
}
