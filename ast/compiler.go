package ast

import "strings"

// Compiler accumulates indented program text.
type Compiler struct {
	sb        strings.Builder
	indent    string
	depth     int
	lineStart bool
}

// NewCompiler creates a compiler indenting with indent (a tab when empty).
func NewCompiler(indent string) *Compiler {
	if indent == "" {
		indent = "\t"
	}
	return &Compiler{indent: indent, lineStart: true}
}

// Indent increases indentation.
func (c *Compiler) Indent() { c.depth++ }

// Outdent decreases indentation.
func (c *Compiler) Outdent() {
	if c.depth > 0 {
		c.depth--
	}
}

// Raw appends text to the current line.
func (c *Compiler) Raw(text string) {
	if text == "" {
		return
	}
	if c.lineStart {
		for i := 0; i < c.depth; i++ {
			c.sb.WriteString(c.indent)
		}
		c.lineStart = false
	}
	c.sb.WriteString(text)
}

// Line appends text and terminates the line.
func (c *Compiler) Line(text string) {
	c.Raw(text)
	c.sb.WriteByte('\n')
	c.lineStart = true
}

// Reset clears accumulated text.
func (c *Compiler) Reset() {
	c.sb.Reset()
	c.depth = 0
	c.lineStart = true
}

// String returns accumulated text.
func (c *Compiler) String() string { return c.sb.String() }

// Render prints statements.
func Render(stmts []Stmt) string {
	c := NewCompiler("")
	emitBlock(c, stmts)
	return c.String()
}

func emitBlock(c *Compiler, stmts []Stmt) {
	for _, stmt := range stmts {
		stmt.Emit(c)
	}
}

func emitBody(c *Compiler, stmts []Stmt) {
	c.Line(" {")
	c.Indent()
	emitBlock(c, stmts)
	c.Outdent()
	c.Raw("}")
}
