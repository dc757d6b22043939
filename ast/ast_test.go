package ast

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/typecodec/errs"
)

func sampleProgram() []Stmt {
	return []Stmt{
		Write("{"),
		Write(`"id":`),
		WriteExpr(Fn("encode", Prop(Var("value"), "ID"))),
		Write(","),
		Write(`"tags":`),
		&If{
			Cond: IsNull(Prop(Var("value"), "Tags")),
			Then: []Stmt{Write("n"), Write("ull")},
			ElseIfs: []ElseIf{
				{Cond: &Unary{Op: "!", Operand: Fn("has", Var("value"))}, Body: []Stmt{Write("["), Write("]")}},
			},
			Else: []Stmt{
				Write("["),
				Set(Var("prefix0"), Lit("")),
				&Foreach{Collection: Prop(Var("value"), "Tags"), Key: "k", Value: "item", Body: []Stmt{
					WriteExpr(Var("prefix0")),
					WriteExpr(&TemplateString{Parts: []Expr{Lit(`"`), Lit("k"), Fn("escape_key", Var("k")), Lit(`":`)}}),
					Set(Var("prefix0"), Lit(",")),
				}},
				Write("]"),
			},
		},
		Write("}"),
		Set(&Index{Target: Var("items")}, &Closure{Params: []string{"x"}, Uses: []string{"source"}, Body: []Stmt{
			&Try{Body: []Stmt{&Return{Value: &Binary{Op: "+", Left: Var("x"), Right: Lit(1.5)}}}, Var: "e", Catch: []Stmt{
				&Throw{Kind: "UnexpectedValue", Message: Lit("bad")},
			}},
		}}),
		&Return{},
	}
}

func TestOptimize(t *testing.T) {
	optimized := Optimize(sampleProgram())
	expect := []Stmt{
		Write(`{"id":`),
		WriteExpr(Fn("encode", Prop(Var("value"), "ID"))),
		Write(`,"tags":`),
		&If{
			Cond: IsNull(Prop(Var("value"), "Tags")),
			Then: []Stmt{Write("null")},
			ElseIfs: []ElseIf{
				{Cond: &Unary{Op: "!", Operand: Fn("has", Var("value"))}, Body: []Stmt{Write("[]")}},
			},
			Else: []Stmt{
				Write("["),
				Set(Var("prefix0"), Lit("")),
				&Foreach{Collection: Prop(Var("value"), "Tags"), Key: "k", Value: "item", Body: []Stmt{
					WriteExpr(Var("prefix0")),
					WriteExpr(&TemplateString{Parts: []Expr{Lit(`"k`), Fn("escape_key", Var("k")), Lit(`":`)}}),
					Set(Var("prefix0"), Lit(",")),
				}},
				Write("]"),
			},
		},
		Write("}"),
		Set(&Index{Target: Var("items")}, &Closure{Params: []string{"x"}, Uses: []string{"source"}, Body: []Stmt{
			&Try{Body: []Stmt{&Return{Value: &Binary{Op: "+", Left: Var("x"), Right: Lit(1.5)}}}, Var: "e", Catch: []Stmt{
				&Throw{Kind: "UnexpectedValue", Message: Lit("bad")},
			}},
		}}),
		&Return{},
	}
	if diff := cmp.Diff(expect, optimized); diff != "" {
		t.Fatalf("optimized program mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(optimized, Optimize(optimized)); diff != "" {
		t.Fatalf("optimize is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestOptimize_DoesNotMutate(t *testing.T) {
	program := sampleProgram()
	before := Render(program)
	_ = Optimize(program)
	assert.Equal(t, before, Render(program))
	assert.Len(t, program, 9)
}

func TestOptimize_RunBreakers(t *testing.T) {
	var testCases = []struct {
		description string
		stmt        Stmt
	}{
		{description: "computed payload", stmt: WriteExpr(Var("x"))},
		{description: "other sink", stmt: Eval(Method(Var("log"), "write", Lit("x")))},
		{description: "non string literal", stmt: WriteExpr(Lit(1))},
		{description: "other method", stmt: Eval(Method(Var(OutVar), "flush", Lit("x")))},
	}
	for _, testCase := range testCases {
		actual := Optimize([]Stmt{Write("a"), testCase.stmt, Write("b"), Write("c")})
		assert.Len(t, actual, 3, testCase.description)
		text, ok := LiteralWrite(actual[2])
		assert.True(t, ok, testCase.description)
		assert.Equal(t, "bc", text, testCase.description)
	}
}

func TestRender(t *testing.T) {
	program := []Stmt{
		Write(`{"id":`),
		&If{
			Cond: IsNull(Var("value")),
			Then: []Stmt{Write("null")},
			Else: []Stmt{
				&Foreach{Collection: Var("value"), Value: "item", Body: []Stmt{WriteExpr(Fn("encode", Var("item")))}},
			},
		},
		Set(Var("f"), &Closure{Params: []string{"x"}, Uses: []string{"y"}, Body: []Stmt{&Return{Value: Var("x")}}}),
		&Throw{Kind: "UnexpectedValue", Message: &TemplateString{Parts: []Expr{Lit("bad $"), Var("x")}}},
	}
	expect := "out.write(\"{\\\"id\\\":\");\n" +
		"if (value == null) {\n" +
		"\tout.write(\"null\");\n" +
		"} else {\n" +
		"\tfor item in value {\n" +
		"\t\tout.write(encode(item));\n" +
		"\t}\n" +
		"}\n" +
		"f = fn[y](x) {\n" +
		"\treturn x;\n" +
		"};\n" +
		"throw UnexpectedValue(`bad \\$${x}`);\n"
	assert.Equal(t, expect, Render(program))

	c := NewCompiler("  ")
	c.Line("a")
	c.Indent()
	c.Line("b")
	c.Outdent()
	c.Outdent()
	c.Raw("c")
	assert.Equal(t, "a\n  b\nc", c.String())
	c.Reset()
	assert.Equal(t, "", c.String())
}

func TestProgramEnvelope(t *testing.T) {
	program := Optimize(sampleProgram())
	data, err := MarshalProgram(program)
	require.NoError(t, err)
	actual, err := UnmarshalProgram(data)
	require.NoError(t, err)
	if diff := cmp.Diff(program, actual); diff != "" {
		t.Fatalf("envelope round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Render(program), Render(actual))

	_, err = UnmarshalProgram([]byte(`[{"node":"goto"}]`))
	assert.True(t, errors.Is(err, errs.InvalidResource))
	_, err = UnmarshalProgram([]byte(`{`))
	assert.True(t, errors.Is(err, errs.InvalidResource))
}
