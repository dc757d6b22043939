package typ

import (
	"bytes"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/typecodec/errs"
)

// Resolver supplies identities known to a registry.
type Resolver interface {
	// IsEnum reports whether name identifies an enum.
	IsEnum(name string) bool
	// Templates returns declared template parameter names of a record.
	Templates(name string) ([]string, bool)
}

// Builder parses type strings within a declaring scope. All type strings go
// through a builder so parsed and reflected types share the canonical form.
type Builder struct {
	Resolver Resolver
	// Declaring is the record identity self and static resolve to.
	Declaring string
	// Parent is the record identity parent resolves to.
	Parent string
	// Templates lists placeholder names in scope.
	Templates []string
	Cache     *Cache
}

// Parse parses s without registry or declaring scope.
func Parse(s string) (*Type, error) {
	return (&Builder{}).Parse(s)
}

// MustParse parses s or panics; intended for tests and static declarations.
func MustParse(s string) *Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse parses s into a canonical type.
func (b *Builder) Parse(s string) (*Type, error) {
	if b.Cache != nil {
		return b.Cache.lookup(b.scopeKey()+s, func() (*Type, error) { return b.parse(s) })
	}
	return b.parse(s)
}

func (b *Builder) scopeKey() string {
	if b.Declaring == "" && b.Parent == "" && len(b.Templates) == 0 {
		return ""
	}
	return b.Declaring + ":" + b.Parent + ":" + strings.Join(b.Templates, ",") + "#"
}

// CheckArity validates generic argument count against declared templates.
func (b *Builder) CheckArity(name string, actual int) error {
	if b.Resolver == nil {
		return nil
	}
	templates, ok := b.Resolver.Templates(name)
	if !ok {
		if actual > 0 {
			return errs.New(errs.InvalidArgument, "%s expects 0 type arguments, got %d", name, actual)
		}
		return nil
	}
	if len(templates) != actual {
		return errs.New(errs.InvalidArgument, "%s expects %d type arguments, got %d", name, len(templates), actual)
	}
	return nil
}

type token struct {
	code int
	text string
	pos  int
}

type parser struct {
	builder *Builder
	input   string
	tokens  []token
	index   int
}

func (b *Builder) parse(s string) (*Type, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errs.New(errs.InvalidType, "empty type")
	}
	p := &parser{builder: b, input: s, tokens: tokens}
	ret, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.index < len(p.tokens) {
		tok := p.tokens[p.index]
		return nil, errs.New(errs.InvalidType, "unexpected %q at %d in %q", tok.text, tok.pos, s)
	}
	return ret, nil
}

func tokenize(s string) ([]token, error) {
	cursor := parsly.NewCursor("", []byte(s), 0)
	var result []token
	for cursor.Pos < len(cursor.Input) {
		pos := cursor.Pos
		matched := cursor.MatchAfterOptional(whitespaceMatcher, nullableMatcher, unionMatcher, intersectionMatcher,
			argsOpenMatcher, argsCloseMatcher, comaMatcher, groupOpenMatcher, groupCloseMatcher, identityMatcher)
		switch matched.Code {
		case nullableToken, unionToken, intersectionToken, argsOpenToken, argsCloseToken,
			comaToken, groupOpenToken, groupCloseToken, identityToken:
			result = append(result, token{code: matched.Code, text: matched.Text(cursor), pos: pos})
		default:
			if len(bytes.TrimSpace(cursor.Input[pos:])) == 0 {
				return result, nil
			}
			return nil, errs.New(errs.InvalidType, "invalid character at %d in %q", pos, s)
		}
	}
	return result, nil
}

func (p *parser) peek() int {
	if p.index >= len(p.tokens) {
		return -1
	}
	return p.tokens[p.index].code
}

func (p *parser) expect(code int, what string) error {
	if p.peek() != code {
		return p.unexpected(what)
	}
	p.index++
	return nil
}

func (p *parser) unexpected(what string) error {
	if p.index >= len(p.tokens) {
		return errs.New(errs.InvalidType, "expected %s at end of %q", what, p.input)
	}
	tok := p.tokens[p.index]
	return errs.New(errs.InvalidType, "expected %s, got %q at %d in %q", what, tok.text, tok.pos, p.input)
}

func (p *parser) parseUnion() (*Type, error) {
	first, err := p.parseIntersection()
	if err != nil {
		return nil, err
	}
	if p.peek() != unionToken {
		return first, nil
	}
	alts := []*Type{first}
	for p.peek() == unionToken {
		p.index++
		alt, err := p.parseIntersection()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	return UnionOf(alts...), nil
}

func (p *parser) parseIntersection() (*Type, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek() == intersectionToken {
		p.index++
		if _, err = p.parsePrimary(); err != nil {
			return nil, err
		}
		return nil, errs.New(errs.UnsupportedType, "intersection types are not supported: %q", p.input)
	}
	return first, nil
}

func (p *parser) parsePrimary() (*Type, error) {
	switch p.peek() {
	case nullableToken:
		p.index++
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	case groupOpenToken:
		p.index++
		inner, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if err = p.expect(groupCloseToken, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case identityToken:
	default:
		return nil, p.unexpected("type name")
	}
	name := p.tokens[p.index].text
	p.index++
	var args []*Type
	hasArgs := false
	if p.peek() == argsOpenToken {
		p.index++
		hasArgs = true
		for {
			arg, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek() == comaToken {
				p.index++
				continue
			}
			if err = p.expect(argsCloseToken, "'>' or ','"); err != nil {
				return nil, err
			}
			break
		}
	}
	return p.builder.named(name, args, hasArgs, p.input)
}

func (b *Builder) named(name string, args []*Type, hasArgs bool, input string) (*Type, error) {
	lower := strings.ToLower(name)
	switch lower {
	case "int", "integer":
		return b.scalar(IntType(), name, hasArgs, input)
	case "float", "double":
		return b.scalar(FloatType(), name, hasArgs, input)
	case "string":
		return b.scalar(StringType(), name, hasArgs, input)
	case "bool", "boolean", "true", "false":
		return b.scalar(BoolType(), name, hasArgs, input)
	case "null":
		return b.scalar(NullType(), name, hasArgs, input)
	case "void", "never", "mixed", "callable", "resource":
		return nil, errs.New(errs.UnsupportedType, "%s is not supported: %q", name, input)
	case "array", "list", "iterable", "map", "dict":
		return b.collection(lower, args, input)
	case "self", "static":
		if b.Declaring == "" {
			return nil, errs.New(errs.InvalidType, "%s used outside of a declaring record: %q", name, input)
		}
		name = b.Declaring
	case "parent":
		if b.Parent == "" {
			return nil, errs.New(errs.InvalidType, "parent used without a parent record: %q", input)
		}
		name = b.Parent
	}
	for _, template := range b.Templates {
		if template == name {
			if hasArgs {
				return nil, errs.New(errs.InvalidType, "template %s cannot take arguments: %q", name, input)
			}
			return TemplateOf(name), nil
		}
	}
	if b.Resolver != nil && b.Resolver.IsEnum(name) {
		if hasArgs {
			return nil, errs.New(errs.InvalidType, "enum %s cannot take arguments: %q", name, input)
		}
		return EnumOf(name), nil
	}
	if err := b.CheckArity(name, len(args)); err != nil {
		return nil, err
	}
	return GenericOf(name, args...), nil
}

func (b *Builder) scalar(t *Type, name string, hasArgs bool, input string) (*Type, error) {
	if hasArgs {
		return nil, errs.New(errs.InvalidType, "%s cannot take arguments: %q", name, input)
	}
	return t, nil
}

func (b *Builder) collection(name string, args []*Type, input string) (*Type, error) {
	switch len(args) {
	case 1:
		if name == "map" || name == "dict" {
			return DictOf(StringType(), args[0]), nil
		}
		return ListOf(args[0]), nil
	case 2:
		if name == "list" {
			return nil, errs.New(errs.InvalidType, "list takes one type argument: %q", input)
		}
		key := args[0]
		switch key.Kind() {
		case Int, String:
		default:
			return nil, errs.New(errs.InvalidType, "collection key must be int or string, got %s: %q", key, input)
		}
		return DictOf(key, args[1]), nil
	}
	return nil, errs.New(errs.InvalidType, "%s expects 1 or 2 type arguments, got %d: %q", name, len(args), input)
}
