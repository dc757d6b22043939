// Package typ describes value shapes: scalars, enums, records, collections,
// generics, unions and template placeholders.
//
// Types are immutable and are only created by the constructors of this package,
// so String always returns the canonical form used as a cache and lookup key.
package typ

import (
	"strings"
)

// Kind identifies a type shape.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Enum
	Record
	Collection
	Generic
	Union
	Template
)

var kindNames = [...]string{"null", "bool", "int", "float", "string", "enum", "object", "collection", "generic", "union", "template"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Type represents a value shape.
type Type struct {
	kind     Kind
	nullable bool
	name     string
	key      *Type
	value    *Type
	list     bool
	args     []*Type
	alts     []*Type
	text     string
}

var (
	nullType   = seal(&Type{kind: Null, nullable: true})
	boolType   = seal(&Type{kind: Bool})
	intType    = seal(&Type{kind: Int})
	floatType  = seal(&Type{kind: Float})
	stringType = seal(&Type{kind: String})
)

// NullType returns the null type.
func NullType() *Type { return nullType }

// BoolType returns the bool type.
func BoolType() *Type { return boolType }

// IntType returns the int type.
func IntType() *Type { return intType }

// FloatType returns the float type.
func FloatType() *Type { return floatType }

// StringType returns the string type.
func StringType() *Type { return stringType }

// Scalar returns a builtin scalar type for kind.
func Scalar(kind Kind) *Type {
	switch kind {
	case Null:
		return nullType
	case Bool:
		return boolType
	case Int:
		return intType
	case Float:
		return floatType
	case String:
		return stringType
	}
	return nil
}

// RecordOf returns a record type identified by name.
func RecordOf(name string) *Type { return seal(&Type{kind: Record, name: name}) }

// EnumOf returns an enum type identified by name.
func EnumOf(name string) *Type { return seal(&Type{kind: Enum, name: name}) }

// TemplateOf returns a template placeholder.
func TemplateOf(name string) *Type { return seal(&Type{kind: Template, name: name}) }

// ListOf returns a list collection of value.
func ListOf(value *Type) *Type {
	return seal(&Type{kind: Collection, key: intType, value: value, list: true})
}

// DictOf returns a dictionary keyed by key (string when nil).
func DictOf(key, value *Type) *Type {
	if key == nil {
		key = stringType
	}
	return seal(&Type{kind: Collection, key: key, value: value})
}

// GenericOf returns a generic record instantiation.
func GenericOf(name string, args ...*Type) *Type {
	if len(args) == 0 {
		return RecordOf(name)
	}
	return seal(&Type{kind: Generic, name: name, args: append([]*Type(nil), args...)})
}

// UnionOf returns a union of alternatives. Nested unions are flattened, duplicates
// removed, a null alternative turns into nullability and a single remaining
// alternative collapses into that alternative.
func UnionOf(alternatives ...*Type) *Type {
	nullable := false
	var flat []*Type
	seen := map[string]bool{}
	var add func(t *Type)
	add = func(t *Type) {
		if t == nil {
			return
		}
		if t.kind == Union {
			if t.nullable {
				nullable = true
			}
			for _, alt := range t.alts {
				add(alt)
			}
			return
		}
		if t.kind == Null {
			nullable = true
			return
		}
		if t.nullable {
			nullable = true
			t = t.NonNullable()
		}
		if seen[t.text] {
			return
		}
		seen[t.text] = true
		flat = append(flat, t)
	}
	for _, alt := range alternatives {
		add(alt)
	}
	switch len(flat) {
	case 0:
		return nullType
	case 1:
		if nullable {
			return Nullable(flat[0])
		}
		return flat[0]
	}
	return seal(&Type{kind: Union, alts: flat, nullable: nullable})
}

// Nullable returns t accepting null.
func Nullable(t *Type) *Type {
	if t.nullable {
		return t
	}
	ret := *t
	ret.nullable = true
	return seal(&ret)
}

// NonNullable returns t without null.
func (t *Type) NonNullable() *Type {
	if !t.nullable || t.kind == Null {
		return t
	}
	ret := *t
	ret.nullable = false
	return seal(&ret)
}

// Kind returns type kind.
func (t *Type) Kind() Kind { return t.kind }

// Name returns record, enum, generic or template identity.
func (t *Type) Name() string { return t.name }

// Key returns collection key type.
func (t *Type) Key() *Type { return t.key }

// Value returns collection value type.
func (t *Type) Value() *Type { return t.value }

// Args returns generic type arguments.
func (t *Type) Args() []*Type { return append([]*Type(nil), t.args...) }

// Alternatives returns union alternatives (never null).
func (t *Type) Alternatives() []*Type { return append([]*Type(nil), t.alts...) }

// String returns canonical type form.
func (t *Type) String() string { return t.text }

// Equal reports structural equality.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.text == other.text
}

func (t *Type) IsNullable() bool { return t.nullable }
func (t *Type) IsNull() bool     { return t.kind == Null }
func (t *Type) IsScalar() bool {
	switch t.kind {
	case Bool, Int, Float, String:
		return true
	}
	return false
}
func (t *Type) IsCollection() bool { return t.kind == Collection }
func (t *Type) IsList() bool       { return t.kind == Collection && t.list }
func (t *Type) IsDict() bool       { return t.kind == Collection && !t.list }
func (t *Type) IsGeneric() bool    { return t.kind == Generic }
func (t *Type) IsUnion() bool      { return t.kind == Union }
func (t *Type) IsObject() bool     { return t.kind == Record || t.kind == Generic }
func (t *Type) IsEnum() bool       { return t.kind == Enum }
func (t *Type) IsTemplate() bool   { return t.kind == Template }

// Substitute replaces template placeholders with bindings.
func Substitute(t *Type, bindings map[string]*Type) *Type {
	if t == nil || len(bindings) == 0 {
		return t
	}
	var ret *Type
	switch t.kind {
	case Template:
		bound, ok := bindings[t.name]
		if !ok {
			return t
		}
		ret = bound
	case Collection:
		key, value := Substitute(t.key, bindings), Substitute(t.value, bindings)
		if t.list {
			ret = ListOf(value)
		} else {
			ret = DictOf(key, value)
		}
	case Generic:
		args := make([]*Type, len(t.args))
		for i, arg := range t.args {
			args[i] = Substitute(arg, bindings)
		}
		ret = GenericOf(t.name, args...)
	case Union:
		alts := make([]*Type, len(t.alts))
		for i, alt := range t.alts {
			alts[i] = Substitute(alt, bindings)
		}
		ret = UnionOf(alts...)
	default:
		return t
	}
	if t.nullable {
		return Nullable(ret)
	}
	return ret
}

func seal(t *Type) *Type {
	t.text = canonical(t)
	return t
}

func canonical(t *Type) string {
	var sb strings.Builder
	switch t.kind {
	case Union:
		for i, alt := range t.alts {
			if i > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(alt.text)
		}
		if t.nullable {
			sb.WriteString("|null")
		}
		return sb.String()
	case Null:
		return "null"
	}
	if t.nullable {
		sb.WriteByte('?')
	}
	switch t.kind {
	case Collection:
		if t.list {
			sb.WriteString("list<")
		} else {
			sb.WriteString("array<")
			sb.WriteString(t.key.text)
			sb.WriteByte(',')
		}
		sb.WriteString(t.value.text)
		sb.WriteByte('>')
	case Generic:
		sb.WriteString(t.name)
		sb.WriteByte('<')
		for i, arg := range t.args {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(arg.text)
		}
		sb.WriteByte('>')
	case Record, Enum, Template:
		sb.WriteString(t.name)
	default:
		sb.WriteString(t.kind.String())
	}
	return sb.String()
}
