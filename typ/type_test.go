package typ

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/typecodec/errs"
)

type testResolver struct {
	enums     map[string]bool
	templates map[string][]string
}

func (r *testResolver) IsEnum(name string) bool { return r.enums[name] }

func (r *testResolver) Templates(name string) ([]string, bool) {
	ret, ok := r.templates[name]
	return ret, ok
}

func TestParse_Canonical(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      string
		kind        Kind
	}{
		{description: "scalar", input: "int", expect: "int", kind: Int},
		{description: "alias", input: "integer", expect: "int", kind: Int},
		{description: "nullable", input: "?string", expect: "?string", kind: String},
		{description: "null union collapses", input: "int|null", expect: "?int", kind: Int},
		{description: "union", input: "int|string", expect: "int|string", kind: Union},
		{description: "nullable union", input: "int | string | null", expect: "int|string|null", kind: Union},
		{description: "dedupe", input: "int|int", expect: "int", kind: Int},
		{description: "list", input: "array<int>", expect: "list<int>", kind: Collection},
		{description: "list alias", input: "list<?float>", expect: "list<?float>", kind: Collection},
		{description: "iterable", input: "iterable<bool>", expect: "list<bool>", kind: Collection},
		{description: "dict", input: "array<string, int>", expect: "array<string,int>", kind: Collection},
		{description: "dict int key", input: "array<int,string>", expect: "array<int,string>", kind: Collection},
		{description: "map", input: "map<User>", expect: "array<string,User>", kind: Collection},
		{description: "nested", input: "array<string, array<int, bool>>", expect: "array<string,array<int,bool>>", kind: Collection},
		{description: "record", input: "User", expect: "User", kind: Record},
		{description: "generic", input: "Page<User, int>", expect: "Page<User,int>", kind: Generic},
		{description: "group", input: "?(int|string)", expect: "int|string|null", kind: Union},
	}
	for _, testCase := range testCases {
		actual, err := Parse(testCase.input)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, actual.String(), testCase.description)
		assert.Equal(t, testCase.kind, actual.Kind(), testCase.description)
		reparsed, err := Parse(actual.String())
		require.NoError(t, err, testCase.description)
		assert.True(t, reparsed.Equal(actual), testCase.description)
	}
}

func TestParse_Errors(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		kind        error
	}{
		{description: "unmatched", input: "array<int, array<string, bool>", kind: errs.InvalidType},
		{description: "dangling close", input: "int>", kind: errs.InvalidType},
		{description: "empty", input: "  ", kind: errs.InvalidType},
		{description: "bad char", input: "int$", kind: errs.InvalidType},
		{description: "list arity", input: "list<int,int>", kind: errs.InvalidType},
		{description: "bad key", input: "array<float,int>", kind: errs.InvalidType},
		{description: "intersection", input: "A&B", kind: errs.UnsupportedType},
		{description: "void", input: "void", kind: errs.UnsupportedType},
		{description: "never", input: "?never", kind: errs.UnsupportedType},
		{description: "self without scope", input: "self", kind: errs.InvalidType},
		{description: "parent without scope", input: "list<parent>", kind: errs.InvalidType},
	}
	for _, testCase := range testCases {
		_, err := Parse(testCase.input)
		assert.True(t, errors.Is(err, testCase.kind), "%s: %v", testCase.description, err)
	}
}

func TestBuilder_Scope(t *testing.T) {
	resolver := &testResolver{
		enums:     map[string]bool{"Color": true},
		templates: map[string][]string{"Page": {"T"}},
	}
	builder := &Builder{Resolver: resolver, Declaring: "Node", Parent: "Base", Templates: []string{"T"}, Cache: NewCache(10)}

	actual, err := builder.Parse("?self")
	require.NoError(t, err)
	assert.Equal(t, "?Node", actual.String())
	assert.Equal(t, Record, actual.Kind())

	actual, err = builder.Parse("list<parent>")
	require.NoError(t, err)
	assert.Equal(t, "list<Base>", actual.String())

	actual, err = builder.Parse("Color")
	require.NoError(t, err)
	assert.True(t, actual.IsEnum())

	actual, err = builder.Parse("list<T>")
	require.NoError(t, err)
	assert.True(t, actual.Value().IsTemplate())

	actual, err = builder.Parse("Page<Color>")
	require.NoError(t, err)
	assert.True(t, actual.IsGeneric())
	assert.Equal(t, 5, builder.Cache.Len())

	_, err = builder.Parse("Page<int,string>")
	assert.True(t, errors.Is(err, errs.InvalidArgument))
	assert.Contains(t, err.Error(), "expects 1 type arguments, got 2")

	_, err = builder.Parse("Page")
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

func TestPredicates(t *testing.T) {
	var testCases = []struct {
		input      string
		scalar     bool
		collection bool
		list       bool
		dict       bool
		nullable   bool
		generic    bool
		union      bool
	}{
		{input: "int", scalar: true},
		{input: "?bool", scalar: true, nullable: true},
		{input: "null", nullable: true},
		{input: "list<int>", collection: true, list: true},
		{input: "array<string,int>", collection: true, dict: true},
		{input: "Page<int>", generic: true},
		{input: "int|string", union: true},
		{input: "int|string|null", union: true, nullable: true},
		{input: "User"},
	}
	for _, testCase := range testCases {
		actual := MustParse(testCase.input)
		assert.Equal(t, testCase.scalar, actual.IsScalar(), testCase.input)
		assert.Equal(t, testCase.collection, actual.IsCollection(), testCase.input)
		assert.Equal(t, testCase.list, actual.IsList(), testCase.input)
		assert.Equal(t, testCase.dict, actual.IsDict(), testCase.input)
		assert.Equal(t, testCase.nullable, actual.IsNullable(), testCase.input)
		assert.Equal(t, testCase.generic, actual.IsGeneric(), testCase.input)
		assert.Equal(t, testCase.union, actual.IsUnion(), testCase.input)
	}
}

func TestUnionOf(t *testing.T) {
	union := UnionOf(IntType(), UnionOf(StringType(), NullType()), IntType())
	assert.Equal(t, "int|string|null", union.String())
	assert.Len(t, union.Alternatives(), 2)
	assert.Equal(t, "?int", UnionOf(IntType(), NullType()).String())
	assert.Equal(t, "null", UnionOf(NullType()).String())
	assert.Equal(t, "int|string", union.NonNullable().String())
}

func TestSubstitute(t *testing.T) {
	builder := &Builder{Templates: []string{"T", "K"}}
	declared, err := builder.Parse("?array<string, list<?T>>")
	require.NoError(t, err)
	actual := Substitute(declared, map[string]*Type{"T": RecordOf("User")})
	assert.Equal(t, "?array<string,list<?User>>", actual.String())
	assert.Same(t, declared, Substitute(declared, nil))
}

type sample struct{ ID int }

type color string

type testNamer struct{}

func (testNamer) TypeName(rType reflect.Type) (string, Kind, bool) {
	switch rType {
	case reflect.TypeOf(color("")):
		return "Color", Enum, true
	case reflect.TypeOf(sample{}):
		return "Sample", Record, true
	}
	return "", 0, false
}

func TestFromReflect(t *testing.T) {
	var testCases = []struct {
		value  interface{}
		namer  Namer
		expect string
	}{
		{value: 1, expect: "int"},
		{value: uint8(1), expect: "int"},
		{value: 1.5, expect: "float"},
		{value: "", expect: "string"},
		{value: true, expect: "bool"},
		{value: new(int), expect: "?int"},
		{value: []*float64{}, expect: "list<?float>"},
		{value: map[string][]string{}, expect: "array<string,list<string>>"},
		{value: map[int]bool{}, expect: "array<int,bool>"},
		{value: sample{}, expect: "sample"},
		{value: &sample{}, namer: testNamer{}, expect: "?Sample"},
		{value: []color{}, namer: testNamer{}, expect: "list<Color>"},
		{value: color(""), expect: "string"},
	}
	for _, testCase := range testCases {
		actual, err := FromReflect(reflect.TypeOf(testCase.value), testCase.namer)
		if !assert.NoError(t, err, testCase.expect) {
			continue
		}
		assert.Equal(t, testCase.expect, actual.String())
	}

	_, err := FromReflect(reflect.TypeOf([]interface{}{}), nil)
	assert.True(t, errors.Is(err, errs.UnsupportedType))
	_, err = FromReflect(reflect.TypeOf(map[float64]int{}), nil)
	assert.True(t, errors.Is(err, errs.UnsupportedType))
}
