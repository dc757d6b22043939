package registry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tagly/format/text"
	"github.com/viant/typecodec/errs"
)

type Status string

type Address struct {
	City string
}

type User struct {
	ID       int
	Name     string      `json:"fullName"`
	Email    *string     `json:",omitempty"`
	Status   Status
	Address  *Address
	Tags     []string    `codec:"groups=admin|audit"`
	Scores   map[string]float64
	Next     *User       `codec:"type=?self"`
	Extra    interface{} `codec:"type='int|string'"`
	Ignored  string      `json:"-"`
	internal string
	secret   string `codec:"type=string"`
}

type Page struct {
	Items []interface{} `codec:"type=list<T>"`
	Total int
}

func newTestRegistry(t *testing.T) *Registry {
	r := New(text.CaseFormatLowerCamel, nil)
	require.NoError(t, r.RegisterEnum("Status", Status(""), Status("active"), Status("blocked")))
	require.NoError(t, r.Register("User", &User{}))
	require.NoError(t, r.Register("Page", Page{}, Templates("T")))
	return r
}

func TestRegistry_Describe(t *testing.T) {
	r := newTestRegistry(t)
	record, err := r.Describe("User")
	require.NoError(t, err)

	var testCases = []struct {
		name     string
		key      string
		typeName string
		exported bool
	}{
		{name: "ID", key: "id", typeName: "int", exported: true},
		{name: "Name", key: "fullName", typeName: "string", exported: true},
		{name: "Email", key: "email", typeName: "?string", exported: true},
		{name: "Status", key: "status", typeName: "Status", exported: true},
		{name: "Address", key: "address", typeName: "?Address", exported: true},
		{name: "Tags", key: "tags", typeName: "list<string>", exported: true},
		{name: "Scores", key: "scores", typeName: "array<string,float>", exported: true},
		{name: "Next", key: "next", typeName: "?User", exported: true},
		{name: "Extra", key: "extra", typeName: "int|string", exported: true},
		{name: "secret", key: "secret", typeName: "string"},
	}
	require.Len(t, record.Fields, len(testCases))
	for i, testCase := range testCases {
		field := record.Fields[i]
		assert.Equal(t, testCase.name, field.Name)
		assert.Equal(t, testCase.key, field.Key, testCase.name)
		assert.Equal(t, testCase.typeName, field.Type.String(), testCase.name)
		assert.Equal(t, testCase.exported, field.Exported, testCase.name)
	}
	tags, ok := record.Field("Tags")
	require.True(t, ok)
	assert.True(t, tags.InGroups([]string{"audit"}))
	assert.False(t, tags.InGroups([]string{"public"}))
	assert.True(t, tags.InGroups(nil))

	again, err := r.Describe("User")
	require.NoError(t, err)
	assert.Same(t, record, again)

	_, err = r.Describe("Missing")
	assert.True(t, errors.Is(err, errs.InvalidType))
}

func TestRegistry_FieldAccess(t *testing.T) {
	r := newTestRegistry(t)
	record, err := r.Describe("User")
	require.NoError(t, err)
	email := "a@b.c"
	user := &User{ID: 7, Email: &email, Address: &Address{City: "Austin"}}
	ptr, err := record.Pointer(user)
	require.NoError(t, err)

	id, _ := record.Field("ID")
	assert.Equal(t, 7, id.Value(ptr))
	emailField, _ := record.FieldByKey("email")
	assert.Equal(t, "a@b.c", emailField.Value(ptr))
	next, _ := record.Field("Next")
	assert.Nil(t, next.Value(ptr))
	address, _ := record.Field("Address")
	assert.Same(t, user.Address, address.Value(ptr))

	id.Set(ptr, reflect.ValueOf(9))
	assert.Equal(t, 9, user.ID)

	_, err = record.Pointer(Address{})
	assert.True(t, errors.Is(err, errs.UnexpectedValue))
}

func TestRegistry_Enum(t *testing.T) {
	r := newTestRegistry(t)
	enum, ok := r.Enum("Status")
	require.True(t, ok)
	value, err := enum.Value(Status("active"))
	require.NoError(t, err)
	assert.Equal(t, "active", value)
	_, err = enum.Value(Status("gone"))
	assert.True(t, errors.Is(err, errs.UnexpectedValue))

	converted, err := enum.From("blocked")
	require.NoError(t, err)
	assert.Equal(t, Status("blocked"), converted)
	_, err = enum.From(1.0)
	assert.True(t, errors.Is(err, errs.UnexpectedValue))
}

type Color string

type Level int

func TestRegistry_RegisterEnum(t *testing.T) {
	var testCases = []struct {
		description string
		sample      interface{}
		cases       []interface{}
		value       interface{}
		expect      interface{}
		expectErr   error
	}{
		{description: "string cases", sample: Color(""), cases: []interface{}{"red", "blue"}, value: "blue", expect: Color("blue")},
		{description: "string non case", sample: Color(""), cases: []interface{}{"red", "blue"}, value: "green", expectErr: errs.UnexpectedValue},
		{description: "int cases", sample: Level(0), cases: []interface{}{Level(1), Level(2)}, value: 2, expect: Level(2)},
		{description: "int non case", sample: Level(0), cases: []interface{}{Level(1), Level(2)}, value: 3, expectErr: errs.UnexpectedValue},
		{description: "open enum", sample: Color(""), value: "any", expect: Color("any")},
	}
	for _, testCase := range testCases {
		r := New(text.CaseFormatLowerCamel, nil)
		require.NoError(t, r.RegisterEnum("Enum", testCase.sample, testCase.cases...), testCase.description)
		enum, ok := r.Enum("Enum")
		require.True(t, ok, testCase.description)
		actual, err := enum.From(testCase.value)
		if testCase.expectErr != nil {
			assert.True(t, errors.Is(err, testCase.expectErr), "%s: %v", testCase.description, err)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}

	r := New(text.CaseFormatLowerCamel, nil)
	err := r.RegisterEnum("Color", Color(""), "red", 1)
	assert.True(t, errors.Is(err, errs.UnexpectedValue), "%v", err)
}

func TestRegistry_GoType(t *testing.T) {
	r := newTestRegistry(t)
	var testCases = []struct {
		input  string
		expect reflect.Type
	}{
		{input: "int", expect: reflect.TypeOf(0)},
		{input: "?float", expect: reflect.TypeOf(new(float64))},
		{input: "Status", expect: reflect.TypeOf(Status(""))},
		{input: "?User", expect: reflect.TypeOf(&User{})},
		{input: "list<Page<int>>", expect: reflect.TypeOf([]*Page{})},
		{input: "array<string,list<bool>>", expect: reflect.TypeOf(map[string][]bool{})},
		{input: "array<int,string>", expect: reflect.TypeOf(map[int]string{})},
		{input: "int|string", expect: reflect.TypeOf((*interface{})(nil)).Elem()},
	}
	for _, testCase := range testCases {
		parsed, err := r.Parse(testCase.input)
		require.NoError(t, err, testCase.input)
		actual, err := r.GoType(parsed)
		if !assert.NoError(t, err, testCase.input) {
			continue
		}
		assert.Equal(t, testCase.expect, actual, testCase.input)
	}

	parsed, err := r.Parse("Page<int>")
	require.NoError(t, err)
	assert.True(t, parsed.IsGeneric())
	_, err = r.Parse("Page<int,string>")
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

func TestRegistry_TypeOf(t *testing.T) {
	r := newTestRegistry(t)
	actual, err := r.TypeOf([]*Address{})
	require.NoError(t, err)
	assert.Equal(t, "list<?Address>", actual.String())
	actual, err = r.TypeOf(map[string]Status{})
	require.NoError(t, err)
	assert.Equal(t, "array<string,Status>", actual.String())
}
