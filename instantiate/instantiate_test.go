package instantiate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tagly/format/text"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/typ"
)

type Level int

type Address struct {
	City string
	Zip  *int
}

type Account struct {
	ID      int
	Name    string
	Level   Level
	Ratio   float64
	Address *Address
	Tags    []string
	Limits  map[string]int
	Parent  *Account
}

func newRegistry(t *testing.T) *registry.Registry {
	r := registry.New(text.CaseFormatLowerCamel, nil)
	require.NoError(t, r.RegisterEnum("Level", Level(0)))
	require.NoError(t, r.Register("Account", Account{}))
	require.NoError(t, r.Register("Address", Address{}))
	return r
}

func counted(value interface{}, calls *int) Thunk {
	return func() (interface{}, error) {
		*calls++
		return value, nil
	}
}

func TestConvert(t *testing.T) {
	zip := 73301
	var testCases = []struct {
		description string
		value       interface{}
		target      interface{}
		expect      interface{}
		expectErr   bool
	}{
		{description: "float to int", value: 3.0, target: 0, expect: 3},
		{description: "fractional float to int", value: 3.5, target: 0, expectErr: true},
		{description: "json number", value: json.Number("12"), target: int64(0), expect: int64(12)},
		{description: "int to float", value: 2, target: 0.0, expect: 2.0},
		{description: "nil to pointer", value: nil, target: (*int)(nil), expect: (*int)(nil)},
		{description: "value to pointer", value: zip, target: (*int)(nil), expect: &zip},
		{description: "pointer to value", value: &zip, target: 0, expect: zip},
		{description: "int to enum", value: 1, target: Level(0), expect: Level(1)},
		{description: "generic list", value: []interface{}{1, 2}, target: []int{}, expect: []int{1, 2}},
		{description: "typed list to any list", value: []int{1}, target: []interface{}{}, expect: []interface{}{1}},
		{description: "int keyed map", value: map[string]interface{}{"1": "a"}, target: map[int]string{}, expect: map[int]string{1: "a"}},
		{description: "string to bool", value: "true", target: false, expectErr: true},
		{description: "dict to list", value: map[string]interface{}{}, target: []int{}, expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := Convert(testCase.value, reflect.TypeOf(testCase.target))
		if testCase.expectErr {
			assert.True(t, errors.Is(err, errs.UnexpectedValue), testCase.description)
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, actual.Interface(), testCase.description)
	}
}

func TestEager(t *testing.T) {
	r := newRegistry(t)
	eager := NewEager(r, nil)
	calls := 0
	address, err := eager.Record(typ.RecordOf("Address"), []Field{{Name: "City", Resolve: counted("Austin", &calls)}})
	require.NoError(t, err)
	account, err := eager.Record(typ.RecordOf("Account"), []Field{
		{Name: "ID", Resolve: counted(1, &calls)},
		{Name: "Name", Resolve: counted("main", &calls)},
		{Name: "Level", Resolve: counted(Level(2), &calls)},
		{Name: "Ratio", Resolve: counted(1, &calls)},
		{Name: "Address", Resolve: Value(address)},
		{Name: "Tags", Resolve: Value([]interface{}{"a"})},
		{Name: "Limits", Resolve: Value(map[string]interface{}{"x": 1.0})},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, &Account{
		ID: 1, Name: "main", Level: 2, Ratio: 1,
		Address: &Address{City: "Austin"},
		Tags:    []string{"a"},
		Limits:  map[string]int{"x": 1},
	}, account)

	_, err = eager.Record(typ.RecordOf("Account"), []Field{{Name: "Missing", Resolve: Value(1)}})
	assert.True(t, errors.Is(err, errs.UnexpectedValue))

	list, err := eager.List(typ.ListOf(typ.IntType()), []Thunk{Value(1.0), Value(2)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, list)

	dict, err := eager.Dict(typ.DictOf(typ.IntType(), typ.StringType()), []string{"7"}, []Thunk{Value("x")})
	require.NoError(t, err)
	assert.Equal(t, map[int]string{7: "x"}, dict)
}

func TestLazy(t *testing.T) {
	r := newRegistry(t)
	supports := NewSupports(r)
	lazy := NewLazy(r, supports)
	calls := 0
	value, err := lazy.Record(typ.RecordOf("Account"), []Field{
		{Name: "ID", Resolve: counted(5, &calls)},
		{Name: "Name", Resolve: counted("x", &calls)},
	})
	require.NoError(t, err)
	record, ok := value.(*LazyRecord)
	require.True(t, ok)
	assert.Equal(t, 0, calls)
	assert.Equal(t, []string{"ID", "Name"}, record.Fields())

	id, err := record.Get("ID")
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	_, _ = record.Get("ID")
	assert.Equal(t, 1, calls)

	missing, err := record.Get("Ratio")
	require.NoError(t, err)
	assert.Nil(t, missing)
	_, err = record.Get("Unknown")
	assert.True(t, errors.Is(err, errs.UnexpectedValue))

	materialized, err := record.Materialize()
	require.NoError(t, err)
	assert.Equal(t, &Account{ID: 5, Name: "x"}, materialized)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, supports.Len())

	nested, err := lazy.List(typ.ListOf(typ.RecordOf("Account")), []Thunk{Value(record)})
	require.NoError(t, err)
	list := nested.(*LazyList)
	assert.Equal(t, 1, list.Len())
	items, err := list.Materialize()
	require.NoError(t, err)
	assert.Equal(t, []*Account{{ID: 5, Name: "x"}}, items)
	_, err = list.Get(3)
	assert.True(t, errors.Is(err, errs.InvalidArgument))

	dictValue, err := lazy.Dict(typ.DictOf(typ.StringType(), typ.FloatType()), []string{"a", "b"}, []Thunk{Value(1), Value(2.5)})
	require.NoError(t, err)
	dict := dictValue.(*LazyDict)
	b, ok, err := dict.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, b)
	all, err := dict.Materialize()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 1, "b": 2.5}, all)
}
