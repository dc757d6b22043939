package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceVisitorOf(t *testing.T) {
	mySlice := []interface{}{"a", 1, 3.14, true}

	visit, err := SliceVisitorOf[any](mySlice)
	assert.NoError(t, err)
	clone := []interface{}{}
	err = visit(func(index int, element interface{}) (bool, error) {
		clone = append(clone, element)
		return true, nil
	})
	assert.NoError(t, err)
	assert.EqualValues(t, mySlice, clone)

	_, err = SliceVisitorOf[int](mySlice)
	assert.Error(t, err)
}

type pair struct{ keys, values []any }

func (p *pair) Visit(f func(key, element any) (bool, error)) error {
	for i, key := range p.keys {
		if next, err := f(key, p.values[i]); err != nil || !next {
			return err
		}
	}
	return nil
}

func TestOf(t *testing.T) {
	type point struct{ X int }
	var testCases = []struct {
		description string
		input       interface{}
		expectKeys  []interface{}
		expectErr   bool
	}{
		{description: "nil", input: nil},
		{description: "nil slice pointer", input: (*[]int)(nil)},
		{description: "typed slice", input: []string{"a", "b"}, expectKeys: []interface{}{0, 1}},
		{description: "struct slice", input: []point{{1}, {2}}, expectKeys: []interface{}{0, 1}},
		{description: "array", input: [2]int{4, 5}, expectKeys: []interface{}{0, 1}},
		{description: "map in key order", input: map[string]int{"b": 1, "a": 2}, expectKeys: []interface{}{"a", "b"}},
		{description: "int keyed map", input: map[int]bool{10: true, 2: false}, expectKeys: []interface{}{2, 10}},
		{description: "visitable", input: &pair{keys: []any{"z", "y"}, values: []any{1, 2}}, expectKeys: []interface{}{"z", "y"}},
		{description: "scalar", input: 12, expectErr: true},
	}
	for _, testCase := range testCases {
		visit, err := Of(testCase.input)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		var keys []interface{}
		err = visit(func(key any, element any) (bool, error) {
			keys = append(keys, key)
			return true, nil
		})
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expectKeys, keys, testCase.description)
	}
}

func TestOf_Stop(t *testing.T) {
	visit, err := Of([]int{1, 2, 3})
	assert.NoError(t, err)
	count := 0
	err = visit(func(key any, element any) (bool, error) {
		count++
		return count < 2, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
