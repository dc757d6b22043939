package tags

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tagly/format/text"
	"github.com/viant/typecodec/errs"
)

func TestParseCodec(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      *Codec
	}{
		{
			description: "type with comas",
			input:       "type=?array<string, list<int>>,omitempty",
			expect:      &Codec{Type: "?array<string, list<int>>", OmitEmpty: true, Present: true},
		},
		{
			description: "quoted type",
			input:       "type='int|string', formatter=money",
			expect:      &Codec{Type: "int|string", Formatter: "money", Present: true},
		},
		{
			description: "groups",
			input:       "groups=admin|audit,name=user_id",
			expect:      &Codec{Groups: []string{"admin", "audit"}, Name: "user_id", Present: true},
		},
		{
			description: "flags only",
			input:       ",omitempty",
			expect:      &Codec{OmitEmpty: true, Present: true},
		},
		{
			description: "empty",
			input:       "",
			expect:      &Codec{Present: true},
		},
	}
	for _, testCase := range testCases {
		actual, err := ParseCodec(testCase.input)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}

	_, err := ParseCodec("bogus=1")
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

type account struct {
	ID       int
	UserName string
	Email    string  `json:"mail,omitempty"`
	Balance  float64 `codec:"name=amount,formatter=money"`
	Secret   string  `json:"-"`
}

func TestResolve(t *testing.T) {
	var testCases = []struct {
		field      string
		caseFormat text.CaseFormat
		key        string
		omitEmpty  bool
		ignore     bool
	}{
		{field: "ID", caseFormat: text.CaseFormatLowerCamel, key: "id"},
		{field: "ID", key: "ID"},
		{field: "UserName", caseFormat: text.CaseFormatLowerUnderscore, key: "user_name"},
		{field: "Email", caseFormat: text.CaseFormatLowerUnderscore, key: "mail", omitEmpty: true},
		{field: "Balance", key: "amount"},
		{field: "Secret", key: "-", ignore: true},
	}
	rType := reflect.TypeOf(account{})
	for _, testCase := range testCases {
		field, ok := rType.FieldByName(testCase.field)
		require.True(t, ok)
		actual, err := Resolve(field, testCase.caseFormat)
		if !assert.NoError(t, err, testCase.field) {
			continue
		}
		assert.Equal(t, testCase.key, actual.Key, testCase.field)
		assert.Equal(t, testCase.omitEmpty, actual.OmitEmpty, testCase.field)
		assert.Equal(t, testCase.ignore, actual.Ignore, testCase.field)
	}

	field, _ := rType.FieldByName("Balance")
	actual, err := Resolve(field, "")
	require.NoError(t, err)
	assert.Equal(t, "money", actual.Codec.Formatter)
}
