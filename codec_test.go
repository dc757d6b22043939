package typecodec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/hook"
	"github.com/viant/typecodec/instantiate"
)

type Status string

type Address struct {
	City string
	Zip  *int
}

type User struct {
	ID     int
	Name   string
	Email  string `json:",omitempty"`
	Tags   []string
	Scores map[string]float64
	Home   *Address
	Status Status
}

type Point struct {
	X int
	Y *int
}

type Event struct {
	Name string
	At   string `codec:"formatter=upper"`
}

type upper struct{}

func (upper) Format(value interface{}, ctx map[string]interface{}) (interface{}, error) {
	return strings.ToUpper(value.(string)), nil
}

func (upper) Parse(value interface{}, ctx map[string]interface{}) (interface{}, error) {
	return strings.ToLower(value.(string)), nil
}

const userJSON = `{"id":1,"name":"Ann","email":"ann@example.com","tags":["a","b"],"scores":{"math":9.5},"home":{"city":"Paris","zip":null},"status":"active"}`

func newCodec(t *testing.T, opts ...Option) *Codec {
	codec, err := New(opts...)
	require.NoError(t, err)
	require.NoError(t, codec.RegisterEnum("Status", Status(""), "active", "blocked"))
	require.NoError(t, codec.Register("Address", Address{}))
	require.NoError(t, codec.Register("User", User{}))
	require.NoError(t, codec.Register("Point", Point{}))
	require.NoError(t, codec.Register("Event", Event{}))
	return codec
}

func newUser() *User {
	return &User{
		ID:     1,
		Name:   "Ann",
		Email:  "ann@example.com",
		Tags:   []string{"a", "b"},
		Scores: map[string]float64{"math": 9.5},
		Home:   &Address{City: "Paris"},
		Status: "active",
	}
}

func TestCodec_Encode(t *testing.T) {
	codec := newCodec(t)
	var testCases = []struct {
		description string
		value       interface{}
		typeExpr    string
		expect      string
	}{
		{description: "record", value: newUser(), typeExpr: "User", expect: userJSON},
		{description: "omit empty", value: &User{Name: "Bob", Status: "blocked"}, typeExpr: "User", expect: `{"id":0,"name":"Bob","tags":[],"scores":{},"home":null,"status":"blocked"}`},
		{description: "nullable null", value: nil, typeExpr: "?int", expect: `null`},
		{description: "nullable int", value: 5, typeExpr: "?int", expect: `5`},
		{description: "list of records", value: []Point{{X: 1}, {X: 2}}, typeExpr: "list<Point>", expect: `[{"x":1,"y":null},{"x":2,"y":null}]`},
		{description: "dict", value: map[string]int{"b": 2, "a": 1}, typeExpr: "array<string,int>", expect: `{"a":1,"b":2}`},
		{description: "html", value: "<a>", typeExpr: "string", expect: `"<a>"`},
		{description: "html ampersand", value: "<a>&", typeExpr: "string", expect: `"<a>&"`},
		{description: "html in record", value: &Point{X: 1}, typeExpr: "Point", expect: `{"x":1,"y":null}`},
	}
	for _, testCase := range testCases {
		actual, err := codec.Encode(testCase.value, testCase.typeExpr)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, string(actual), testCase.description)
	}

	escaped, err := codec.Encode("<a>&", "string", WithJSONEncodeFlags(EncodeFlags{EscapeHTML: true}))
	require.NoError(t, err)
	assert.Equal(t, `"\u003ca\u003e\u0026"`, string(escaped))

	keys, err := codec.Encode(map[string]string{"<k>": "&"}, "array<string,string>")
	require.NoError(t, err)
	assert.Equal(t, `{"<k>":"&"}`, string(keys))

	value, err := codec.EncodeValue(newUser())
	require.NoError(t, err)
	assert.Equal(t, userJSON, string(value))

	buffer := &bytes.Buffer{}
	require.NoError(t, codec.EncodeTo(buffer, newUser(), "User"))
	assert.Equal(t, userJSON, buffer.String())
}

func TestCodec_RoundTrip(t *testing.T) {
	var testCases = []struct {
		description string
		options     []Option
	}{
		{description: "lazy program"},
		{description: "tree program", options: []Option{WithLazy(false)}},
	}
	for _, testCase := range testCases {
		codec := newCodec(t, testCase.options...)
		data, err := codec.Encode(newUser(), "User")
		require.NoError(t, err, testCase.description)
		decoded, err := codec.Decode(data, "User")
		require.NoError(t, err, testCase.description)
		if diff := cmp.Diff(newUser(), decoded); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", testCase.description, diff)
		}
	}
}

func TestCodec_DecodeSources(t *testing.T) {
	codec := newCodec(t)
	decoded, err := codec.DecodeString(`[1,2,3]`, "list<int>")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, decoded)

	decoded, err = codec.DecodeReader(strings.NewReader(`{"a":1.5}`), "array<string,float>")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 1.5}, decoded)

	decoded, err = codec.DecodeResource(bytes.NewReader([]byte(`[{"x":1,"y":2}]`)), "list<Point>")
	require.NoError(t, err)
	two := 2
	assert.Equal(t, []*Point{{X: 1, Y: &two}}, decoded)

	decoded, err = codec.Decode([]byte(`[10,20,30]`), "int", WithBoundary(4, 2))
	require.NoError(t, err)
	assert.Equal(t, 20, decoded)

	user := User{}
	require.NoError(t, codec.DecodeInto([]byte(userJSON), &user))
	assert.Equal(t, *newUser(), user)
}

func TestCodec_Nullability(t *testing.T) {
	codec := newCodec(t)
	for _, options := range [][]Option{nil, {WithLazy(false)}} {
		_, err := codec.Decode([]byte(`null`), "int", options...)
		assert.True(t, errors.Is(err, errs.UnexpectedValue), "%v", err)

		value, err := codec.Decode([]byte(`null`), "?int", options...)
		require.NoError(t, err)
		assert.Nil(t, value)

		_, err = codec.Decode([]byte(`{"city":null}`), "Address", options...)
		assert.True(t, errors.Is(err, errs.UnexpectedValue), "%v", err)

		_, err = codec.Decode([]byte(`"x"`), "int", options...)
		assert.True(t, errors.Is(err, errs.UnexpectedValue), "%v", err)

		_, err = codec.Decode([]byte(`"unknown"`), "Status", options...)
		assert.True(t, errors.Is(err, errs.UnexpectedValue), "%v", err)
	}
}

func TestCodec_Union(t *testing.T) {
	codec := newCodec(t)
	_, err := codec.Decode([]byte(`1`), "int|string")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.UnexpectedValue))
	assert.Contains(t, err.Error(), "union_selector['int|string']")

	for _, options := range [][]Option{nil, {WithLazy(false)}} {
		options = append(options, WithUnionSelector(map[string]string{"int|string": "int"}))
		value, err := codec.Decode([]byte(`1`), "int|string", options...)
		require.NoError(t, err)
		assert.Equal(t, 1, value)
	}

	value, err := codec.Decode([]byte(`null`), "int|string|null")
	require.NoError(t, err)
	assert.Nil(t, value)

	_, err = codec.Encode(1, "int|string")
	assert.True(t, errors.Is(err, errs.UnsupportedType))
}

func TestCodec_Invalid(t *testing.T) {
	codec := newCodec(t)
	_, err := codec.Decode([]byte(`[1,2`), "list<int>")
	assert.True(t, errors.Is(err, errs.InvalidResource), "%v", err)

	_, err = codec.Decode([]byte(`[1]`), "list<int", WithLazy(false))
	assert.True(t, errors.Is(err, errs.InvalidType), "%v", err)

	_, err = codec.Decode([]byte(`[1]`), "list<int>", WithInstantiator("custom"))
	assert.True(t, errors.Is(err, errs.InvalidArgument), "%v", err)

	_, err = codec.Decode([]byte(`{"a":1}`), "list<int>", WithLazy(false))
	assert.True(t, errors.Is(err, errs.UnexpectedValue), "%v", err)

	var truncated = []struct {
		input    string
		typeExpr string
	}{
		{input: `[tru]`, typeExpr: "list<bool>"},
		{input: `nul`, typeExpr: "?int"},
		{input: `fals`, typeExpr: "bool"},
		{input: `{"a":fals}`, typeExpr: "array<string,bool>"},
		{input: `{"city":nul}`, typeExpr: "Address"},
		{input: "[1\xBB]", typeExpr: "list<int>"},
	}
	for _, testCase := range truncated {
		for _, lazy := range []bool{true, false} {
			_, err = codec.Decode([]byte(testCase.input), testCase.typeExpr, WithLazy(lazy))
			assert.True(t, errors.Is(err, errs.InvalidResource), "%s lazy=%v: %v", testCase.input, lazy, err)
		}
	}
}

func TestCodec_LazyInstantiator(t *testing.T) {
	codec := newCodec(t, WithInstantiator(InstantiatorLazy))
	decoded, err := codec.Decode([]byte(userJSON), "User")
	require.NoError(t, err)
	record, ok := decoded.(*instantiate.LazyRecord)
	require.True(t, ok, "%T", decoded)
	name, err := record.Get("Name")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	materialized, err := record.Materialize()
	require.NoError(t, err)
	assert.Equal(t, newUser(), materialized)

	encoded, err := codec.Encode(record, "User")
	require.NoError(t, err)
	assert.Equal(t, userJSON, string(encoded))
}

func TestCodec_Hooks(t *testing.T) {
	codec := newCodec(t,
		WithFormatter("upper", upper{}),
		WithHook("User::Email", hook.FieldFunc(func(site *hook.Site) (*hook.Override, error) {
			return &hook.Override{Skip: true}, nil
		})),
	)
	encoded, err := codec.Encode(&Event{Name: "lunch", At: "noon"}, "Event")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"lunch","at":"NOON"}`, string(encoded))

	decoded, err := codec.Decode(encoded, "Event")
	require.NoError(t, err)
	assert.Equal(t, &Event{Name: "lunch", At: "noon"}, decoded)

	encoded, err = codec.Encode(newUser(), "User")
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "email")

	_, err = New(WithHook("User::", hook.FieldFunc(func(site *hook.Site) (*hook.Override, error) { return nil, nil })))
	assert.True(t, errors.Is(err, errs.InvalidArgument), "%v", err)
}

func TestCodec_CacheReuse(t *testing.T) {
	dir := t.TempDir()
	codec := newCodec(t, WithCacheDir(dir))
	for i := 0; i < 2; i++ {
		_, err := codec.Encode(&Point{X: i}, "Point")
		require.NoError(t, err)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, codec.Generations())

	require.NoError(t, codec.EncodeTo(&bytes.Buffer{}, &Point{}, "Point"))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "stream mode has its own program")

	_, err = codec.Encode(&Point{}, "Point", WithForceGeneration(true))
	require.NoError(t, err)
	assert.Equal(t, 3, codec.Generations())

	reopened := newCodec(t, WithCacheDir(dir))
	actual, err := reopened.Encode(&Point{X: 7}, "Point")
	require.NoError(t, err)
	assert.Equal(t, `{"x":7,"y":null}`, string(actual))
	assert.Equal(t, 0, reopened.Generations())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
union_selector:
  "int|string": int
instantiator: lazy
groups: [admin]
lazy: false
json_encode_flags:
  escape_html: true
`), 0o644))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"int|string": "int"}, config.UnionSelector)
	assert.Equal(t, []string{"admin"}, config.Groups)
	require.NotNil(t, config.Lazy)
	assert.False(t, *config.Lazy)

	codec := newCodec(t, config.Options()...)
	value, err := codec.Decode([]byte(`1`), "int|string")
	require.NoError(t, err)
	assert.Equal(t, 1, value)
	assert.Equal(t, InstantiatorLazy, codec.options.Instantiator)
	assert.True(t, codec.options.EncodeFlags.EscapeHTML)

	require.NoError(t, os.WriteFile(path, []byte("instantiator: other\n"), 0o644))
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, errs.InvalidArgument))

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, errs.ResourceRead))
}
