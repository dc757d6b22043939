package typecodec

import (
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/cache"
	"github.com/viant/typecodec/decoder"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/gen"
	"github.com/viant/typecodec/hook"
	"github.com/viant/typecodec/instantiate"
	"github.com/viant/typecodec/lexer"
	"github.com/viant/typecodec/program"
	"github.com/viant/typecodec/source"
	"github.com/viant/typecodec/splitter"
	"github.com/viant/typecodec/typ"
)

var arity = map[string]int{
	gen.FnEncode:       1,
	gen.FnEscapeKey:    1,
	gen.FnEnumValue:    2,
	gen.FnFormat:       3,
	gen.FnParse:        3,
	gen.FnEmpty:        1,
	gen.FnArray:        0,
	gen.FnDecode:       3,
	gen.FnDecodeScalar: 2,
	gen.FnDecodeAll:    2,
	gen.FnSplitList:    2,
	gen.FnSplitDict:    2,
	gen.FnIsNull:       2,
	gen.FnSelectUnion:  1,
	gen.FnWalk:         2,
	gen.FnCast:         2,
	gen.FnExpect:       2,
	gen.FnHas:          2,
}

// session runs programs of one public call. It provides the builtins and
// property access of generated programs.
type session struct {
	codec        *Codec
	options      *Options
	mode         string
	src          source.Source
	instantiator *instantiatorCall
	forced       map[string]bool
}

func (c *Codec) newSession(options *Options, mode string, src source.Source) *session {
	var target instantiate.Instantiator = c.eager
	switch {
	case options.Custom != nil:
		target = options.Custom
	case options.Instantiator == InstantiatorLazy:
		target = c.lazy
	}
	return &session{
		codec:        c,
		options:      options,
		mode:         mode,
		src:          src,
		instantiator: &instantiatorCall{codec: c, target: target},
		forced:       map[string]bool{},
	}
}

// program resolves the program of t; force applies once per key and call.
func (s *session) program(direction string, t *typ.Type, lazy bool) (*program.Program, error) {
	mode := s.mode
	if direction == directionDecode && !lazy {
		mode = ModeTree
	}
	key := cache.Key(s.codec.signature(direction, t, lazy, s.options), mode)
	force := s.options.ForceGeneration && !s.forced[key]
	if force {
		s.forced[key] = true
	}
	return s.codec.cache.Program(key, t.String(), force, func() ([]ast.Stmt, error) {
		ctx := gen.NewContext(s.options.Context, s.options.Groups, lazy)
		if direction == directionEncode {
			return s.codec.encoder.Program(t, ctx)
		}
		return s.codec.decoder.Generate(t, ctx)
	})
}

func (s *session) env(vars map[string]interface{}) *program.Env {
	vars[gen.VarContext] = s.options.Context
	vars[gen.VarInstantiator] = s.instantiator
	return &program.Env{Builtins: s, Accessor: s, Vars: vars}
}

func (s *session) decode(t *typ.Type, boundary splitter.Boundary) (interface{}, error) {
	if s.options.Custom == nil {
		switch s.options.Instantiator {
		case InstantiatorEager, InstantiatorLazy:
		default:
			return nil, errs.New(errs.InvalidArgument, "unknown instantiator %q", s.options.Instantiator)
		}
	}
	return s.decodeBoundary(s.src, t, boundary)
}

func (s *session) decodeBoundary(src source.Source, t *typ.Type, boundary splitter.Boundary) (interface{}, error) {
	prog, err := s.program(directionDecode, t, s.options.Lazy)
	if err != nil {
		return nil, err
	}
	return prog.Run(s.env(map[string]interface{}{
		gen.VarSource:   src,
		gen.VarBoundary: boundary,
		gen.VarData:     nil,
	}))
}

func (s *session) walk(data interface{}, t *typ.Type) (interface{}, error) {
	prog, err := s.program(directionDecode, t, false)
	if err != nil {
		return nil, err
	}
	return prog.Run(s.env(map[string]interface{}{
		gen.VarSource:   nil,
		gen.VarBoundary: nil,
		gen.VarData:     data,
	}))
}

// Call dispatches builtins.
func (s *session) Call(name string, args []interface{}) (interface{}, error) {
	expected, ok := arity[name]
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "unknown builtin %s", name)
	}
	if len(args) != expected {
		return nil, errs.New(errs.InvalidArgument, "%s expects %d arguments, got %d", name, expected, len(args))
	}
	switch name {
	case gen.FnEncode:
		return s.encode(args[0])
	case gen.FnEscapeKey:
		if key, ok := args[0].(string); ok {
			return s.encode(key)
		}
		return s.encode(fmt.Sprint(args[0]))
	case gen.FnEnumValue:
		enum, ok := s.codec.registry.Enum(fmt.Sprint(args[0]))
		if !ok {
			return nil, errs.New(errs.InvalidType, "unknown enum %v", args[0])
		}
		return enum.Value(args[1])
	case gen.FnFormat, gen.FnParse:
		return s.format(name, fmt.Sprint(args[0]), args[1], args[2])
	case gen.FnEmpty:
		return isEmpty(args[0]), nil
	case gen.FnArray:
		return program.NewArray(), nil
	case gen.FnCast:
		return s.cast(args[0], fmt.Sprint(args[1]))
	case gen.FnExpect:
		return nil, expect(args[0], fmt.Sprint(args[1]))
	case gen.FnHas:
		dict, ok := args[0].(map[string]interface{})
		if !ok {
			return false, nil
		}
		_, ok = dict[fmt.Sprint(args[1])]
		return ok, nil
	case gen.FnSelectUnion:
		return s.selectUnion(fmt.Sprint(args[0]))
	case gen.FnWalk:
		t, err := s.codec.registry.Parse(fmt.Sprint(args[1]))
		if err != nil {
			return nil, err
		}
		return s.walk(args[0], t)
	}
	src, ok := args[0].(source.Source)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "%s expects a source, got %T", name, args[0])
	}
	boundary, err := boundaryOf(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	switch name {
	case gen.FnDecode:
		t, err := s.codec.registry.Parse(fmt.Sprint(args[1]))
		if err != nil {
			return nil, err
		}
		return s.decodeBoundary(src, t, boundary)
	case gen.FnDecodeScalar, gen.FnDecodeAll:
		return decoder.Decode(src, boundary.Offset, boundary.Length, s.options.DecodeFlags)
	case gen.FnSplitList, gen.FnSplitDict:
		return split(name, src, boundary)
	case gen.FnIsNull:
		return isNullBoundary(src, boundary)
	}
	return nil, errs.New(errs.InvalidArgument, "unknown builtin %s", name)
}

func (s *session) encode(value interface{}) (string, error) {
	var data []byte
	var err error
	if s.options.EncodeFlags.EscapeHTML {
		data, err = json.Marshal(value)
	} else {
		data, err = json.MarshalWithOption(value, json.DisableHTMLEscape())
	}
	if err != nil {
		return "", errs.Wrap(errs.UnexpectedValue, err, "failed to encode %T", value)
	}
	return string(data), nil
}

func (s *session) format(builtin, name string, value, ctx interface{}) (interface{}, error) {
	formatter, ok := s.codec.hooks.Formatter(name)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "formatter %s is not registered", name)
	}
	var values map[string]interface{}
	if text, ok := ctx.(string); ok && text != "" {
		if err := json.Unmarshal([]byte(text), &values); err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, err, "invalid %s context", name)
		}
	}
	if builtin == gen.FnFormat {
		return formatter.Format(value, values)
	}
	parser, ok := formatter.(hook.Parser)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "formatter %s cannot parse", name)
	}
	return parser.Parse(value, values)
}

func (s *session) selectUnion(canonical string) (interface{}, error) {
	selected, ok := s.options.UnionSelector[canonical]
	if !ok || selected == "" {
		return nil, errs.New(errs.UnexpectedValue, "cannot resolve union %s, set union_selector['%s']", canonical, canonical)
	}
	return selected, nil
}

func (s *session) cast(value interface{}, typeName string) (interface{}, error) {
	t, err := s.codec.registry.Parse(typeName)
	if err != nil {
		return nil, err
	}
	if program.IsNull(value) {
		return nil, errs.New(errs.UnexpectedValue, "expected %s, got null", typeName)
	}
	flags := s.options.DecodeFlags
	switch t.Kind() {
	case typ.Bool:
		if actual, ok := value.(bool); ok {
			return actual, nil
		}
	case typ.Int:
		switch actual := value.(type) {
		case int:
			return actual, nil
		case float64:
			if actual == math.Trunc(actual) && math.Abs(actual) < math.MaxInt64 {
				return int(actual), nil
			}
		case json.Number:
			if flags.UseNumber {
				if _, err := actual.Int64(); err == nil {
					return actual, nil
				}
			}
			if i, err := actual.Int64(); err == nil {
				return int(i), nil
			}
		case string:
			if flags.BigIntAsString && isInteger(actual) {
				return actual, nil
			}
		}
	case typ.Float:
		switch actual := value.(type) {
		case float64:
			return actual, nil
		case int:
			return float64(actual), nil
		case json.Number:
			if flags.UseNumber {
				return actual, nil
			}
			if f, err := actual.Float64(); err == nil {
				return f, nil
			}
		}
	case typ.String:
		if actual, ok := value.(string); ok {
			return actual, nil
		}
	case typ.Enum:
		enum, ok := s.codec.registry.Enum(t.Name())
		if !ok {
			return nil, errs.New(errs.InvalidType, "unknown enum %s", t.Name())
		}
		if number, ok := value.(json.Number); ok {
			i, err := number.Int64()
			if err != nil {
				return nil, errs.Wrap(errs.UnexpectedValue, err, "expected %s", typeName)
			}
			value = int(i)
		}
		return enum.From(value)
	}
	return nil, errs.New(errs.UnexpectedValue, "expected %s, got %T", typeName, value)
}

// Property reads named properties of boundaries and record values.
func (s *session) Property(value interface{}, name string) (interface{}, error) {
	switch actual := value.(type) {
	case splitter.Boundary:
		return boundaryProperty(actual, name)
	case *splitter.Boundary:
		return boundaryProperty(*actual, name)
	case *instantiate.LazyRecord:
		ret, err := actual.Get(name)
		if err != nil {
			return nil, err
		}
		if _, ok := ret.(*instantiate.LazyRecord); ok {
			return ret, nil
		}
		if materializer, ok := ret.(instantiate.Materializer); ok {
			return materializer.Materialize()
		}
		return ret, nil
	}
	if program.IsNull(value) {
		return nil, errs.New(errs.UnexpectedValue, "cannot read %s of null", name)
	}
	rType := reflect.TypeOf(value)
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	recordName, kind, ok := s.codec.registry.TypeName(rType)
	if !ok || kind != typ.Record {
		return nil, errs.New(errs.UnexpectedValue, "%T has no property %s", value, name)
	}
	record, err := s.codec.registry.Describe(recordName)
	if err != nil {
		return nil, err
	}
	field, ok := record.Field(name)
	if !ok {
		return nil, errs.New(errs.UnexpectedValue, "%s has no field %s", recordName, name)
	}
	ptr, err := record.Pointer(value)
	if err != nil {
		return nil, err
	}
	return field.Value(ptr), nil
}

func boundaryProperty(boundary splitter.Boundary, name string) (interface{}, error) {
	switch name {
	case "key":
		if !boundary.HasKey {
			return nil, nil
		}
		return boundary.Key, nil
	case "offset":
		return int(boundary.Offset), nil
	case "length":
		return int(boundary.Length), nil
	}
	return nil, errs.New(errs.UnexpectedValue, "boundary has no property %s", name)
}

func boundaryOf(value interface{}) (splitter.Boundary, error) {
	switch actual := value.(type) {
	case splitter.Boundary:
		return actual, nil
	case *splitter.Boundary:
		if actual != nil {
			return *actual, nil
		}
	}
	return splitter.Boundary{}, errs.New(errs.InvalidArgument, "expected boundary, got %T", value)
}

func split(name string, src source.Source, boundary splitter.Boundary) (interface{}, error) {
	var iterator *splitter.Iterator
	var err error
	if name == gen.FnSplitDict {
		iterator, err = splitter.Dict(src, boundary.Offset, boundary.Length, splitter.WithValidation())
	} else {
		iterator, err = splitter.List(src, boundary.Offset, boundary.Length, splitter.WithValidation())
	}
	if err != nil || iterator == nil {
		return nil, err
	}
	boundaries, err := iterator.Collect()
	if err != nil {
		return nil, err
	}
	ret := make([]interface{}, len(boundaries))
	for i, item := range boundaries {
		ret[i] = item
	}
	return ret, nil
}

func isNullBoundary(src source.Source, boundary splitter.Boundary) (bool, error) {
	lex, err := lexer.New(src, boundary.Offset, boundary.Length)
	if err != nil {
		return false, err
	}
	token, err := lex.Next()
	if err == io.EOF {
		return false, errs.New(errs.InvalidResource, "empty JSON value")
	}
	if err != nil {
		return false, err
	}
	if token.Text != "null" {
		return false, nil
	}
	if _, err = lex.Next(); err != io.EOF {
		if err != nil {
			return false, err
		}
		return false, errs.New(errs.InvalidResource, "unexpected data after null at %d", token.End())
	}
	return true, nil
}

func expect(value interface{}, shape string) error {
	switch shape {
	case "list":
		if _, ok := value.([]interface{}); ok {
			return nil
		}
	case "dict":
		if _, ok := value.(map[string]interface{}); ok {
			return nil
		}
	}
	return errs.New(errs.UnexpectedValue, "expected %s, got %T", shape, value)
}

func isEmpty(value interface{}) bool {
	if program.IsNull(value) {
		return true
	}
	rValue := reflect.ValueOf(value)
	switch rValue.Kind() {
	case reflect.Slice, reflect.Map, reflect.String, reflect.Array:
		return rValue.Len() == 0
	}
	return rValue.IsZero()
}

func isInteger(text string) bool {
	if len(text) > 0 && text[0] == '-' {
		text = text[1:]
	}
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

// instantiatorCall exposes an instantiator to programs; collections arrive as
// arrays of closures (lazy programs) or decoded values (tree programs).
type instantiatorCall struct {
	codec  *Codec
	target instantiate.Instantiator
}

func (i *instantiatorCall) Call(name string, args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, errs.New(errs.InvalidArgument, "instantiator.%s expects 2 arguments, got %d", name, len(args))
	}
	t, err := i.codec.registry.Parse(fmt.Sprint(args[0]))
	if err != nil {
		return nil, err
	}
	items, ok := args[1].(*program.Array)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "instantiator.%s expects an array, got %T", name, args[1])
	}
	keys, values := items.Keys(), items.Values()
	switch name {
	case "record":
		fields := make([]instantiate.Field, len(values))
		for j, value := range values {
			fields[j] = instantiate.Field{Name: fmt.Sprint(keys[j]), Resolve: thunkOf(value)}
		}
		return i.target.Record(t, fields)
	case "list":
		thunks := make([]instantiate.Thunk, len(values))
		for j, value := range values {
			thunks[j] = thunkOf(value)
		}
		return i.target.List(t, thunks)
	case "dict":
		names := make([]string, len(values))
		thunks := make([]instantiate.Thunk, len(values))
		for j, value := range values {
			names[j] = fmt.Sprint(keys[j])
			thunks[j] = thunkOf(value)
		}
		return i.target.Dict(t, names, thunks)
	}
	return nil, errs.New(errs.InvalidArgument, "unknown instantiator method %s", name)
}

func thunkOf(value interface{}) instantiate.Thunk {
	if fn, ok := value.(*program.Func); ok {
		return func() (interface{}, error) { return fn.Invoke() }
	}
	return instantiate.Value(value)
}
