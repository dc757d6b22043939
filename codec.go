// Package typecodec encodes and decodes JSON through programs generated per
// type. A program is generated once per type and mode, persisted and reused.
package typecodec

import (
	"bytes"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/cache"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/gen"
	"github.com/viant/typecodec/hook"
	"github.com/viant/typecodec/instantiate"
	"github.com/viant/typecodec/program"
	"github.com/viant/typecodec/registry"
	"github.com/viant/typecodec/source"
	"github.com/viant/typecodec/splitter"
	"github.com/viant/typecodec/typ"
)

// Program modes.
const (
	ModeString   = "string"
	ModeStream   = "stream"
	ModeResource = "resource"
	ModeTree     = "tree"
)

const (
	directionEncode = "encode"
	directionDecode = "decode"
)

var bufferPool = sync.Pool{New: func() interface{} { return bytes.NewBuffer(make([]byte, 0, 256)) }}

// Codec encodes and decodes registered types.
type Codec struct {
	options  Options
	registry *registry.Registry
	hooks    *hook.Registry
	cache    *cache.Facade
	encoder  *gen.Encoder
	decoder  *gen.Decoder
	supports *instantiate.Supports
	eager    *instantiate.Eager
	lazy     *instantiate.Lazy
}

// New creates a codec.
func New(opts ...Option) (*Codec, error) {
	options := resolveOptions(defaultOptions(), opts)
	collected := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(collected)
		}
	}
	hooks := hook.New()
	for _, binding := range collected.hooks {
		if err := hooks.Register(binding.scope, binding.handler); err != nil {
			return nil, err
		}
	}
	for name, formatter := range collected.formatters {
		if err := hooks.AddFormatter(name, formatter); err != nil {
			return nil, err
		}
	}
	r := registry.New(options.CaseFormat, typ.NewCache(1024))
	supports := instantiate.NewSupports(r)
	ret := &Codec{
		options:  options,
		registry: r,
		hooks:    hooks,
		cache:    cache.New(options.CacheDir, options.Logger, options.CacheSize),
		encoder:  gen.NewEncoder(r, hooks),
		decoder:  gen.NewDecoder(r, hooks),
		supports: supports,
		eager:    instantiate.NewEager(r, supports),
		lazy:     instantiate.NewLazy(r, supports),
	}
	return ret, nil
}

// Register registers a record identity; sample is a struct or struct pointer.
func (c *Codec) Register(name string, sample interface{}, opts ...registry.Option) error {
	return c.registry.Register(name, sample, opts...)
}

// RegisterEnum registers a string or integer backed enum; register enums
// before parsing type strings that reference them.
func (c *Codec) RegisterEnum(name string, sample interface{}, cases ...interface{}) error {
	return c.registry.RegisterEnum(name, sample, cases...)
}

// Hooks returns the hook registry.
func (c *Codec) Hooks() *hook.Registry { return c.hooks }

// Generations returns how many programs were generated.
func (c *Codec) Generations() int { return c.cache.Generations() }

// Encode encodes value as the type expression.
func (c *Codec) Encode(value interface{}, typeExpr string, opts ...Option) ([]byte, error) {
	t, err := c.registry.Parse(typeExpr)
	if err != nil {
		return nil, err
	}
	return c.encode(value, t, opts)
}

// EncodeValue encodes value as the type of its Go type.
func (c *Codec) EncodeValue(value interface{}, opts ...Option) ([]byte, error) {
	if value == nil {
		return []byte("null"), nil
	}
	t, err := c.registry.TypeOf(value)
	if err != nil {
		return nil, err
	}
	return c.encode(value, t, opts)
}

func (c *Codec) encode(value interface{}, t *typ.Type, opts []Option) ([]byte, error) {
	buffer := bufferPool.Get().(*bytes.Buffer)
	buffer.Reset()
	defer bufferPool.Put(buffer)
	if err := c.encodeTo(buffer, value, t, ModeString, opts); err != nil {
		return nil, err
	}
	return append([]byte(nil), buffer.Bytes()...), nil
}

// EncodeTo streams the encoding of value as the type expression to w.
func (c *Codec) EncodeTo(w io.Writer, value interface{}, typeExpr string, opts ...Option) error {
	t, err := c.registry.Parse(typeExpr)
	if err != nil {
		return err
	}
	return c.encodeTo(w, value, t, ModeStream, opts)
}

// Decode decodes data as the type expression.
func (c *Codec) Decode(data []byte, typeExpr string, opts ...Option) (interface{}, error) {
	return c.decode(source.Bytes(data), typeExpr, ModeString, opts)
}

// DecodeString decodes text as the type expression.
func (c *Codec) DecodeString(text string, typeExpr string, opts ...Option) (interface{}, error) {
	return c.decode(source.String(text), typeExpr, ModeString, opts)
}

// DecodeReader decodes a stream as the type expression.
func (c *Codec) DecodeReader(reader io.Reader, typeExpr string, opts ...Option) (interface{}, error) {
	src, err := source.Stream(reader)
	if err != nil {
		return nil, err
	}
	return c.decode(src, typeExpr, ModeStream, opts)
}

// DecodeResource decodes a seekable resource as the type expression. The
// resource is repositioned while decoding and must not be shared.
func (c *Codec) DecodeResource(resource io.ReadSeeker, typeExpr string, opts ...Option) (interface{}, error) {
	src, err := source.Seekable(resource)
	if err != nil {
		return nil, err
	}
	return c.decode(src, typeExpr, ModeResource, opts)
}

// DecodeInto decodes data into dest, a non nil pointer; the type is derived from dest.
func (c *Codec) DecodeInto(data []byte, dest interface{}, opts ...Option) error {
	rValue := reflect.ValueOf(dest)
	if rValue.Kind() != reflect.Ptr || rValue.IsNil() {
		return errs.New(errs.InvalidArgument, "destination must be a non nil pointer, got %T", dest)
	}
	t, err := typ.FromReflect(rValue.Type().Elem(), c.registry)
	if err != nil {
		return err
	}
	opts = append(opts, WithInstantiator(InstantiatorEager))
	value, err := c.decode(source.Bytes(data), t.String(), ModeString, opts)
	if err != nil {
		return err
	}
	converted, err := instantiate.Convert(value, rValue.Type().Elem())
	if err != nil {
		return err
	}
	rValue.Elem().Set(converted)
	return nil
}

func (c *Codec) decode(src source.Source, typeExpr string, mode string, opts []Option) (interface{}, error) {
	t, err := c.registry.Parse(typeExpr)
	if err != nil {
		return nil, err
	}
	options := resolveOptions(c.options, opts)
	s := c.newSession(&options, mode, src)
	return s.decode(t, splitter.Boundary{Offset: options.Offset, Length: options.Length})
}

func (c *Codec) encodeTo(w io.Writer, value interface{}, t *typ.Type, mode string, opts []Option) error {
	options := resolveOptions(c.options, opts)
	s := c.newSession(&options, mode, nil)
	prog, err := s.program(directionEncode, t, false)
	if err != nil {
		return err
	}
	_, err = prog.Run(&program.Env{Builtins: s, Accessor: s, Vars: map[string]interface{}{
		gen.VarValue:   value,
		gen.VarContext: options.Context,
		ast.OutVar:     &sink{writer: w},
	}})
	return err
}

// signature identifies everything a generated program depends on.
func (c *Codec) signature(direction string, t *typ.Type, lazy bool, options *Options) string {
	groups := append([]string(nil), options.Groups...)
	sort.Strings(groups)
	ctx, _ := json.Marshal(options.Context)
	strategy := "tree"
	if lazy {
		strategy = "lazy"
	}
	return strings.Join([]string{
		direction,
		t.String(),
		strategy,
		strings.Join(groups, ","),
		c.hooks.Signature(),
		string(ctx),
		string(c.registry.CaseFormat()),
	}, "|")
}

type sink struct {
	writer io.Writer
}

func (s *sink) Call(name string, args []interface{}) (interface{}, error) {
	if name != "write" || len(args) != 1 {
		return nil, errs.New(errs.InvalidArgument, "unsupported out.%s/%d", name, len(args))
	}
	var err error
	switch actual := args[0].(type) {
	case string:
		_, err = io.WriteString(s.writer, actual)
	case []byte:
		_, err = s.writer.Write(actual)
	default:
		return nil, errs.New(errs.UnexpectedValue, "cannot write %T", actual)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ResourceRead, err, "failed to write")
	}
	return nil, nil
}
