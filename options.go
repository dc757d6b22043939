package typecodec

import (
	"github.com/viant/tagly/format/text"
	"github.com/viant/typecodec/decoder"
	"github.com/viant/typecodec/hook"
	"github.com/viant/typecodec/instantiate"
	"go.uber.org/zap"
)

// Instantiator names.
const (
	InstantiatorEager = "eager"
	InstantiatorLazy  = "lazy"
)

// EncodeFlags controls scalar encoding.
type EncodeFlags struct {
	// EscapeHTML escapes <, > and & inside strings.
	EscapeHTML bool `yaml:"escape_html"`
}

// Option mutates options.
type Option interface{ apply(*Options) }

type optionFn func(*Options)

func (o optionFn) apply(opts *Options) { o(opts) }

type binding struct {
	scope   string
	handler hook.Handler
}

// Options defines codec behavior. Hooks, formatters, cache dir, case format and
// logger configure a Codec in New; the rest can also be overridden per call.
type Options struct {
	EncodeFlags     EncodeFlags
	DecodeFlags     decoder.Flags
	UnionSelector   map[string]string
	Instantiator    string
	Custom          instantiate.Instantiator
	ForceGeneration bool
	Groups          []string
	Context         map[string]interface{}
	Lazy            bool
	Offset          int64
	Length          int64
	CacheDir        string
	CacheSize       int
	CaseFormat      text.CaseFormat
	Logger          *zap.Logger

	hooks      []binding
	formatters map[string]hook.Formatter
}

// WithJSONEncodeFlags sets scalar encode flags.
func WithJSONEncodeFlags(flags EncodeFlags) Option {
	return optionFn(func(o *Options) { o.EncodeFlags = flags })
}

// WithJSONDecodeFlags sets scalar decode flags.
func WithJSONDecodeFlags(flags decoder.Flags) Option {
	return optionFn(func(o *Options) { o.DecodeFlags = flags })
}

// WithUnionSelector maps canonical union strings to the concrete type to decode.
func WithUnionSelector(selector map[string]string) Option {
	return optionFn(func(o *Options) {
		if o.UnionSelector == nil {
			o.UnionSelector = map[string]string{}
		}
		for k, v := range selector {
			o.UnionSelector[k] = v
		}
	})
}

// WithInstantiator selects the eager or lazy instantiator.
func WithInstantiator(name string) Option {
	return optionFn(func(o *Options) {
		o.Instantiator = name
		o.Custom = nil
	})
}

// WithCustomInstantiator uses a caller supplied instantiator.
func WithCustomInstantiator(instantiator instantiate.Instantiator) Option {
	return optionFn(func(o *Options) { o.Custom = instantiator })
}

// WithForceGeneration regenerates programs even when already cached.
func WithForceGeneration(force bool) Option {
	return optionFn(func(o *Options) { o.ForceGeneration = force })
}

// WithGroups selects fields by group.
func WithGroups(groups ...string) Option {
	return optionFn(func(o *Options) { o.Groups = groups })
}

// WithContext sets the ambient context handed to hooks and formatters.
func WithContext(values map[string]interface{}) Option {
	return optionFn(func(o *Options) { o.Context = hook.Merge(o.Context, values) })
}

// WithHook registers an object, field or type hook, or a formatter, under scope.
func WithHook(scope string, handler hook.Handler) Option {
	return optionFn(func(o *Options) { o.hooks = append(o.hooks, binding{scope: scope, handler: handler}) })
}

// WithFormatter registers a named formatter.
func WithFormatter(name string, formatter hook.Formatter) Option {
	return optionFn(func(o *Options) {
		if o.formatters == nil {
			o.formatters = map[string]hook.Formatter{}
		}
		o.formatters[name] = formatter
	})
}

// WithLazy selects lazy (split per element) or eager (decode once, walk) decode programs.
func WithLazy(lazy bool) Option {
	return optionFn(func(o *Options) { o.Lazy = lazy })
}

// WithBoundary decodes [offset, offset+length) of the input; length -1 means to the end.
func WithBoundary(offset, length int64) Option {
	return optionFn(func(o *Options) {
		o.Offset = offset
		o.Length = length
	})
}

// WithCacheDir persists generated programs under dir.
func WithCacheDir(dir string) Option {
	return optionFn(func(o *Options) { o.CacheDir = dir })
}

// WithCacheSize bounds the number of compiled programs kept in memory.
func WithCacheSize(size int) Option {
	return optionFn(func(o *Options) { o.CacheSize = size })
}

// WithCaseFormat sets the key case format of fields without explicit names.
func WithCaseFormat(caseFormat text.CaseFormat) Option {
	return optionFn(func(o *Options) { o.CaseFormat = caseFormat })
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFn(func(o *Options) { o.Logger = logger })
}

func defaultOptions() Options {
	return Options{
		Instantiator: InstantiatorEager,
		Lazy:         true,
		Length:       -1,
		CaseFormat:   text.CaseFormatLowerCamel,
		CacheSize:    512,
	}
}

func resolveOptions(base Options, opts []Option) Options {
	result := base
	result.hooks, result.formatters = nil, nil
	if base.UnionSelector != nil {
		result.UnionSelector = make(map[string]string, len(base.UnionSelector))
		for k, v := range base.UnionSelector {
			result.UnionSelector[k] = v
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&result)
	}
	if result.Instantiator == "" {
		result.Instantiator = InstantiatorEager
	}
	if result.Logger == nil {
		result.Logger = zap.NewNop()
	}
	return result
}
