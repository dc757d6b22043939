package typecodec

import (
	"os"

	"github.com/viant/tagly/format/text"
	"github.com/viant/typecodec/decoder"
	"github.com/viant/typecodec/errs"
	"gopkg.in/yaml.v3"
)

// Config is the file form of codec options.
type Config struct {
	JSONEncodeFlags EncodeFlags       `yaml:"json_encode_flags"`
	JSONDecodeFlags decoder.Flags     `yaml:"json_decode_flags"`
	UnionSelector   map[string]string `yaml:"union_selector"`
	Instantiator    string            `yaml:"instantiator"`
	ForceGeneration bool              `yaml:"force_generation"`
	Groups          []string          `yaml:"groups"`
	CacheDir        string            `yaml:"cache_dir"`
	Lazy            *bool             `yaml:"lazy"`
	CaseFormat      string            `yaml:"case_format"`
}

// LoadConfig reads a yaml config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ResourceRead, err, "failed to read config %s", path)
	}
	ret := &Config{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, err, "invalid config %s", path)
	}
	switch ret.Instantiator {
	case "", InstantiatorEager, InstantiatorLazy:
	default:
		return nil, errs.New(errs.InvalidArgument, "unknown instantiator %q in %s", ret.Instantiator, path)
	}
	return ret, nil
}

// Options converts the config to options.
func (c *Config) Options() []Option {
	ret := []Option{
		WithJSONEncodeFlags(c.JSONEncodeFlags),
		WithJSONDecodeFlags(c.JSONDecodeFlags),
		WithForceGeneration(c.ForceGeneration),
	}
	if len(c.UnionSelector) > 0 {
		ret = append(ret, WithUnionSelector(c.UnionSelector))
	}
	if c.Instantiator != "" {
		ret = append(ret, WithInstantiator(c.Instantiator))
	}
	if len(c.Groups) > 0 {
		ret = append(ret, WithGroups(c.Groups...))
	}
	if c.CacheDir != "" {
		ret = append(ret, WithCacheDir(c.CacheDir))
	}
	if c.Lazy != nil {
		ret = append(ret, WithLazy(*c.Lazy))
	}
	if c.CaseFormat != "" {
		ret = append(ret, WithCaseFormat(text.CaseFormat(c.CaseFormat)))
	}
	return ret
}
