// Package tags parses field tags driving codec generation.
package tags

import (
	"reflect"
	"strings"
	"sync"

	"github.com/viant/parsly"
	"github.com/viant/tagly/format"
	"github.com/viant/tagly/format/text"
	"github.com/viant/typecodec/errs"
)

// CodecTagName is the struct tag holding codec directives.
const CodecTagName = "codec"

type (
	// Codec represents `codec:"type=...,groups=a|b,formatter=name,omitempty"`.
	Codec struct {
		Type      string
		Groups    []string
		Formatter string
		Name      string
		OmitEmpty bool
		Ignore    bool
		Present   bool
	}

	// JSON represents a json tag.
	JSON struct {
		Name      string
		OmitEmpty bool
		Explicit  bool
		Transient bool
	}

	// Field represents resolved naming and directives of a struct field.
	Field struct {
		Key       string
		OmitEmpty bool
		Ignore    bool
		Codec     *Codec
	}
)

var codecCache sync.Map // map[string]*Codec

// ParseCodec parses a codec tag value.
func ParseCodec(encoded string) (*Codec, error) {
	if cached, ok := codecCache.Load(encoded); ok {
		return cached.(*Codec), nil
	}
	ret := &Codec{Present: true}
	cursor := parsly.NewCursor("", []byte(encoded), 0)
	for cursor.Pos < len(cursor.Input) {
		key, value := matchPair(cursor)
		if key == "" {
			continue
		}
		if err := ret.update(key, value); err != nil {
			return nil, err
		}
	}
	codecCache.Store(encoded, ret)
	return ret, nil
}

func (c *Codec) update(key, value string) error {
	switch strings.ToLower(key) {
	case "type":
		c.Type = value
	case "groups", "group":
		for _, group := range strings.Split(value, "|") {
			if group = strings.TrimSpace(group); group != "" {
				c.Groups = append(c.Groups, group)
			}
		}
	case "formatter":
		c.Formatter = value
	case "name":
		c.Name = value
	case "omitempty":
		c.OmitEmpty = true
	case "-", "ignore", "transient":
		c.Ignore = true
	default:
		return errs.New(errs.InvalidArgument, "unknown codec tag directive %q", key)
	}
	return nil
}

// ParseJSON parses a json tag value.
func ParseJSON(defaultName string, raw string) JSON {
	if raw == "" {
		return JSON{Name: defaultName}
	}
	parts := strings.Split(raw, ",")
	name := parts[0]
	explicit := true
	if name == "" {
		name = defaultName
		explicit = false
	}
	tag := JSON{
		Name:      name,
		Explicit:  explicit,
		Transient: name == "-",
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			tag.OmitEmpty = true
			break
		}
	}
	return tag
}

// Resolve resolves a field key with precedence codec name, json name, format
// tag name or case, then caseFormat applied to the Go field name.
func Resolve(field reflect.StructField, caseFormat text.CaseFormat) (*Field, error) {
	ret := &Field{}
	if encoded, ok := field.Tag.Lookup(CodecTagName); ok {
		codec, err := ParseCodec(encoded)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, err, "invalid tag of field %s", field.Name)
		}
		ret.Codec = codec
		ret.OmitEmpty = codec.OmitEmpty
		ret.Ignore = codec.Ignore
	}
	jTag := ParseJSON(field.Name, field.Tag.Get("json"))
	ret.Key = jTag.Name
	ret.OmitEmpty = ret.OmitEmpty || jTag.OmitEmpty
	ret.Ignore = ret.Ignore || jTag.Transient
	explicit := jTag.Explicit
	if fTag, err := format.Parse(field.Tag); err == nil && fTag != nil {
		ret.OmitEmpty = ret.OmitEmpty || fTag.Omitempty
		ret.Ignore = ret.Ignore || fTag.Ignore
		if !explicit && (fTag.Name != "" || fTag.CaseFormat != "") {
			if fTag.Name == "" {
				fTag.Name = field.Name
			}
			ret.Key = fTag.CaseFormatName("")
			explicit = ret.Key != ""
		}
	}
	if ret.Codec != nil && ret.Codec.Name != "" {
		ret.Key, explicit = ret.Codec.Name, true
	}
	if !explicit {
		ret.Key = FormatName(field.Name, caseFormat)
	}
	return ret, nil
}

// FormatName formats a Go field name with caseFormat.
func FormatName(fieldName string, caseFormat text.CaseFormat) string {
	if caseFormat == "" {
		return fieldName
	}
	if fieldName == "ID" {
		switch caseFormat {
		case text.CaseFormatLower, text.CaseFormatLowerCamel, text.CaseFormatLowerUnderscore:
			return "id"
		}
	}
	src := text.DetectCaseFormat(fieldName)
	if !src.IsDefined() {
		src = text.CaseFormatUpperCamel
	}
	return src.Format(fieldName, caseFormat)
}
