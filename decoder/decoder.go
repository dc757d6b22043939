// Package decoder materializes bounded JSON fragments into Go values.
package decoder

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/francoispqt/gojay"
	"github.com/goccy/go-json"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/lexer"
	"github.com/viant/typecodec/source"
)

// Flags controls number materialization.
type Flags struct {
	// UseNumber keeps numbers as json.Number.
	UseNumber bool `yaml:"use_number"`
	// BigIntAsString returns integers overflowing int64 as their decimal text.
	BigIntAsString bool `yaml:"big_int_as_string"`
}

// Decode decodes [offset, offset+length) of src.
func Decode(src source.Source, offset, length int64, flags Flags) (interface{}, error) {
	data, err := source.Extract(src, offset, length)
	if err != nil {
		return nil, err
	}
	return Bytes(data, flags)
}

// Bytes decodes a complete JSON document. Objects decode to
// map[string]interface{}, arrays to []interface{}, integers to int and other
// numbers to float64 unless flags say otherwise.
func Bytes(data []byte, flags Flags) (interface{}, error) {
	data = trim(data)
	if len(data) == 0 {
		return nil, errs.New(errs.InvalidResource, "empty JSON value")
	}
	if err := lexer.Validate(source.Bytes(data), 0, -1); err != nil {
		return nil, errs.Wrap(errs.InvalidResource, err, "invalid JSON: %s", preview(data))
	}
	switch string(data) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	switch data[0] {
	case '{', '[':
		var value interface{}
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&value); err != nil {
			return nil, errs.Wrap(errs.InvalidResource, err, "failed to decode %s", preview(data))
		}
		return normalize(value, flags)
	case '"':
		var value string
		if err := gojay.Unmarshal(data, &value); err != nil {
			return nil, errs.Wrap(errs.InvalidResource, err, "invalid string %s", preview(data))
		}
		return value, nil
	}
	return Number(string(data), flags)
}

// Number converts numeric JSON text.
func Number(text string, flags Flags) (interface{}, error) {
	if flags.UseNumber {
		return json.Number(text), nil
	}
	if !strings.ContainsAny(text, ".eE") {
		var value int64
		if err := gojay.Unmarshal([]byte(text), &value); err == nil {
			return int(value), nil
		}
		if _, err := strconv.ParseInt(text, 10, 64); err != nil && isRange(err) {
			if flags.BigIntAsString {
				return text, nil
			}
		}
	}
	var value float64
	if err := gojay.Unmarshal([]byte(text), &value); err != nil {
		parsed, perr := strconv.ParseFloat(text, 64)
		if perr != nil {
			return nil, errs.Wrap(errs.InvalidResource, err, "invalid number %s", text)
		}
		value = parsed
	}
	return value, nil
}

func normalize(value interface{}, flags Flags) (interface{}, error) {
	var err error
	switch actual := value.(type) {
	case json.Number:
		return Number(string(actual), flags)
	case map[string]interface{}:
		for k, v := range actual {
			if actual[k], err = normalize(v, flags); err != nil {
				return nil, err
			}
		}
	case []interface{}:
		for i, v := range actual {
			if actual[i], err = normalize(v, flags); err != nil {
				return nil, err
			}
		}
	}
	return value, nil
}

func isRange(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

func trim(data []byte) []byte {
	data = bytes.TrimPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("\xEF\xBB\xBF"))
	return bytes.TrimSpace(data)
}

func preview(data []byte) string {
	if len(data) > 32 {
		return string(data[:32]) + "..."
	}
	return string(data)
}
