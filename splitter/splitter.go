// Package splitter locates top-level element boundaries of a JSON list or
// dictionary without decoding them.
package splitter

import (
	"io"
	"strings"

	"github.com/francoispqt/gojay"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/lexer"
	"github.com/viant/typecodec/source"
)

// Boundary represents a top-level element span; HasKey is set for dictionary entries.
type Boundary struct {
	Key    string
	HasKey bool
	Offset int64
	Length int64
}

type options struct {
	validate bool
}

// Option configures splitting.
type Option func(o *options)

// WithValidation rejects out-of-grammar tokens while scanning.
func WithValidation() Option {
	return func(o *options) { o.validate = true }
}

// Iterator lazily yields boundaries.
type Iterator struct {
	reader     lexer.Reader
	dict       bool
	level      int
	start      int64
	end        int64
	key        string
	hasKey     bool
	afterColon bool
	keys       map[string]string
	done       bool
}

// List splits a JSON list; a nil iterator is returned for JSON null.
func List(src source.Source, offset, length int64, opts ...Option) (*Iterator, error) {
	return split(src, offset, length, false, opts)
}

// Dict splits a JSON object; a nil iterator is returned for JSON null.
func Dict(src source.Source, offset, length int64, opts ...Option) (*Iterator, error) {
	return split(src, offset, length, true, opts)
}

func split(src source.Source, offset, length int64, dict bool, opts []Option) (*Iterator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	lex, err := lexer.New(src, offset, length)
	if err != nil {
		return nil, err
	}
	var reader lexer.Reader = lex
	if o.validate {
		reader = lexer.NewValidating(lex)
	}
	first, err := reader.Next()
	if err == io.EOF {
		return nil, errs.New(errs.InvalidResource, "empty input at %d", offset)
	}
	if err != nil {
		return nil, err
	}
	if first.Text == "null" {
		if _, err = reader.Next(); err == io.EOF {
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		return nil, errs.New(errs.InvalidResource, "unexpected data after null at %d", first.End())
	}
	opening := "["
	if dict {
		opening = "{"
	}
	if first.Text != opening {
		return nil, errs.New(errs.InvalidResource, "expected %q at %d, got %q", opening, first.Offset, first.Text)
	}
	return &Iterator{reader: reader, dict: dict, start: -1, keys: map[string]string{}}, nil
}

// Next returns the next boundary or io.EOF.
func (i *Iterator) Next() (Boundary, error) {
	if i == nil || i.done {
		return Boundary{}, io.EOF
	}
	for {
		token, err := i.reader.Next()
		if err == io.EOF {
			return Boundary{}, errs.New(errs.InvalidResource, "unterminated collection, nesting level %d", i.level)
		}
		if err != nil {
			return Boundary{}, err
		}
		if i.level > 0 {
			i.track(token)
			continue
		}
		switch token.Text {
		case ",":
			boundary, ok, err := i.flush(token)
			if err != nil {
				return Boundary{}, err
			}
			if ok {
				return boundary, nil
			}
		case "]", "}":
			if (token.Text == "}") != i.dict {
				return Boundary{}, errs.New(errs.InvalidResource, "mismatched %q at %d", token.Text, token.Offset)
			}
			i.level--
			i.done = true
			boundary, ok, err := i.flush(token)
			if err != nil {
				return Boundary{}, err
			}
			if err = i.expectEnd(); err != nil {
				return Boundary{}, err
			}
			if ok {
				return boundary, nil
			}
			return Boundary{}, io.EOF
		case ":":
			if !i.dict || !i.hasKey || i.afterColon {
				return Boundary{}, errs.New(errs.InvalidResource, "unexpected ':' at %d", token.Offset)
			}
			i.afterColon = true
		default:
			if i.dict && !i.afterColon {
				if i.hasKey {
					return Boundary{}, errs.New(errs.InvalidResource, "expected ':' at %d, got %q", token.Offset, token.Text)
				}
				if err = i.setKey(token); err != nil {
					return Boundary{}, err
				}
				continue
			}
			i.track(token)
		}
	}
}

// Collect drains the iterator.
func (i *Iterator) Collect() ([]Boundary, error) {
	var ret []Boundary
	for {
		boundary, err := i.Next()
		if err == io.EOF {
			return ret, nil
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, boundary)
	}
}

func (i *Iterator) track(token lexer.Token) {
	if i.start < 0 {
		i.start = token.Offset
	}
	switch token.Text {
	case "[", "{":
		i.level++
	case "]", "}":
		i.level--
	}
	i.end = token.End()
}

func (i *Iterator) flush(token lexer.Token) (Boundary, bool, error) {
	hasValue := i.start >= 0
	if i.dict {
		switch {
		case !i.hasKey && hasValue:
			return Boundary{}, false, errs.New(errs.InvalidResource, "dictionary entry without key at %d", i.start)
		case i.hasKey && !hasValue:
			return Boundary{}, false, errs.New(errs.InvalidResource, "key %q without value at %d", i.key, token.Offset)
		case !i.hasKey && token.Text == ",":
			return Boundary{}, false, errs.New(errs.InvalidResource, "missing dictionary entry at %d", token.Offset)
		}
	}
	if !hasValue {
		return Boundary{}, false, nil
	}
	ret := Boundary{Key: i.key, HasKey: i.hasKey, Offset: i.start, Length: i.end - i.start}
	i.start, i.end = -1, 0
	i.key, i.hasKey, i.afterColon = "", false, false
	return ret, ret.Length > 0, nil
}

func (i *Iterator) expectEnd() error {
	token, err := i.reader.Next()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return errs.New(errs.InvalidResource, "unexpected %q after collection end at %d", token.Text, token.Offset)
}

func (i *Iterator) setKey(token lexer.Token) error {
	switch token.Text {
	case "[", "{":
		return errs.New(errs.InvalidResource, "dictionary key at %d must be scalar", token.Offset)
	}
	key, ok := i.keys[token.Text]
	if !ok {
		key = token.Text
		if strings.HasPrefix(token.Text, `"`) {
			if err := gojay.Unmarshal([]byte(token.Text), &key); err != nil {
				return errs.Wrap(errs.InvalidResource, err, "invalid dictionary key at %d", token.Offset)
			}
		}
		i.keys[token.Text] = key
	}
	i.key, i.hasKey = key, true
	return nil
}
