package lexer

import (
	"io"

	"github.com/viant/typecodec/errs"
)

type state int

const (
	expectValue state = iota
	expectValueOrListEnd
	expectKeyOrDictEnd
	expectKey
	expectColon
	expectCommaOrEnd
	done
)

var stateNames = [...]string{"value", "value or ']'", "key or '}'", "key", "':'", "',' or closer", "end of input"}

type structure byte

const (
	listStructure structure = '['
	dictStructure structure = '{'
)

// Validating rejects tokens that break JSON grammar.
type Validating struct {
	reader Reader
	state  state
	stack  []structure
}

// NewValidating wraps reader with a grammar state machine.
func NewValidating(reader Reader) *Validating {
	return &Validating{reader: reader}
}

// Depth returns current nesting depth.
func (v *Validating) Depth() int { return len(v.stack) }

// Next returns the next token, or an InvalidResource error once grammar is violated.
func (v *Validating) Next() (Token, error) {
	token, err := v.reader.Next()
	if err == io.EOF {
		if v.state != done {
			return Token{}, errs.New(errs.InvalidResource, "unexpected end of input, expected %s", stateNames[v.state])
		}
		return Token{}, io.EOF
	}
	if err != nil {
		return Token{}, err
	}
	if err = v.accept(token); err != nil {
		return Token{}, err
	}
	return token, nil
}

func (v *Validating) accept(token Token) error {
	text := token.Text
	switch v.state {
	case expectValueOrListEnd:
		if text == "]" {
			return v.pop(listStructure, token)
		}
		return v.value(token)
	case expectValue:
		return v.value(token)
	case expectKeyOrDictEnd:
		if text == "}" {
			return v.pop(dictStructure, token)
		}
		return v.key(token)
	case expectKey:
		return v.key(token)
	case expectColon:
		if text != ":" {
			return v.unexpected(token)
		}
		v.state = expectValue
		return nil
	case expectCommaOrEnd:
		top := v.stack[len(v.stack)-1]
		switch text {
		case ",":
			if top == listStructure {
				v.state = expectValue
			} else {
				v.state = expectKey
			}
			return nil
		case "]":
			return v.pop(listStructure, token)
		case "}":
			return v.pop(dictStructure, token)
		}
	}
	return v.unexpected(token)
}

func (v *Validating) value(token Token) error {
	switch token.Text {
	case "[":
		v.stack = append(v.stack, listStructure)
		v.state = expectValueOrListEnd
		return nil
	case "{":
		v.stack = append(v.stack, dictStructure)
		v.state = expectKeyOrDictEnd
		return nil
	case "]", "}", ",", ":":
		return v.unexpected(token)
	}
	if !IsScalar(token.Text) {
		return errs.New(errs.InvalidResource, "invalid scalar %q at %d", token.Text, token.Offset)
	}
	v.afterValue()
	return nil
}

func (v *Validating) key(token Token) error {
	if !IsString(token.Text) {
		return errs.New(errs.InvalidResource, "expected string key at %d, got %q", token.Offset, token.Text)
	}
	v.state = expectColon
	return nil
}

func (v *Validating) pop(expect structure, token Token) error {
	if len(v.stack) == 0 || v.stack[len(v.stack)-1] != expect {
		return v.unexpected(token)
	}
	v.stack = v.stack[:len(v.stack)-1]
	v.afterValue()
	return nil
}

func (v *Validating) afterValue() {
	if len(v.stack) == 0 {
		v.state = done
		return
	}
	v.state = expectCommaOrEnd
}

func (v *Validating) unexpected(token Token) error {
	return errs.New(errs.InvalidResource, "unexpected %q at %d, expected %s", token.Text, token.Offset, stateNames[v.state])
}
