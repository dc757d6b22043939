package lexer

import (
	"io"

	"github.com/viant/typecodec/source"
)

// IsScalar reports whether text is exactly one JSON string, number or literal.
func IsScalar(text string) bool {
	switch text {
	case "true", "false", "null":
		return true
	case "":
		return false
	}
	if text[0] == '"' {
		return IsString(text)
	}
	return isNumber(text)
}

// IsString reports whether text is a complete quoted JSON string.
func IsString(text string) bool {
	last := len(text) - 1
	if last < 1 || text[0] != '"' || text[last] != '"' {
		return false
	}
	for i := 1; i < last; i++ {
		switch c := text[i]; {
		case c < 0x20, c == '"':
			return false
		case c == '\\':
			i++
			if i >= last {
				return false
			}
			switch text[i] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				if i+4 >= last || !isHex(text[i+1:i+5]) {
					return false
				}
				i += 4
			default:
				return false
			}
		}
	}
	return true
}

// number: -? (0 | [1-9][0-9]*) (.[0-9]+)? ([eE][+-]?[0-9]+)?
func isNumber(text string) bool {
	i := 0
	if text[i] == '-' {
		i++
	}
	switch {
	case i < len(text) && text[i] == '0':
		i++
	case i < len(text) && text[i] >= '1' && text[i] <= '9':
		i = digits(text, i)
	default:
		return false
	}
	if i < len(text) && text[i] == '.' {
		next := digits(text, i+1)
		if next == i+1 {
			return false
		}
		i = next
	}
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		i++
		if i < len(text) && (text[i] == '+' || text[i] == '-') {
			i++
		}
		next := digits(text, i)
		if next == i {
			return false
		}
		i = next
	}
	return i == len(text)
}

func digits(text string, i int) int {
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	return i
}

func isHex(text string) bool {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// Validate checks that [offset, offset+length) of src holds exactly one JSON value.
func Validate(src source.Source, offset, length int64) error {
	lexer, err := New(src, offset, length)
	if err != nil {
		return err
	}
	validating := NewValidating(lexer)
	for {
		if _, err = validating.Next(); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}
