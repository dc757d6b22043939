// Package lexer tokenizes JSON from a bounded window of a source without
// loading the whole input.
package lexer

import (
	"bytes"
	"io"

	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/source"
)

const chunkSize = 4096

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Token represents a JSON token with its absolute source offset.
type Token struct {
	Text   string
	Offset int64
}

// End returns the offset right after the token.
func (t Token) End() int64 { return t.Offset + int64(len(t.Text)) }

// Reader produces tokens until io.EOF.
type Reader interface {
	Next() (Token, error)
}

// Lexer is a pull tokenizer reading chunks of [offset, offset+length).
type Lexer struct {
	src     source.Source
	pos     int64
	end     int64
	chunk   []byte
	base    int64
	idx     int
	scratch []byte
}

// New creates a lexer over src; length -1 means to the end of src.
func New(src source.Source, offset, length int64) (*Lexer, error) {
	offset, length, err := source.Window(src, offset, length)
	if err != nil {
		return nil, err
	}
	if offset == 0 && length >= int64(len(byteOrderMark)) {
		prefix := make([]byte, len(byteOrderMark))
		if n, _ := src.ReadAt(prefix, 0); n == len(prefix) && bytes.Equal(prefix, byteOrderMark) {
			offset += int64(n)
			length -= int64(n)
		}
	}
	return &Lexer{src: src, pos: offset, end: offset + length, base: offset}, nil
}

// Next returns the next token or io.EOF.
func (l *Lexer) Next() (Token, error) {
	for {
		b, offset, err := l.read()
		if err != nil {
			return Token{}, err
		}
		switch {
		case isWhitespace(b):
			continue
		case isStructural(b):
			return Token{Text: string(b), Offset: offset}, nil
		case b == '"':
			return l.quoted(offset)
		default:
			return l.bare(b, offset)
		}
	}
}

func (l *Lexer) quoted(offset int64) (Token, error) {
	l.scratch = append(l.scratch[:0], '"')
	escaped := false
	for {
		b, _, err := l.read()
		if err == io.EOF {
			return Token{Text: string(l.scratch), Offset: offset}, nil
		}
		if err != nil {
			return Token{}, err
		}
		l.scratch = append(l.scratch, b)
		switch {
		case escaped:
			escaped = false
		case b == '\\':
			escaped = true
		case b == '"':
			return Token{Text: string(l.scratch), Offset: offset}, nil
		}
	}
}

func (l *Lexer) bare(first byte, offset int64) (Token, error) {
	l.scratch = append(l.scratch[:0], first)
	for {
		b, _, err := l.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Token{}, err
		}
		if isWhitespace(b) || isStructural(b) || b == '"' {
			l.idx--
			break
		}
		l.scratch = append(l.scratch, b)
	}
	return Token{Text: string(l.scratch), Offset: offset}, nil
}

func (l *Lexer) read() (byte, int64, error) {
	if l.idx >= len(l.chunk) {
		if err := l.fill(); err != nil {
			return 0, 0, err
		}
	}
	b := l.chunk[l.idx]
	offset := l.base + int64(l.idx)
	l.idx++
	return b, offset, nil
}

func (l *Lexer) fill() error {
	remaining := l.end - l.pos
	if remaining <= 0 {
		return io.EOF
	}
	size := int64(chunkSize)
	if remaining < size {
		size = remaining
	}
	if cap(l.chunk) < chunkSize {
		l.chunk = make([]byte, chunkSize)
	}
	l.chunk = l.chunk[:size]
	n, err := l.src.ReadAt(l.chunk, l.pos)
	if n == 0 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return errs.Wrap(errs.ResourceRead, err, "failed to read source at %d", l.pos)
	}
	l.chunk = l.chunk[:n]
	l.base = l.pos
	l.pos += int64(n)
	l.idx = 0
	return nil
}

// Tokens collects all tokens of reader.
func Tokens(reader Reader) ([]Token, error) {
	var ret []Token
	for {
		token, err := reader.Next()
		if err == io.EOF {
			return ret, nil
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, token)
	}
}

func isStructural(b byte) bool {
	switch b {
	case '{', '}', '[', ']', ':', ',':
		return true
	}
	return false
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\n', '\r', '\t':
		return true
	}
	return false
}
