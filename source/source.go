// Package source abstracts the byte inputs accepted by the decoder: in-memory
// buffers, strings, seekable resources and plain streams.
package source

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/viant/typecodec/errs"
)

// Source is a random access byte input.
type Source interface {
	io.ReaderAt
	// Size returns total input size.
	Size() int64
}

// Bytes wraps a byte slice.
func Bytes(data []byte) Source { return bytes.NewReader(data) }

// String wraps a string.
func String(data string) Source { return strings.NewReader(data) }

type seekable struct {
	mu     sync.Mutex
	reader io.ReadSeeker
	size   int64
}

// Seekable wraps a seekable resource. Reads reposition the resource; callers
// must not share the underlying handle with other readers.
func Seekable(reader io.ReadSeeker) (Source, error) {
	if ra, ok := reader.(Source); ok {
		return ra, nil
	}
	size, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errs.Wrap(errs.ResourceRead, err, "failed to seek resource")
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(errs.ResourceRead, err, "failed to rewind resource")
	}
	return &seekable{reader: reader, size: size}, nil
}

func (s *seekable) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if off >= s.size {
		return 0, io.EOF
	}
	if _, err := s.reader.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(s.reader, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

func (s *seekable) Size() int64 { return s.size }

// Stream buffers a forward-only stream so it can be split and decoded.
func Stream(reader io.Reader) (Source, error) {
	if seeker, ok := reader.(io.ReadSeeker); ok {
		return Seekable(seeker)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errs.Wrap(errs.ResourceRead, err, "failed to read stream")
	}
	return Bytes(data), nil
}

// Window normalizes offset and length against src; length -1 means to the end.
func Window(src Source, offset, length int64) (int64, int64, error) {
	size := src.Size()
	if offset < 0 || offset > size {
		return 0, 0, errs.New(errs.ResourceRead, "offset %d out of range [0,%d]", offset, size)
	}
	if length < 0 || offset+length > size {
		length = size - offset
	}
	return offset, length, nil
}

// Extract returns bytes of [offset, offset+length).
func Extract(src Source, offset, length int64) ([]byte, error) {
	offset, length, err := Window(src, offset, length)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, length)
	if length == 0 {
		return ret, nil
	}
	n, err := src.ReadAt(ret, offset)
	if int64(n) == length {
		return ret, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return nil, errs.Wrap(errs.ResourceRead, err, "failed to read %d bytes at %d", length, offset)
}
