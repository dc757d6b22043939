package source

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/typecodec/errs"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

type onlySeeker struct {
	io.ReadSeeker
}

func TestExtract(t *testing.T) {
	seeker, err := Seekable(onlySeeker{bytes.NewReader([]byte(`[100,200]`))})
	require.NoError(t, err)
	stream, err := Stream(io.MultiReader(bytes.NewReader([]byte(`[100,`)), bytes.NewReader([]byte(`200]`))))
	require.NoError(t, err)

	for _, src := range []Source{Bytes([]byte(`[100,200]`)), String(`[100,200]`), seeker, stream} {
		data, err := Extract(src, 5, 3)
		require.NoError(t, err)
		assert.Equal(t, "200", string(data))
		data, err = Extract(src, 1, -1)
		require.NoError(t, err)
		assert.Equal(t, "100,200]", string(data))
		data, err = Extract(src, 8, 100)
		require.NoError(t, err)
		assert.Equal(t, "]", string(data))
	}
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract(String("abc"), 10, 1)
	assert.True(t, errors.Is(err, errs.ResourceRead))

	_, err = Stream(failingReader{})
	assert.True(t, errors.Is(err, errs.ResourceRead))
}
