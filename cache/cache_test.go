package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
)

func returning(value string) Generate {
	return func() ([]ast.Stmt, error) {
		return []ast.Stmt{&ast.Return{Value: ast.Lit(value)}}, nil
	}
}

func TestKey(t *testing.T) {
	key := Key("Point|encode", "string")
	assert.Equal(t, key, Key("Point|encode", "string"))
	assert.NotEqual(t, key, Key("Point|encode", "stream"))
	assert.NotEqual(t, key, Key("City|encode", "string"))
	assert.Equal(t, "string", mode(key))
	assert.Len(t, key, len("0123456789abcdef.string"))
}

func TestFacade_Program(t *testing.T) {
	dir := t.TempDir()
	facade := New(dir, nil, 0)
	key := Key("Point", "string")

	prog, err := facade.Program(key, "Point", false, returning("first"))
	require.NoError(t, err)
	actual, err := prog.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, "first", actual)

	_, err = facade.Program(key, "Point", false, returning("second"))
	require.NoError(t, err)
	assert.Equal(t, 1, facade.Generations())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, key+".json", entries[0].Name())

	reloaded := New(dir, nil, 0)
	prog, err = reloaded.Program(key, "Point", false, returning("second"))
	require.NoError(t, err)
	actual, err = prog.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, "first", actual, "persisted program")
	assert.Equal(t, 0, reloaded.Generations())

	prog, err = reloaded.Program(key, "Point", true, returning("forced"))
	require.NoError(t, err)
	actual, err = prog.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, "forced", actual)
	assert.Equal(t, 1, reloaded.Generations())
}

func TestFacade_Unreadable(t *testing.T) {
	dir := t.TempDir()
	key := Key("City", "tree")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte("{broken"), 0o644))
	facade := New(dir, nil, 0)
	prog, err := facade.Program(key, "City", false, returning("fresh"))
	require.NoError(t, err)
	actual, err := prog.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, "fresh", actual)
	assert.Equal(t, 1, facade.Generations())
}

func TestFacade_Concurrent(t *testing.T) {
	facade := New("", nil, 0)
	key := Key("Node", "string")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := facade.Program(key, "Node", false, returning("node"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, facade.Generations())
}

func TestFacade_GenerateError(t *testing.T) {
	facade := New(t.TempDir(), nil, 0)
	_, err := facade.Program(Key("Bad", "string"), "Bad", false, func() ([]ast.Stmt, error) {
		return nil, errs.New(errs.InvalidType, "bad")
	})
	assert.True(t, errors.Is(err, errs.InvalidType))
	entries, _ := os.ReadDir(facade.Dir())
	assert.Empty(t, entries)
}
