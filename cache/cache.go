// Package cache keeps generated programs: one persisted envelope per cache
// key in a directory, plus an in-memory table of compiled programs.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/viant/typecodec/ast"
	"github.com/viant/typecodec/errs"
	"github.com/viant/typecodec/internal/lru"
	"github.com/viant/typecodec/program"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Generate produces the statements of a program on a cache miss.
type Generate func() ([]ast.Stmt, error)

// Envelope is the persisted form of a generated program.
type Envelope struct {
	Key     string          `json:"key"`
	Type    string          `json:"type"`
	Mode    string          `json:"mode"`
	Source  string          `json:"source"`
	Program json.RawMessage `json:"program"`
}

// Facade resolves programs by key, generating them at most once per key.
type Facade struct {
	dir         string
	logger      *zap.Logger
	programs    *lru.Cache[string, *program.Program]
	group       singleflight.Group
	generations int64
}

// Key returns the cache key of a generation signature and mode.
func Key(signature, mode string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(signature)) + "." + mode
}

// New creates a facade persisting to dir; an empty dir keeps programs in memory only.
func New(dir string, logger *zap.Logger, capacity int) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facade{dir: dir, logger: logger, programs: lru.New[string, *program.Program](capacity)}
}

// Dir returns the persistence directory.
func (f *Facade) Dir() string { return f.dir }

// Generations returns how many times a generator ran.
func (f *Facade) Generations() int {
	return int(atomic.LoadInt64(&f.generations))
}

// Path returns the envelope location of key.
func (f *Facade) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Program returns the compiled program of key. With force, both the memory
// table and the persisted envelope are ignored and the program is regenerated.
func (f *Facade) Program(key, typeName string, force bool, generate Generate) (*program.Program, error) {
	if !force {
		if ret, ok := f.programs.Get(key); ok {
			f.logger.Debug("program reused", zap.String("key", key), zap.String("type", typeName))
			return ret, nil
		}
	}
	value, err, _ := f.group.Do(key, func() (interface{}, error) {
		if !force {
			if ret, ok := f.programs.Get(key); ok {
				return ret, nil
			}
			if ret, ok := f.load(key, typeName); ok {
				f.programs.Set(key, ret)
				return ret, nil
			}
		}
		ret, err := f.generate(key, typeName, generate)
		if err != nil {
			return nil, err
		}
		f.programs.Set(key, ret)
		return ret, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*program.Program), nil
}

func (f *Facade) load(key, typeName string) (*program.Program, bool) {
	if f.dir == "" {
		return nil, false
	}
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		return nil, false
	}
	envelope := &Envelope{}
	if err = json.Unmarshal(data, envelope); err == nil {
		var stmts []ast.Stmt
		if stmts, err = ast.UnmarshalProgram(envelope.Program); err == nil {
			var ret *program.Program
			if ret, err = program.Compile(stmts); err == nil {
				f.logger.Debug("program loaded", zap.String("key", key), zap.String("type", typeName), zap.String("mode", envelope.Mode))
				return ret, true
			}
		}
	}
	f.logger.Warn("unreadable program, regenerating", zap.String("key", key), zap.String("type", typeName), zap.Error(err))
	return nil, false
}

func (f *Facade) generate(key, typeName string, generate Generate) (*program.Program, error) {
	atomic.AddInt64(&f.generations, 1)
	stmts, err := generate()
	if err != nil {
		return nil, err
	}
	stmts = ast.Optimize(stmts)
	ret, err := program.Compile(stmts)
	if err != nil {
		return nil, err
	}
	if err = f.persist(key, typeName, stmts); err != nil {
		return nil, err
	}
	f.logger.Debug("program generated", zap.String("key", key), zap.String("type", typeName))
	return ret, nil
}

func (f *Facade) persist(key, typeName string, stmts []ast.Stmt) error {
	if f.dir == "" {
		return nil
	}
	encoded, err := ast.MarshalProgram(stmts)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, err, "failed to encode program %s", key)
	}
	envelope := &Envelope{Key: key, Type: typeName, Mode: mode(key), Source: ast.Render(stmts), Program: encoded}
	data, err := json.Marshal(envelope)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, err, "failed to encode envelope %s", key)
	}
	if err = os.MkdirAll(f.dir, 0o755); err != nil {
		return errs.Wrap(errs.ResourceRead, err, "failed to create cache dir %s", f.dir)
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ResourceRead, err, "failed to create %s", key)
	}
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), f.Path(key))
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return errs.Wrap(errs.ResourceRead, err, "failed to persist %s", key)
	}
	return nil
}

func mode(key string) string {
	if ext := filepath.Ext(key); ext != "" {
		return ext[1:]
	}
	return ""
}
