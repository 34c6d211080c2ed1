// Package extstack implements a LIFO stack of int32 values that spills to disk.
//
// Two fixed-size batches live in memory. When both are full the older one is
// written to a numbered batch file and the batches swap roles. When both
// batches are empty the most recent batch file is read back and deleted, so
// every batch file is written once and read at most once. Logical depth is
// bounded by disk space rather than memory.
//
//	s, err := extstack.New(extstack.Options{Compress: true})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	_ = s.Push(42)
//	v, _ := s.Pop()
package extstack

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/observability"
)

// DefaultBatchSize is the number of values per in-memory batch (64 KiB).
const DefaultBatchSize = 16384

// ErrUnderflow is returned by Pop and Peek on an empty stack.
var ErrUnderflow = errors.New(errors.ErrCodeUnderflow, "pop or peek on empty stack")

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New(errors.ErrCodeInvalidState, "stack is closed")

var bufPool = sync.Pool{New: func() any {
	s := make([]byte, 0)
	return &s
}}

// Options configures a Stack.
type Options struct {
	// Dir is the parent directory for batch files. A unique subdirectory is
	// created inside it on the first spill. Defaults to os.TempDir().
	Dir string

	// BatchSize is the number of values per in-memory batch.
	BatchSize int

	// Compress enables snappy compression of batch files.
	Compress bool
}

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.Dir == "" {
		o.Dir = os.TempDir()
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
}

// Stack is a disk-spilling stack of int32 values. It is not safe for
// concurrent use.
//
// Values are ordered spilled files (oldest) < lower < upper. upper is only
// non-empty while lower is full, and every spilled file holds a full batch.
type Stack struct {
	dir      string
	batch    int
	compress bool

	lower   []int32
	upper   []int32
	spilled int
	created bool
	closed  bool
}

// New creates an empty stack. No files are written until the first spill.
func New(opts Options) (*Stack, error) {
	opts.SetDefaults()
	return &Stack{
		dir:      filepath.Join(opts.Dir, "pathcover-stack-"+uuid.NewString()),
		batch:    opts.BatchSize,
		compress: opts.Compress,
		lower:    make([]int32, 0, opts.BatchSize),
		upper:    make([]int32, 0, opts.BatchSize),
	}, nil
}

// Push adds v to the top of the stack.
func (s *Stack) Push(v int32) error {
	if s.closed {
		return ErrClosed
	}
	switch {
	case len(s.upper) == 0 && len(s.lower) < s.batch:
		s.lower = append(s.lower, v)
	case len(s.upper) < s.batch:
		s.upper = append(s.upper, v)
	default:
		if err := s.spill(); err != nil {
			return err
		}
		s.lower, s.upper = s.upper, s.lower[:0]
		s.upper = append(s.upper, v)
	}
	return nil
}

// Pop removes and returns the top of the stack.
func (s *Stack) Pop() (int32, error) {
	if err := s.fill(); err != nil {
		return 0, err
	}
	if n := len(s.upper); n > 0 {
		v := s.upper[n-1]
		s.upper = s.upper[:n-1]
		return v, nil
	}
	n := len(s.lower)
	v := s.lower[n-1]
	s.lower = s.lower[:n-1]
	return v, nil
}

// Peek returns the top of the stack without removing it.
func (s *Stack) Peek() (int32, error) {
	if err := s.fill(); err != nil {
		return 0, err
	}
	if n := len(s.upper); n > 0 {
		return s.upper[n-1], nil
	}
	return s.lower[len(s.lower)-1], nil
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int {
	return s.spilled*s.batch + len(s.lower) + len(s.upper)
}

// Empty reports whether the stack holds no values.
func (s *Stack) Empty() bool {
	return s.Len() == 0
}

// Spilled returns the number of batch files currently on disk.
func (s *Stack) Spilled() int {
	return s.spilled
}

// Close removes the spill directory. The stack cannot be used afterwards.
func (s *Stack) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.lower, s.upper = nil, nil
	s.spilled = 0
	if !s.created {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "remove spill directory %s", s.dir)
	}
	return nil
}

// fill makes sure the top of the stack is in memory, reloading the most
// recent batch file when both batches are empty.
func (s *Stack) fill() error {
	if s.closed {
		return ErrClosed
	}
	if len(s.lower) > 0 || len(s.upper) > 0 {
		return nil
	}
	if s.spilled == 0 {
		return ErrUnderflow
	}
	return s.reload()
}

func (s *Stack) batchPath(idx int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.batch", idx))
}

func (s *Stack) spill() error {
	if !s.created {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create spill directory %s", s.dir)
		}
		s.created = true
	}

	pntBuf := bufPool.Get().(*[]byte)
	raw := encode((*pntBuf)[:0], s.lower)
	data := raw
	if s.compress {
		data = snappy.Encode(nil, raw)
	}
	*pntBuf = raw
	defer bufPool.Put(pntBuf)

	name := s.batchPath(s.spilled)
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write batch %d", s.spilled)
	}
	s.spilled++
	observability.Stack().OnSpill(len(data))
	return nil
}

func (s *Stack) reload() error {
	idx := s.spilled - 1
	name := s.batchPath(idx)
	data, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read batch %d", idx)
	}
	raw := data
	if s.compress {
		if raw, err = snappy.Decode(nil, data); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "decode batch %d", idx)
		}
	}
	if len(raw) != 4*s.batch {
		return errors.New(errors.ErrCodeIO, "batch %d: got %d bytes, want %d", idx, len(raw), 4*s.batch)
	}
	s.lower = decode(s.lower[:0], raw)
	if err := os.Remove(name); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "delete batch %d", idx)
	}
	s.spilled--
	observability.Stack().OnReload(len(data))
	return nil
}

func encode(dst []byte, vals []int32) []byte {
	for _, v := range vals {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
	}
	return dst
}

func decode(dst []int32, raw []byte) []int32 {
	for i := 0; i+4 <= len(raw); i += 4 {
		dst = append(dst, int32(binary.LittleEndian.Uint32(raw[i:])))
	}
	return dst
}
