package textbuf

import (
	"fmt"
	"sync/atomic"
)

// Allocator provides the storage behind a TextBuffer.
//
// Realloc must preserve the first min(len(old), size) bytes and must leave
// old untouched and valid when it fails.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Realloc(old []byte, size int) ([]byte, error)
	Free(b []byte)
}

// HeapAllocator allocates storage from the Go heap. It is the default.
type HeapAllocator struct{}

var _ Allocator = HeapAllocator{}

func (HeapAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeCount
	}
	return make([]byte, size), nil
}

// Realloc grows in place when old has spare capacity, otherwise it copies.
func (HeapAllocator) Realloc(old []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeCount
	}
	if size <= cap(old) {
		return old[:size], nil
	}
	next := make([]byte, size)
	copy(next, old)
	return next, nil
}

// Free is a no-op; the garbage collector reclaims heap storage.
func (HeapAllocator) Free([]byte) {}

// LimitAllocator wraps another Allocator and refuses any request that would
// push the bytes it has handed out above Limit. It is safe for concurrent use,
// so one LimitAllocator can cap the memory of many buffers.
type LimitAllocator struct {
	A     Allocator // underlying allocator; HeapAllocator when nil
	Limit int64     // ceiling on outstanding bytes

	inUse atomic.Int64
}

var _ Allocator = (*LimitAllocator)(nil)

// NewLimitAllocator returns a LimitAllocator over a.
func NewLimitAllocator(a Allocator, limit int64) *LimitAllocator {
	return &LimitAllocator{A: a, Limit: limit}
}

func (l *LimitAllocator) underlying() Allocator {
	if l.A == nil {
		return HeapAllocator{}
	}
	return l.A
}

// reserve claims delta bytes against the limit.
func (l *LimitAllocator) reserve(delta int64) error {
	for {
		cur := l.inUse.Load()
		if cur+delta > l.Limit {
			return fmt.Errorf("%w: %d bytes in use, %d requested, limit %d", ErrOutOfMemory, cur, delta, l.Limit)
		}
		if l.inUse.CompareAndSwap(cur, cur+delta) {
			return nil
		}
	}
}

func (l *LimitAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeCount
	}
	if err := l.reserve(int64(size)); err != nil {
		return nil, err
	}
	b, err := l.underlying().Alloc(size)
	if err != nil {
		l.inUse.Add(-int64(size))
		return nil, err
	}
	return b, nil
}

func (l *LimitAllocator) Realloc(old []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrNegativeCount
	}
	delta := int64(size - len(old))
	if err := l.reserve(delta); err != nil {
		return nil, err
	}
	b, err := l.underlying().Realloc(old, size)
	if err != nil {
		l.inUse.Add(-delta)
		return nil, err
	}
	return b, nil
}

func (l *LimitAllocator) Free(b []byte) {
	l.inUse.Add(-int64(len(b)))
	l.underlying().Free(b)
}

// InUse returns the number of bytes currently handed out.
func (l *LimitAllocator) InUse() int64 { return l.inUse.Load() }
