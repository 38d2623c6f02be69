// Package textbuf provides a self-expanding byte buffer that always keeps a
// NUL terminator after its content, so the written bytes can be handed to
// code expecting a C-style string.
//
// A TextBuffer has a single owner. It does no locking, and any growth
// invalidates slices previously obtained from Storage or Bytes.
package textbuf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
)

const (
	// MinSize is the smallest allocation a TextBuffer ever holds.
	MinSize = 1024

	// RawReadMin is the free space ReadRaw guarantees before reading.
	RawReadMin = 4096

	// TextReadMin is the free space ReadText guarantees before reading.
	TextReadMin = 512
)

type options struct {
	alloc  Allocator
	logger *slog.Logger
}

// Option configures a TextBuffer or a Pool.
type Option func(*options)

// WithAllocator sets the storage backend. The default is HeapAllocator.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithLogger sets the logger used to report growth. Logging is off by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{alloc: HeapAllocator{}, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TextBuffer is a growable byte buffer whose content is followed by a NUL byte.
type TextBuffer struct {
	buf        []byte // nil until the first allocation
	off        int    // write cursor
	free       int    // writable bytes, excluding the terminator slot
	terminated bool   // buf[off] holds the NUL; cleared by ReadRaw
	gen        uint64 // bumped when the content is discarded

	alloc  Allocator
	logger *slog.Logger
	owner  *Pool // pool that allocated the buffer, if any
}

var (
	_ io.Writer       = (*TextBuffer)(nil)
	_ io.StringWriter = (*TextBuffer)(nil)
	_ io.ByteWriter   = (*TextBuffer)(nil)
	_ io.ReaderFrom   = (*TextBuffer)(nil)
	_ io.WriterTo     = (*TextBuffer)(nil)
	_ io.Closer       = (*TextBuffer)(nil)
)

// New creates a TextBuffer holding at least size bytes, raised to MinSize.
// A size <= 0 creates an empty buffer that allocates on first write.
//
// New panics if the initial allocation fails: a constructed buffer always
// owns valid, terminated storage.
func New(size int, opts ...Option) *TextBuffer {
	o := buildOptions(opts)
	b := &TextBuffer{alloc: o.alloc, logger: o.logger}
	if size <= 0 {
		return b
	}
	size = max(size, MinSize)

	buf, err := b.alloc.Alloc(size)
	if err != nil {
		panic(fmt.Errorf("textbuf: initial allocation of %d bytes failed: %w", size, err))
	}
	b.buf = buf
	b.free = size - 1
	b.buf[0] = 0
	b.terminated = true
	return b
}

// Reuse rewinds the buffer to empty while keeping its storage. Readers
// created before the call become stale.
func (b *TextBuffer) Reuse() {
	if b.buf == nil {
		return
	}
	b.gen++
	b.off = 0
	b.free = len(b.buf) - 1
	b.buf[0] = 0
	b.terminated = true
}

// CopyFrom appends p and re-terminates the content. It returns len(p), or
// ErrOutOfMemory with the buffer unchanged when the buffer cannot grow.
func (b *TextBuffer) CopyFrom(p []byte) (int, error) {
	return appendTerminated(b, p)
}

// appendTerminated is the append-from-memory path shared by the writers.
func appendTerminated[T []byte | string](b *TextBuffer, p T) (int, error) {
	if b.free < len(p) {
		if err := b.Grow(len(p)); err != nil {
			return 0, err
		}
	}
	if b.buf == nil {
		return 0, nil
	}
	n := copy(b.buf[b.off:], p)
	b.off += n
	b.free -= n
	b.buf[b.off] = 0
	b.terminated = true
	return n, nil
}

// Write implements the io.Writer interface.
func (b *TextBuffer) Write(p []byte) (int, error) {
	return b.CopyFrom(p)
}

// WriteString implements the io.StringWriter interface.
func (b *TextBuffer) WriteString(s string) (int, error) {
	return appendTerminated(b, s)
}

// WriteByte implements the io.ByteWriter interface.
func (b *TextBuffer) WriteByte(c byte) error {
	if b.free < 1 {
		if err := b.Grow(1); err != nil {
			return err
		}
	}
	b.buf[b.off] = c
	b.off++
	b.free--
	b.buf[b.off] = 0
	b.terminated = true
	return nil
}

// Grow makes sure at least n bytes can be appended without another
// allocation. Capacity grows by doubling steps from the current size and is
// reached with a single reallocation. On failure the buffer is unchanged and
// the error matches ErrOutOfMemory.
func (b *TextBuffer) Grow(n int) error {
	if n < 0 {
		return ErrNegativeCount
	}
	if b.free >= n {
		return nil
	}

	old := len(b.buf)
	size, ok := growSize(old, n)
	if !ok {
		b.logger.Warn("textbuf: growth overflows", "capacity", old, "need", n)
		return fmt.Errorf("%w: cannot grow %d bytes by %d", ErrOutOfMemory, old, n)
	}

	var (
		next []byte
		err  error
	)
	if b.buf == nil {
		next, err = b.alloc.Alloc(size)
	} else {
		next, err = b.alloc.Realloc(b.buf, size)
	}
	if err != nil {
		b.logger.Warn("textbuf: growth refused", "capacity", old, "size", size, "error", err)
		if errors.Is(err, ErrOutOfMemory) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	if b.buf == nil {
		next[0] = 0
		b.free = size - 1
		b.terminated = true
	} else {
		b.free += size - old
	}
	b.buf = next
	b.logger.Debug("textbuf: grew buffer", "from", old, "to", size, "need", n)
	return nil
}

// growSize computes the capacity Grow reallocates to. Starting from cur, it
// accumulates doubling increments until they cover n, so the result always
// equals cur plus the added bytes. An empty buffer starts from MinSize.
func growSize(cur, n int) (int, bool) {
	if cur == 0 {
		size := MinSize
		for size-1 < n {
			if size > math.MaxInt/2 {
				return 0, false
			}
			size *= 2
		}
		return size, true
	}

	if cur > math.MaxInt/2 {
		return 0, false
	}
	added, size := cur, cur*2
	for added < n {
		if size > math.MaxInt/2 {
			return 0, false
		}
		added += size
		size *= 2
	}
	return size, true
}

// Release returns the storage to the allocator and leaves the buffer empty,
// as if created with size 0. It is safe on an empty buffer.
func (b *TextBuffer) Release() {
	if b.buf != nil {
		b.alloc.Free(b.buf)
	}
	b.gen++
	b.terminated = false
	b.buf = nil
	b.off = 0
	b.free = 0
}

// Close implements the io.Closer interface by calling Release.
func (b *TextBuffer) Close() error {
	b.Release()
	return nil
}

// Storage returns the whole allocation, or nil if nothing was allocated.
// Bytes past Len are not meaningful. The slice is stale after any growth.
func (b *TextBuffer) Storage() []byte { return b.buf }

// Bytes returns a slice view of the content, without the terminator.
func (b *TextBuffer) Bytes() []byte { return b.buf[:b.off] }

// CString returns the content followed by its terminator, or nil if nothing
// was allocated. After ReadRaw the terminator is written on demand; the
// cursor always leaves room for it.
func (b *TextBuffer) CString() []byte {
	if b.buf == nil {
		return nil
	}
	if !b.terminated {
		b.buf[b.off] = 0
		b.terminated = true
	}
	return b.buf[:b.off+1]
}

// Terminated reports whether a NUL currently follows the content. Only
// ReadRaw leaves the content unterminated.
func (b *TextBuffer) Terminated() bool { return b.terminated }

// String returns the content as a string.
func (b *TextBuffer) String() string { return string(b.buf[:b.off]) }

// Len returns the number of content bytes.
func (b *TextBuffer) Len() int { return b.off }

// Cap returns the size of the allocation, terminator slot included.
func (b *TextBuffer) Cap() int { return len(b.buf) }

// Available returns the number of bytes that can be written without growing.
func (b *TextBuffer) Available() int { return b.free }

// Empty reports whether the buffer holds no content.
func (b *TextBuffer) Empty() bool { return b.off == 0 }
