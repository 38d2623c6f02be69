package textbuf

import (
	"errors"
	"io"
)

// maxConsecutiveEmptyReads bounds how many (0, nil) reads ReadFrom tolerates.
const maxConsecutiveEmptyReads = 100

// ReadRaw issues a single Read on r into the free space of the buffer,
// growing first so that at least RawReadMin bytes are free. The data is
// treated as binary: no terminator is written after it.
//
// ReadRaw returns (0, io.EOF) at end of stream. Any other error from r is
// returned unchanged, together with the bytes that came with it.
func (b *TextBuffer) ReadRaw(r io.Reader) (int, error) {
	return b.readOnce(r, RawReadMin, false)
}

// ReadText issues a single Read on r into the free space of the buffer,
// growing first so that at least TextReadMin bytes are free, and terminates
// whatever it read. Error handling matches ReadRaw.
func (b *TextBuffer) ReadText(r io.Reader) (int, error) {
	return b.readOnce(r, TextReadMin, true)
}

func (b *TextBuffer) readOnce(r io.Reader, minFree int, terminate bool) (int, error) {
	if r == nil {
		return 0, ErrNilReader
	}
	if b.free < minFree {
		if err := b.Grow(minFree); err != nil {
			return 0, err
		}
	}

	// One byte of slack is left beyond the terminator slot.
	window := b.buf[b.off : b.off+b.free-1]
	n, err := r.Read(window)
	if n < 0 || n > len(window) {
		return 0, ErrInvalidRead
	}
	if n > 0 {
		b.off += n
		b.free -= n
		b.terminated = terminate
		if terminate {
			b.buf[b.off] = 0
			b.free--
		}
	}
	return n, err
}

// ReadFrom implements the io.ReaderFrom interface. It calls ReadText until r
// reports io.EOF, which is not returned as an error.
func (b *TextBuffer) ReadFrom(r io.Reader) (int64, error) {
	var (
		total int64
		empty int
	)
	for {
		n, err := b.ReadText(r)
		total += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return total, err
		}
		if n > 0 {
			empty = 0
			continue
		}
		// To avoid spinning forever on a reader that never makes progress.
		if empty++; empty >= maxConsecutiveEmptyReads {
			return total, io.ErrNoProgress
		}
	}
}
