package textbuf

import (
	"fmt"
	"io"
)

// Format appends the result of fmt.Sprintf(format, args...) without an
// intermediate string.
func (b *TextBuffer) Format(format string, args ...any) (int, error) {
	return fmt.Fprintf(b, format, args...)
}

// Chomp strips trailing line endings from the content.
func (b *TextBuffer) Chomp() {
	for b.off > 0 && (b.buf[b.off-1] == '\n' || b.buf[b.off-1] == '\r') {
		b.off--
		b.free++
		b.buf[b.off] = 0
		b.terminated = true
	}
}

// WriteTo implements the io.WriterTo interface. The content is left in place.
func (b *TextBuffer) WriteTo(w io.Writer) (int64, error) {
	if b.off == 0 {
		return 0, nil
	}
	n, err := w.Write(b.buf[:b.off])
	if n < 0 || n > b.off {
		return 0, ErrInvalidWrite
	}
	if err != nil {
		return int64(n), err
	}
	if n < b.off {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}
