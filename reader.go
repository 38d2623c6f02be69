package textbuf

import "io"

// Reader reads the live content of a TextBuffer. Bytes appended after the
// Reader was created are visible to it. Once the buffer is reused or
// released, every call returns ErrStaleReader until Rewind re-attaches it.
type Reader struct {
	b   *TextBuffer
	pos int
	gen uint64 // buffer generation the position belongs to
}

var (
	_ io.Reader     = (*Reader)(nil)
	_ io.ByteReader = (*Reader)(nil)
	_ io.WriterTo   = (*Reader)(nil)
	_ io.Seeker     = (*Reader)(nil)
)

// NewReader creates a Reader positioned at the start of b's content.
func NewReader(b *TextBuffer) *Reader {
	return &Reader{b: b, gen: b.gen}
}

// unread returns the content past the read position.
func (r *Reader) unread() ([]byte, error) {
	if r.gen != r.b.gen {
		return nil, ErrStaleReader
	}
	content := r.b.Bytes()
	if r.pos >= len(content) {
		return nil, nil
	}
	return content[r.pos:], nil
}

// Read implements the [io.Reader] interface.
func (r *Reader) Read(p []byte) (int, error) {
	rest, err := r.unread()
	if err != nil {
		return 0, err
	}
	if len(rest) == 0 {
		return 0, io.EOF
	}
	n := copy(p, rest)
	r.pos += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (r *Reader) ReadByte() (byte, error) {
	rest, err := r.unread()
	if err != nil {
		return 0, err
	}
	if len(rest) == 0 {
		return 0, io.EOF
	}
	r.pos++
	return rest[0], nil
}

// WriteTo implements the [io.WriterTo] interface.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	rest, err := r.unread()
	if err != nil || len(rest) == 0 {
		return 0, err
	}
	n, err := w.Write(rest)
	if n < 0 || n > len(rest) {
		return 0, ErrInvalidWrite
	}
	r.pos += n
	if err != nil {
		return int64(n), err
	}
	if n < len(rest) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// Seek implements the [io.Seeker] interface. io.SeekEnd is relative to the
// buffer length at the time of the call.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.gen != r.b.gen {
		return int64(r.pos), ErrStaleReader
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(r.pos) + offset
	case io.SeekEnd:
		abs = int64(r.b.Len()) + offset
	default:
		return int64(r.pos), ErrInvalidWhence
	}
	if abs < 0 {
		return int64(r.pos), ErrInvalidSeek
	}
	r.pos = int(abs)
	return abs, nil
}

// Rewind moves the reader to the start of the buffer's current content,
// clearing a stale state.
func (r *Reader) Rewind() {
	r.pos = 0
	r.gen = r.b.gen
}

// Available returns the number of content bytes left to read, or 0 when stale.
func (r *Reader) Available() int {
	rest, _ := r.unread()
	return len(rest)
}
