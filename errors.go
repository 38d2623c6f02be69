package textbuf

import "errors"

var (
	// ErrOutOfMemory indicates that a growth request could not be satisfied.
	// The buffer keeps its previous storage and content when this is returned.
	ErrOutOfMemory = errors.New("textbuf: out of memory")

	// ErrNegativeCount indicates a growth or allocation request with a negative size.
	ErrNegativeCount = errors.New("textbuf: negative byte count")

	// ErrNilReader indicates a read was attempted from a nil io.Reader.
	ErrNilReader = errors.New("textbuf: read from a nil io.Reader")

	// ErrInvalidRead indicates that an io.Reader returned an invalid (negative or outbound) count from Read.
	ErrInvalidRead = errors.New("textbuf: reader returned invalid count from Read")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative or outbound) count from Write.
	ErrInvalidWrite = errors.New("textbuf: writer returned invalid count from Write")

	// ErrStaleReader indicates a Reader was used after its buffer was reused or released.
	ErrStaleReader = errors.New("textbuf: buffer content discarded since the reader was positioned")

	// ErrInvalidSeek indicates a seek was attempted to invalid position.
	ErrInvalidSeek = errors.New("textbuf: seek to a invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("textbuf: unsupported whence")
)
