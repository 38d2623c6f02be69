package textbuf

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mocks and Helpers ---

// chunkReader returns one chunk per Read call, then io.EOF.
// It records the size of every destination slice it was handed.
type chunkReader struct {
	chunks    [][]byte
	requested []int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	c.requested = append(c.requested, len(p))
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}

func newChunkReader(sizes ...int) *chunkReader {
	c := &chunkReader{}
	for i, size := range sizes {
		c.chunks = append(c.chunks, bytes.Repeat([]byte{byte('a' + i)}, size))
	}
	return c
}

// countReader returns a fixed count and error on every call.
type countReader struct {
	n   int
	err error
}

func (c countReader) Read(p []byte) (int, error) {
	if c.n > 0 && c.n <= len(p) {
		copy(p, bytes.Repeat([]byte{'r'}, c.n))
	}
	return c.n, c.err
}

var errBoom = errors.New("boom")

// --- Read Test Suite ---

type ReadTestSuite struct {
	suite.Suite
}

func (s *ReadTestSuite) TestReadTextOneReadPerCall() {
	b := New(MinSize)
	r := newChunkReader(10, 300, 7)

	for i, size := range []int{10, 300, 7} {
		before, free := b.Len(), b.Available()
		n, err := b.ReadText(r)
		s.Require().NoError(err)
		s.Assert().Equal(size, n)
		s.Assert().Equal(before+size, b.Len())
		s.Assert().Equal(free-size-1, b.Available(), "terminator slot is reserved")
		s.Assert().Equal(byte(0), b.Storage()[b.Len()])
		s.Assert().Len(r.requested, i+1, "exactly one Read per call")
	}

	n, err := b.ReadText(r)
	s.Assert().Zero(n)
	s.Assert().ErrorIs(err, io.EOF)
	s.Assert().Equal(317, b.Len())
}

func (s *ReadTestSuite) TestReadTextImmediateEOF() {
	b := New(MinSize)
	n, err := b.ReadText(strings.NewReader(""))
	s.Assert().Zero(n)
	s.Assert().ErrorIs(err, io.EOF)
	s.Assert().Zero(b.Len())
	s.Assert().Equal(MinSize, b.Cap())
	s.Assert().Equal(MinSize-1, b.Available())
	s.Assert().Equal([]byte{0}, b.CString())
}

func (s *ReadTestSuite) TestReadRawNeverTerminates() {
	b := New(8192)
	storage := b.Storage()
	storage[2] = 'Z'

	n, err := b.ReadRaw(newChunkReader(2))
	s.Require().NoError(err)
	s.Assert().Equal(2, n)
	s.Assert().Equal([]byte("aa"), b.Bytes())
	s.Assert().Equal(byte('Z'), b.Storage()[2], "no terminator after raw data")
	s.Assert().Equal(8192-1-2, b.Available())
}

func (s *ReadTestSuite) TestCStringAfterRawReadOverStaleContent() {
	b := New(8192)
	_, _ = b.WriteString("stale-content")
	b.Reuse()

	n, err := b.ReadRaw(strings.NewReader("ab"))
	s.Require().NoError(err)
	s.Require().Equal(2, n)
	s.Assert().False(b.Terminated())
	s.Assert().Equal(byte('a'), b.Storage()[2], "stale byte still follows the raw data")

	s.Assert().Equal([]byte("ab\x00"), b.CString())
	s.Assert().True(b.Terminated())
	s.Assert().Equal(8192-1-2, b.Available(), "terminating on demand does not consume space")

	// Appending after raw data restores the terminator as usual.
	b.Reuse()
	_, _ = b.ReadRaw(strings.NewReader("xyz"))
	_, err = b.WriteString("!")
	s.Require().NoError(err)
	s.Assert().True(b.Terminated())
	s.Assert().Equal([]byte("xyz!\x00"), b.CString())
}

func (s *ReadTestSuite) TestReadTextTerminates() {
	b := New(8192)
	b.Storage()[2] = 'Z'

	_, err := b.ReadText(newChunkReader(2))
	s.Require().NoError(err)
	s.Assert().Equal(byte(0), b.Storage()[2])
	s.Assert().True(b.Terminated())
}

func (s *ReadTestSuite) TestReadWindow() {
	s.T().Run("RawRequestsAllButOneFreeByte", func(t *testing.T) {
		b := New(8192)
		r := newChunkReader(1)
		_, err := b.ReadRaw(r)
		require.NoError(t, err)
		assert.Equal(t, []int{8190}, r.requested)
	})

	s.T().Run("RawGrowsToMinimum", func(t *testing.T) {
		b := New(MinSize)
		_, err := b.ReadRaw(newChunkReader(1))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Cap()-1, RawReadMin)
		assert.Equal(t, 8192, b.Cap())
	})

	s.T().Run("TextGrowsToMinimum", func(t *testing.T) {
		b := New(MinSize)
		_, _ = b.CopyFrom(make([]byte, 600))
		_, err := b.ReadText(newChunkReader(1))
		require.NoError(t, err)
		assert.Equal(t, 2048, b.Cap())
	})

	s.T().Run("EmptyBufferAllocates", func(t *testing.T) {
		b := New(0)
		n, err := b.ReadText(strings.NewReader("hi"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, MinSize, b.Cap())
		assert.Equal(t, []byte("hi\x00"), b.CString())
	})
}

func (s *ReadTestSuite) TestReadErrors() {
	s.T().Run("NilReader", func(t *testing.T) {
		b := New(MinSize)
		_, err := b.ReadRaw(nil)
		assert.ErrorIs(t, err, ErrNilReader)
		_, err = b.ReadText(nil)
		assert.ErrorIs(t, err, ErrNilReader)
	})

	s.T().Run("ErrorPropagatedStateUnchanged", func(t *testing.T) {
		for _, read := range []func(*TextBuffer, io.Reader) (int, error){
			(*TextBuffer).ReadRaw, (*TextBuffer).ReadText,
		} {
			b := New(8192)
			_, _ = b.WriteString("keep")
			free := b.Available()

			n, err := read(b, iotest.ErrReader(errBoom))
			assert.Zero(t, n)
			assert.ErrorIs(t, err, errBoom)
			assert.Equal(t, "keep", b.String())
			assert.Equal(t, free, b.Available())
		}
	})

	s.T().Run("DataReturnedWithErrorIsKept", func(t *testing.T) {
		b := New(MinSize)
		n, err := b.ReadText(countReader{n: 3, err: errBoom})
		assert.Equal(t, 3, n)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, "rrr", b.String())
	})

	s.T().Run("InvalidCounts", func(t *testing.T) {
		for _, bad := range []int{-1, 1 << 20} {
			b := New(8192)
			_, _ = b.WriteString("keep")
			free := b.Available()

			n, err := b.ReadRaw(countReader{n: bad})
			assert.Zero(t, n)
			assert.ErrorIs(t, err, ErrInvalidRead)
			assert.Equal(t, "keep", b.String())
			assert.Equal(t, free, b.Available())
		}
	})

	s.T().Run("GrowthFailure", func(t *testing.T) {
		b := New(MinSize, WithAllocator(NewLimitAllocator(nil, MinSize)))
		_, _ = b.CopyFrom(make([]byte, 600))

		r := newChunkReader(1)
		n, err := b.ReadText(r)
		assert.Zero(t, n)
		assert.ErrorIs(t, err, ErrOutOfMemory)
		assert.Empty(t, r.requested, "no Read without space")
		assert.Equal(t, 600, b.Len())
	})
}

func (s *ReadTestSuite) TestReadFrom() {
	s.T().Run("SlurpsUntilEOF", func(t *testing.T) {
		want := strings.Repeat("0123456789", 1000)
		b := New(0)
		n, err := b.ReadFrom(iotest.HalfReader(strings.NewReader(want)))
		require.NoError(t, err)
		assert.EqualValues(t, len(want), n)
		assert.Equal(t, want, b.String())
		assert.Equal(t, byte(0), b.Storage()[b.Len()])
	})

	s.T().Run("PropagatesError", func(t *testing.T) {
		b := New(MinSize)
		_, err := b.ReadFrom(io.MultiReader(strings.NewReader("head"), iotest.ErrReader(errBoom)))
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, "head", b.String())
	})

	s.T().Run("NoProgress", func(t *testing.T) {
		b := New(MinSize)
		_, err := b.ReadFrom(countReader{})
		assert.ErrorIs(t, err, io.ErrNoProgress)
	})
}

func (s *ReadTestSuite) TestReadRawFromFile() {
	want := bytes.Repeat([]byte{0x00, 0xFF, 'a', '\n'}, 5000)
	path := filepath.Join(s.T().TempDir(), "raw.bin")
	s.Require().NoError(os.WriteFile(path, want, 0o600))

	f, err := os.Open(path)
	s.Require().NoError(err)
	defer f.Close()

	b := New(MinSize)
	for {
		_, err := b.ReadRaw(f)
		if errors.Is(err, io.EOF) {
			break
		}
		s.Require().NoError(err)
	}
	s.Assert().Equal(want, b.Bytes())
}

// TestRead runs the ReadTestSuite.
func TestRead(t *testing.T) {
	suite.Run(t, new(ReadTestSuite))
}
