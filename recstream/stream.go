package recstream

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/kjk/idmap/sso"
	"github.com/kjk/idmap/u"
)

var (
	// ErrNotOpen is returned when reading from / writing to a closed stream
	// and wrapped by Open on failure
	ErrNotOpen = errors.New("stream is not open")
	// ErrTruncated is returned when a read would go past the end of data
	ErrTruncated = errors.New("not enough data")
	// ErrNotWritable is returned when writing to a stream opened for reading
	ErrNotWritable = errors.New("stream is not writable")
)

// Mode is how the stream was opened
type Mode int

const (
	ModeNone Mode = iota
	ModeReadOnly
	ModeBinaryReadOnly
	ModeReadWrite
	ModeBinaryReadWrite
)

func (m Mode) String() string {
	switch m {
	case ModeReadOnly:
		return "read-only"
	case ModeBinaryReadOnly:
		return "binary read-only"
	case ModeReadWrite:
		return "read-write"
	case ModeBinaryReadWrite:
		return "binary read-write"
	}
	return "none"
}

func (m Mode) writable() bool {
	return m >= ModeReadWrite
}

// Scalar is a fixed size value that can be read with Read
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64
}

/*
Stream reads (or writes) binary data sequentially.

Total size is known when opened. Pos() only moves forward and reads
never go past Size(): a read that would is rejected with ErrTruncated
and doesn't move the position.

If the underlying reader fails mid-read, Pos() still counts the bytes
it consumed and the stream is failed: every later read returns the
same error.

Stream is not safe for concurrent use.
*/
type Stream struct {
	// ByteOrder for scalars, binary.LittleEndian by default
	ByteOrder binary.ByteOrder

	name string
	mode Mode
	c    io.Closer
	r    *bufio.Reader
	w    *bufio.Writer
	pos  int64
	size int64
	err  error
	buf  [8]byte
}

// New returns a closed stream
func New() *Stream {
	return &Stream{
		ByteOrder: binary.LittleEndian,
	}
}

// OpenFile is a shortcut for New() + Open()
func OpenFile(path string, mode Mode) (*Stream, error) {
	s := New()
	err := s.Open(path, mode)
	return s, err
}

func (s *Stream) reset() {
	s.name = ""
	s.mode = ModeNone
	s.c = nil
	s.r = nil
	s.w = nil
	s.pos = 0
	s.size = 0
	s.err = nil
	if s.ByteOrder == nil {
		s.ByteOrder = binary.LittleEndian
	}
}

// Open opens a file. Stream that is already open is closed first.
// Read modes need the file to exist, write modes create or truncate it.
// On failure the stream is closed and the error wraps ErrNotOpen.
func (s *Stream) Open(path string, mode Mode) error {
	if s.IsOpen() {
		_ = s.Close()
	}
	s.reset()

	var f *os.File
	var err error
	switch mode {
	case ModeReadOnly, ModeBinaryReadOnly:
		f, err = os.Open(path)
	case ModeReadWrite, ModeBinaryReadWrite:
		f, err = os.Create(path)
	default:
		err = fmt.Errorf("invalid mode %d", mode)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotOpen, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrNotOpen, err)
	}
	if !mode.writable() && !st.Mode().IsRegular() {
		f.Close()
		return fmt.Errorf("%w: '%s' is not a regular file", ErrNotOpen, path)
	}

	s.name = path
	s.mode = mode
	s.c = f
	s.size = st.Size()
	if mode.writable() {
		s.w = bufio.NewWriter(f)
	} else {
		s.r = bufio.NewReader(f)
	}
	return nil
}

// OpenBytes opens an in-memory extent for reading.
// name is only used for error messages.
func (s *Stream) OpenBytes(name string, d []byte) {
	s.openReader(name, bytes.NewReader(d), int64(len(d)))
}

// openReader opens r for reading, trusting it to provide size bytes
func (s *Stream) openReader(name string, r io.Reader, size int64) {
	if s.IsOpen() {
		_ = s.Close()
	}
	s.reset()
	s.name = name
	s.mode = ModeBinaryReadOnly
	s.r = bufio.NewReader(r)
	s.size = size
}

// OpenMaybeCompressed opens a file for reading, decompressing it
// if it has .gz, .bz2, .zst or .br extension.
// Compressed data is decompressed in memory to learn its size.
func (s *Stream) OpenMaybeCompressed(path string) error {
	if u.CompressionFromPath(path) == u.CompressionNone {
		return s.Open(path, ModeBinaryReadOnly)
	}
	if s.IsOpen() {
		_ = s.Close()
	}
	s.reset()
	d, err := u.ReadFileMaybeCompressed(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotOpen, err)
	}
	s.OpenBytes(path, d)
	return nil
}

// IsOpen returns true if the stream holds a resource
func (s *Stream) IsOpen() bool {
	return (s.r != nil || s.w != nil) && s.mode != ModeNone
}

// CanWrite returns true if the stream is open for writing
func (s *Stream) CanWrite() bool {
	return s.IsOpen() && s.mode.writable()
}

func (s *Stream) Name() string {
	return s.name
}

func (s *Stream) Mode() Mode {
	return s.mode
}

// Pos returns current position
func (s *Stream) Pos() int64 {
	return s.pos
}

// Size returns total size, as of the time it was opened
// (grows when writing)
func (s *Stream) Size() int64 {
	return s.size
}

// Remaining returns number of bytes left to read
func (s *Stream) Remaining() int64 {
	return s.size - s.pos
}

// HasMoreData returns true if not all data has been read
func (s *Stream) HasMoreData() bool {
	return s.pos < s.size
}

// Close closes the stream. Can be called multiple times.
func (s *Stream) Close() error {
	var err error
	if s.w != nil {
		err = s.w.Flush()
	}
	if s.c != nil {
		err2 := s.c.Close()
		if err == nil {
			err = err2
		}
	}
	s.reset()
	return err
}

func (s *Stream) checkRead(n int64) error {
	if s.r == nil {
		return ErrNotOpen
	}
	if s.err != nil {
		return s.err
	}
	if n > s.Remaining() {
		return fmt.Errorf("%w: reading %d bytes at offset %d of '%s' (size %d)", ErrTruncated, n, s.pos, s.name, s.size)
	}
	return nil
}

// ReadFull reads exactly len(d) bytes
func (s *Stream) ReadFull(d []byte) error {
	n := int64(len(d))
	if err := s.checkRead(n); err != nil {
		return err
	}
	nRead, err := io.ReadFull(s.r, d)
	s.pos += int64(nRead)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		// the underlying data shrank since we got the size
		err = fmt.Errorf("%w: reading %d bytes at offset %d of '%s': %w", ErrTruncated, n, s.pos-int64(nRead), s.name, err)
	}
	s.err = err
	return err
}

// ReadBytes reads n bytes as a string. Storage is sized with
// sso.String.Buffer() and filled in place.
func (s *Stream) ReadBytes(n int) (sso.String, error) {
	var res sso.String
	if n < 0 {
		return res, fmt.Errorf("negative length %d", n)
	}
	if err := s.checkRead(int64(n)); err != nil {
		return res, err
	}
	buf := res.Buffer(n)
	u.PanicIf(len(buf) != n, "Buffer(%d) returned %d bytes", n, len(buf))
	err := s.ReadFull(buf)
	return res, err
}

// Read reads a scalar value of type T
func Read[T Scalar](s *Stream) (T, error) {
	var v T
	n := int(unsafe.Sizeof(v))
	d := s.buf[:n]
	if err := s.ReadFull(d); err != nil {
		return v, err
	}
	switch n {
	case 1:
		v = T(d[0])
	case 2:
		v = T(s.ByteOrder.Uint16(d))
	case 4:
		v = T(s.ByteOrder.Uint32(d))
	default:
		v = T(s.ByteOrder.Uint64(d))
	}
	return v, nil
}

// WriteBytes writes raw bytes
func (s *Stream) WriteBytes(d []byte) error {
	if s.w == nil {
		if s.r != nil {
			return ErrNotWritable
		}
		return ErrNotOpen
	}
	n, err := s.w.Write(d)
	s.pos += int64(n)
	if s.pos > s.size {
		s.size = s.pos
	}
	return err
}

// Write writes a scalar value of type T
func Write[T Scalar](s *Stream, v T) error {
	n := int(unsafe.Sizeof(v))
	d := s.buf[:n]
	switch n {
	case 1:
		d[0] = byte(v)
	case 2:
		s.ByteOrder.PutUint16(d, uint16(v))
	case 4:
		s.ByteOrder.PutUint32(d, uint32(v))
	default:
		s.ByteOrder.PutUint64(d, uint64(v))
	}
	return s.WriteBytes(d)
}
