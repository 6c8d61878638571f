package idmap

import (
	"errors"
	"fmt"

	"github.com/kjk/idmap/recstream"
	"github.com/kjk/idmap/sso"
)

var (
	// ErrTruncatedRecord is returned when data ends in the middle of a record
	ErrTruncatedRecord = errors.New("truncated record")
	// ErrNameTooLong is returned when writing a name longer than MaxNameLen
	ErrNameTooLong = errors.New("name too long")
)

const (
	// size of offset and name length that precede the name
	recordHeaderSize = 4 + 2
	// MaxNameLen is the longest name that fits in a record
	MaxNameLen = 0xffff
)

// Record maps an offset from image base to a name
type Record struct {
	Offset uint32
	Name   sso.String
}

// Size returns size of the record when serialized
func (r *Record) Size() int {
	return recordHeaderSize + r.Name.Len()
}

// Reader reads records from a recstream.Stream until there's no more data
type Reader struct {
	s *recstream.Stream

	// Record is available after ReadNextRecord().
	// It's over-written in next ReadNextRecord().
	Record Record

	// position of the current record within the stream
	CurrRecordPos int64

	// position of the next record within the stream
	NextRecordPos int64

	// position of the stream when the reader was created
	startPos int64

	err error

	// true if read all the data
	done bool
}

// NewReader creates a reader reading from current position of s
func NewReader(s *recstream.Stream) *Reader {
	return &Reader{
		s:             s,
		CurrRecordPos: s.Pos(),
		NextRecordPos: s.Pos(),
		startPos:      s.Pos(),
	}
}

// Done returns true if we're finished reading
func (r *Reader) Done() bool {
	return r.err != nil || r.done
}

func (r *Reader) fail(err error) bool {
	if errors.Is(err, recstream.ErrTruncated) {
		err = fmt.Errorf("%w at offset %d of '%s': %w", ErrTruncatedRecord, r.CurrRecordPos, r.s.Name(), err)
	}
	r.err = err
	return false
}

// ReadNextRecord reads next record, returns false when there are no
// more records. If returns false, check Err() to see if there were errors.
func (r *Reader) ReadNextRecord() bool {
	if r.Done() {
		return false
	}
	if !r.s.IsOpen() {
		return r.fail(recstream.ErrNotOpen)
	}
	if !r.s.HasMoreData() {
		r.done = true
		return false
	}
	r.CurrRecordPos = r.s.Pos()

	offset, err := recstream.Read[uint32](r.s)
	if err != nil {
		return r.fail(err)
	}
	nameLen, err := recstream.Read[uint16](r.s)
	if err != nil {
		return r.fail(err)
	}
	name, err := r.s.ReadBytes(int(nameLen))
	if err != nil {
		return r.fail(err)
	}
	r.Record.Offset = offset
	r.Record.Name = name
	r.NextRecordPos = r.s.Pos()
	return true
}

// Err returns error from last ReadNextRecord(). End of data is not an error.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads all remaining records
func ReadAll(s *recstream.Stream) ([]Record, error) {
	var res []Record
	r := NewReader(s)
	for r.ReadNextRecord() {
		res = append(res, Record{
			Offset: r.Record.Offset,
			Name:   r.Record.Name.Move(),
		})
	}
	return res, r.Err()
}

// ReadFile reads all records from a file, decompressing it if needed
func ReadFile(path string) ([]Record, error) {
	s := recstream.New()
	if err := s.OpenMaybeCompressed(path); err != nil {
		return nil, err
	}
	defer s.Close()
	return ReadAll(s)
}
