package idmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kjk/idmap/atomicfile"
	"github.com/kjk/idmap/u"
)

// Writer writes records
type Writer struct {
	w   io.Writer
	hdr [recordHeaderSize]byte

	// number of records written
	NumRecords int
	// number of bytes written
	Size int64
}

// NewWriter creates a writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: w,
	}
}

// WriteRecord writes a record
func (w *Writer) WriteRecord(offset uint32, name []byte) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes, max is %d", ErrNameTooLong, len(name), MaxNameLen)
	}
	binary.LittleEndian.PutUint32(w.hdr[0:4], offset)
	binary.LittleEndian.PutUint16(w.hdr[4:6], uint16(len(name)))
	n, err := w.w.Write(w.hdr[:])
	w.Size += int64(n)
	if err != nil {
		return err
	}
	n, err = w.w.Write(name)
	w.Size += int64(n)
	if err != nil {
		return err
	}
	w.NumRecords++
	return nil
}

// Write writes a record
func (w *Writer) Write(rec *Record) error {
	return w.WriteRecord(rec.Offset, rec.Name.Chars())
}

// Marshal serializes records
func Marshal(recs []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for i := range recs {
		if err := w.Write(&recs[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// WriteFile writes records to path atomically. The file is compressed
// if path has .gz, .zst or .br extension.
func WriteFile(path string, recs []Record) error {
	d, err := Marshal(recs)
	if err != nil {
		return err
	}
	d, err = u.CompressData(d, u.CompressionFromPath(path))
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, d)
}
