package idmap

import (
	"bytes"
	"fmt"
	"time"

	"github.com/kjk/idmap/log"
	"github.com/kjk/idmap/recstream"
	"github.com/kjk/idmap/symtab"
	"github.com/kjk/idmap/u"
)

// Stats describes the result of Apply
type Stats struct {
	// number of names given to symbol table
	Submitted int
	// number of names symbol table didn't accept
	Rejected int
	// bytes consumed by fully read records, counted from where
	// the Reader started
	Bytes    int64
	Duration time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%d names (%d rejected), %s in %s", s.Submitted, s.Rejected, u.FormatSize(s.Bytes), u.FormatDuration(s.Duration))
}

// Apply reads all records and gives (base + offset, name) to tbl, in
// order they are stored. There's no de-duplication: when an address
// repeats, tbl decides (usually the last name wins).
// A name is only submitted up to its first zero byte.
// If data is truncated, names read before are kept applied and the
// error wraps ErrTruncatedRecord.
func Apply(r *Reader, base uint64, tbl symtab.SymbolSetter) (Stats, error) {
	timeStart := time.Now()
	var st Stats
	for r.ReadNextRecord() {
		addr := base + uint64(r.Record.Offset)
		name := cString(r.Record.Name.Chars())
		st.Submitted++
		if !tbl.SetName(addr, name) {
			st.Rejected++
			log.Verbosef("idmap: name '%s' at 0x%X rejected\n", name, addr)
		}
	}
	st.Bytes = r.NextRecordPos - r.startPos
	st.Duration = time.Since(timeStart)
	return st, r.Err()
}

func cString(d []byte) string {
	if i := bytes.IndexByte(d, 0); i >= 0 {
		d = d[:i]
	}
	return string(d)
}

// ApplyFile applies names from a file. If the file can't be opened,
// nothing is applied and the error wraps recstream.ErrNotOpen.
func ApplyFile(path string, base uint64, tbl symtab.SymbolSetter) (Stats, error) {
	s := recstream.New()
	if err := s.OpenMaybeCompressed(path); err != nil {
		return Stats{}, err
	}
	defer s.Close()

	log.Verbosef("idmap: applying '%s' (%d bytes), image base 0x%X\n", path, s.Size(), base)
	st, err := Apply(NewReader(s), base, tbl)
	vals := []any{"file", path, "base", fmt.Sprintf("0x%X", base), "submitted", st.Submitted, "rejected", st.Rejected}
	if err != nil {
		vals = append(vals, "error", err.Error())
	}
	log.EventWithDuration("idmap.apply", st.Duration, vals...)
	return st, err
}
