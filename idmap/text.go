package idmap

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kjk/idmap/sso"
	"github.com/kjk/idmap/u"
)

/*
Text form is for writing maps by hand, one record per line:

	# comment
	0x1000 main
	2040 helper
	#4096 by_decimal

Offsets are hex, 0x prefix is optional. "#" followed by a digit is
a decimal offset. Empty lines and other lines starting with "#" are skipped.
*/

func isComment(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	return len(line) == 1 || line[1] < '0' || line[1] > '9'
}

// ParseText parses records in text form
func ParseText(r io.Reader) ([]Record, error) {
	var res []Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isComment(line) {
			continue
		}
		offStr, name, ok := strings.Cut(line, " ")
		if !ok {
			offStr, name, ok = strings.Cut(line, "\t")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("line %d: expected '<offset> <name>', got '%s'", lineNo, line)
		}
		off, err := u.ParseAddress(offStr)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid offset '%s': %w", lineNo, offStr, err)
		}
		if off > 0xffffffff {
			return nil, fmt.Errorf("line %d: offset 0x%x doesn't fit in 32 bits", lineNo, off)
		}
		if len(name) > MaxNameLen {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrNameTooLong)
		}
		res = append(res, Record{
			Offset: uint32(off),
			Name:   sso.New(name),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// FormatText writes records as "0x<base+offset> <name>" lines
func FormatText(w io.Writer, recs []Record, base uint64) error {
	bw := bufio.NewWriter(w)
	for i := range recs {
		rec := &recs[i]
		_, err := fmt.Fprintf(bw, "0x%X %s\n", base+uint64(rec.Offset), rec.Name.String())
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
