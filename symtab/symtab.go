package symtab

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/tidwall/pretty"
)

// SymbolSetter is where resolved names go. Returns false if name was
// not accepted.
type SymbolSetter interface {
	SetName(addr uint64, name string) bool
}

// ImageBaser provides the load address of the analyzed image
type ImageBaser interface {
	ImageBase() uint64
}

// FixedBase is an ImageBaser with a known base
type FixedBase uint64

func (b FixedBase) ImageBase() uint64 {
	return uint64(b)
}

// Symbol is a name at an absolute address
type Symbol struct {
	Addr uint64 `json:"addr"`
	Name string `json:"name"`
}

func (s Symbol) String() string {
	return fmt.Sprintf("0x%X %s", s.Addr, s.Name)
}

// Table is an in-memory symbol table. Setting a name for an address
// that already has one overwrites it, setting an empty name removes it.
// Table is not safe for concurrent use.
type Table struct {
	names map[uint64]string
	// number of SetName calls, including overwrites
	NumSet int
	// number of times a name was replaced by a different one
	NumOverwritten int
}

var _ SymbolSetter = &Table{}

func NewTable() *Table {
	return &Table{
		names: map[uint64]string{},
	}
}

// SetName sets name for addr
func (t *Table) SetName(addr uint64, name string) bool {
	if t.names == nil {
		t.names = map[uint64]string{}
	}
	t.NumSet++
	if name == "" {
		delete(t.names, addr)
		return true
	}
	if prev, ok := t.names[addr]; ok && prev != name {
		t.NumOverwritten++
	}
	t.names[addr] = name
	return true
}

// Name returns name at addr
func (t *Table) Name(addr uint64) (string, bool) {
	name, ok := t.names[addr]
	return name, ok
}

func (t *Table) Len() int {
	return len(t.names)
}

// Symbols returns all symbols sorted by address
func (t *Table) Symbols() []Symbol {
	res := make([]Symbol, 0, len(t.names))
	for addr, name := range t.names {
		res = append(res, Symbol{Addr: addr, Name: name})
	}
	slices.SortFunc(res, func(a, b Symbol) int {
		switch {
		case a.Addr < b.Addr:
			return -1
		case a.Addr > b.Addr:
			return 1
		}
		return 0
	})
	return res
}

// WriteText writes symbols, one "0x<addr> <name>" per line
func (t *Table) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, sym := range t.Symbols() {
		if _, err := fmt.Fprintf(bw, "%s\n", sym); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// JSON returns symbols as pretty-printed JSON array
func (t *Table) JSON() ([]byte, error) {
	d, err := json.Marshal(t.Symbols())
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(d), nil
}
