package u

import (
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		s   string
		exp uint64
	}{
		{"0x400000", 0x400000},
		{"400000", 0x400000},
		{" 0X10 ", 0x10},
		{"#16", 16},
		{"0x7ff600000000", 0x7ff600000000},
	}
	for _, test := range tests {
		got, err := ParseAddress(test.s)
		assert.NoError(t, err)
		assert.Equal(t, test.exp, got)
	}
	_, err := ParseAddress("0xzz")
	assert.Error(t, err)
	_, err = ParseAddress("")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.0 kB", FormatSize(1000))
	assert.Equal(t, "12 B", FormatSize(12))
	assert.Equal(t, "15 µs", FormatDuration(15*time.Microsecond))
	assert.Equal(t, "1.50 ms", FormatDuration(1500*time.Microsecond))
	assert.Equal(t, "2.5s", FormatDuration(2500*time.Millisecond))
}

func TestPanicIf(t *testing.T) {
	PanicIf(false)
	assert.Panics(t, func() { PanicIf(true, "bad %d", 1) })
}
