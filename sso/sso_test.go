package sso

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

var sinkLen int

func strOfLen(n int) string {
	return strings.Repeat("abcdefghij", n/10+1)[:n]
}

func TestNewRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 14, 15, 16, 1000} {
		src := strOfLen(n)
		s := New(src)
		assert.Equal(t, n, s.Len())
		assert.Equal(t, n < 16, s.IsInline())
		cs := s.CStr()
		assert.Equal(t, n+1, len(cs))
		assert.Equal(t, src, string(cs[:n]))
		assert.Equal(t, byte(0), cs[n])
		assert.Equal(t, src, s.String())
	}
}

func TestAllocations(t *testing.T) {
	for _, n := range []int{0, 1, 14, 15, 16, 1000} {
		src := strOfLen(n)
		allocs := testing.AllocsPerRun(100, func() {
			s := New(src)
			sinkLen = s.Len()
		})
		exp := 0.0
		if n >= 16 {
			exp = 1
		}
		assert.Equal(t, exp, allocs, "len %d", n)
	}
}

func TestNewStopsAtZero(t *testing.T) {
	s := New("foo\x00bar")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "foo", s.String())

	s2 := FromChars([]byte{'a', 'b', 0, 'c'})
	assert.Equal(t, "ab", s2.String())

	s3 := FromChars([]byte("no terminator"))
	assert.Equal(t, "no terminator", s3.String())
}

func TestWide(t *testing.T) {
	s := NewW("héllo")
	assert.Equal(t, 5, s.Len())
	assert.True(t, s.IsInline())
	assert.Equal(t, "héllo", s.String())

	// 7 code units * 2 bytes = 14 fits, 8 * 2 = 16 doesn't
	assert.True(t, FitsInline[uint16](7))
	assert.False(t, FitsInline[uint16](8))
	s = NewW("1234567")
	assert.True(t, s.IsInline())
	s = NewW("12345678")
	assert.False(t, s.IsInline())
	assert.Equal(t, "12345678", s.String())
	cs := s.CStr()
	assert.Equal(t, uint16(0), cs[len(cs)-1])
}

func TestAdopt(t *testing.T) {
	buf := []byte{'h', 'i', 0}
	s := Adopt(buf)
	assert.False(t, s.IsInline())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "hi", s.String())
	// no copy was made
	assert.True(t, &buf[0] == &s.CStr()[0])

	assert.Panics(t, func() {
		Adopt([]byte("abc"))
	})
}

func TestCloneOutlineIsIndependent(t *testing.T) {
	src := strOfLen(40)
	orig := New(src)
	cp := orig.Clone()
	assert.True(t, orig.Equal(&cp))

	b := cp.Buffer(40)
	b[0] = 'X'
	assert.Equal(t, src, orig.String())
	assert.Equal(t, "X"+src[1:], cp.String())
	assert.False(t, orig.Equal(&cp))

	// growing the copy re-allocates it and leaves orig alone
	cp.Buffer(100)
	assert.Equal(t, 100, cp.Len())
	assert.Equal(t, src, orig.String())
}

func TestCloneInline(t *testing.T) {
	orig := New("short")
	cp := orig.Clone()
	assert.True(t, cp.IsInline())
	cp.Buffer(5)[0] = 'S'
	assert.Equal(t, "short", orig.String())
	assert.Equal(t, "Short", cp.String())
}

func TestMove(t *testing.T) {
	for _, n := range []int{3, 300} {
		src := strOfLen(n)
		s := New(src)
		moved := s.Move()
		assert.Equal(t, 0, s.Len())
		assert.True(t, s.IsInline())
		assert.Equal(t, []byte{0}, s.CStr())

		s.Release()
		assert.Equal(t, src, moved.String())
	}
}

func TestAssign(t *testing.T) {
	s := New(strOfLen(100))
	assert.False(t, s.IsInline())
	s.AssignString("tiny")
	assert.True(t, s.IsInline())
	assert.Equal(t, "tiny", s.String())

	long := strOfLen(20)
	s.AssignString(long)
	assert.False(t, s.IsInline())
	assert.Equal(t, long, s.String())

	// assign from own storage
	s.Assign(s.Chars()[10:])
	assert.Equal(t, long[10:], s.String())
	assert.True(t, s.IsInline())
	s.Assign(s.Chars()[2:])
	assert.Equal(t, long[12:], s.String())
}

func TestEqual(t *testing.T) {
	a := New("Foo")
	b := New("Foo")
	c := New("Fo")
	d := New("foo")
	assert.True(t, a.Equal(&b))
	assert.False(t, a.Equal(&c))
	assert.False(t, a.Equal(&d))

	long1 := New(strOfLen(50))
	long2 := New(strOfLen(50))
	assert.True(t, long1.Equal(&long2))

	adopted := Adopt([]byte{'F', 'o', 'o', 0})
	assert.True(t, a.Equal(&adopted))

	var empty1, empty2 String
	assert.True(t, empty1.Equal(&empty2))
	assert.True(t, empty1.IsEmpty())
}

func TestBuffer(t *testing.T) {
	var s String
	b := s.Buffer(3)
	assert.Equal(t, 3, len(b))
	assert.True(t, s.IsInline())
	copy(b, "abc")
	assert.Equal(t, "abc", s.String())

	// growing keeps content and zero fills
	b = s.Buffer(20)
	assert.Equal(t, 20, len(b))
	assert.False(t, s.IsInline())
	assert.Equal(t, "abc", string(b[:3]))
	assert.Equal(t, make([]byte, 17), b[3:])
	assert.Equal(t, byte(0), s.CStr()[20])

	// smaller request doesn't shrink
	b = s.Buffer(5)
	assert.Equal(t, 20, len(b))

	// outline grow within capacity
	a := Adopt(append(make([]byte, 0, 64), 'x', 'y', 0))
	b = a.Buffer(10)
	assert.Equal(t, 10, len(b))
	assert.Equal(t, "xy", string(b[:2]))
	assert.Equal(t, make([]byte, 8), b[2:])
	assert.Equal(t, 11, len(a.CStr()))
}
