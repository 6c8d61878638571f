package sso

import (
	"slices"
	"unicode/utf16"
	"unsafe"
)

/*
Base is a string with small string optimization.

Payloads that fit in 16 bytes together with a zero terminator live
inside the value (inline). Longer payloads live in a heap buffer
owned by the value (outline). Outline buffers are always
zero-terminated.

A Base is single-owner. Plain Go assignment (b := a) shares the
outline buffer; use Clone() for a copy and Move() to transfer ownership.
*/
type Base[C Char] struct {
	inline [inlineBytes / 8]uint64
	heap   []C
	n      uint8
	kind   kind
}

// Char is a code unit: a byte or an UTF-16 code unit
type Char interface {
	~uint8 | ~uint16
}

// String is a string of bytes
type String = Base[byte]

// WString is a string of UTF-16 code units
type WString = Base[uint16]

const inlineBytes = 16

type kind uint8

const (
	kindInline kind = iota
	kindOutline
)

func width[C Char]() int {
	var c C
	return int(unsafe.Sizeof(c))
}

// FitsInline returns true if a payload of n chars is stored without
// allocating
func FitsInline[C Char](n int) bool {
	return n*width[C]() < inlineBytes
}

// strlen returns number of chars up to the first zero
func strlen[C Char](p []C) int {
	if i := slices.Index(p, 0); i >= 0 {
		return i
	}
	return len(p)
}

// New creates a String from s. Like a C string, s ends at the first zero byte.
func New(s string) String {
	var res String
	res.AssignString(s)
	return res
}

// NewW creates a WString by encoding s as UTF-16
func NewW(s string) WString {
	var res WString
	res.AssignString(s)
	return res
}

// FromChars copies a borrowed, zero-terminated sequence.
// If p has no zero, all of p is used.
func FromChars[C Char](p []C) Base[C] {
	var res Base[C]
	res.Assign(p)
	return res
}

// Adopt takes ownership of a zero-terminated buffer without copying it.
// The result is always outline, even if the content would fit inline,
// so adopting never copies. The caller must not use buf afterwards.
func Adopt[C Char](buf []C) Base[C] {
	n := slices.Index(buf, 0)
	if n < 0 {
		panic("sso.Adopt: buffer is not zero-terminated")
	}
	return Base[C]{
		heap: buf[:n+1],
		kind: kindOutline,
	}
}

func (s *Base[C]) inlineChars() []C {
	p := (*C)(unsafe.Pointer(&s.inline))
	return unsafe.Slice(p, inlineBytes/width[C]())
}

func (s *Base[C]) storage() []C {
	if s.kind == kindOutline {
		return s.heap
	}
	return s.inlineChars()
}

// set stores a copy of p. p can alias s's own storage.
func (s *Base[C]) set(p []C) {
	n := len(p)
	if FitsInline[C](n) {
		dst := s.inlineChars()
		copy(dst, p)
		clear(dst[n:])
		s.n = uint8(n)
		s.heap = nil
		s.kind = kindInline
		return
	}
	buf := make([]C, n+1)
	copy(buf, p)
	s.heap = buf
	s.inline = [inlineBytes / 8]uint64{}
	s.n = 0
	s.kind = kindOutline
}

// Assign replaces the content with a copy of a zero-terminated sequence
func (s *Base[C]) Assign(p []C) {
	s.set(p[:strlen(p)])
}

// AssignString replaces the content with s. Bytes are stored as is for
// String, WString stores s encoded as UTF-16.
func (s *Base[C]) AssignString(str string) {
	if width[C]() == 1 {
		p := unsafe.Slice((*C)(unsafe.Pointer(unsafe.StringData(str))), len(str))
		s.Assign(p)
		return
	}
	u := utf16.Encode([]rune(str))
	p := unsafe.Slice((*C)(unsafe.Pointer(unsafe.SliceData(u))), len(u))
	s.Assign(p)
}

// Clone returns an independent copy. Inline values are copied as is,
// outline values get a freshly allocated buffer.
func (s *Base[C]) Clone() Base[C] {
	if s.kind == kindInline {
		return *s
	}
	buf := make([]C, len(s.heap))
	copy(buf, s.heap)
	return Base[C]{
		heap: buf,
		kind: kindOutline,
	}
}

// Move transfers the content to the returned value and leaves s empty
func (s *Base[C]) Move() Base[C] {
	res := *s
	*s = Base[C]{}
	return res
}

// Release drops the outline buffer (if any) and makes s empty
func (s *Base[C]) Release() {
	*s = Base[C]{}
}

// Len returns number of chars, not counting the terminator
func (s *Base[C]) Len() int {
	if s.kind == kindOutline {
		return len(s.heap) - 1
	}
	return int(s.n)
}

func (s *Base[C]) IsEmpty() bool {
	return s.Len() == 0
}

// IsInline returns true if the payload is stored without a heap buffer
func (s *Base[C]) IsInline() bool {
	return s.kind == kindInline
}

// Equal compares lengths and chars. There is no ordering.
func (s *Base[C]) Equal(other *Base[C]) bool {
	return s.Len() == other.Len() && slices.Equal(s.Chars(), other.Chars())
}

// Chars returns the payload, without the terminator.
// It's valid until the next modification of s.
func (s *Base[C]) Chars() []C {
	return s.storage()[:s.Len()]
}

// CStr returns the payload followed by a zero terminator.
// Callers must not modify it.
func (s *Base[C]) CStr() []C {
	return s.storage()[:s.Len()+1]
}

// Buffer makes sure s holds at least n chars and returns the payload
// for filling in place. When growing, existing chars are kept
// and new chars are zero.
func (s *Base[C]) Buffer(n int) []C {
	if n > s.Len() {
		s.grow(n)
	}
	return s.Chars()
}

func (s *Base[C]) grow(n int) {
	if s.kind == kindInline && FitsInline[C](n) {
		// chars past s.n are always zero
		s.n = uint8(n)
		return
	}
	if s.kind == kindOutline && cap(s.heap) > n {
		prev := len(s.heap) - 1
		s.heap = s.heap[:n+1]
		clear(s.heap[prev:])
		return
	}
	buf := make([]C, n+1)
	copy(buf, s.Chars())
	s.heap = buf
	s.inline = [inlineBytes / 8]uint64{}
	s.n = 0
	s.kind = kindOutline
}

// String converts to Go string. WString is decoded from UTF-16.
func (s *Base[C]) String() string {
	p := s.Chars()
	if width[C]() == 1 {
		return string(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(p))), len(p)))
	}
	u := unsafe.Slice((*uint16)(unsafe.Pointer(unsafe.SliceData(p))), len(p))
	return string(utf16.Decode(u))
}
