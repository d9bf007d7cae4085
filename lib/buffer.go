package lib

import (
	"bytes"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/natefinch/atomic"
)

// Buffer accumulates rendered fragments in the order they are written.
//
// Growing a buffer by n bytes sets its capacity to max(2*cap, cap+n), so a
// buffer only allocates when a write does not fit.
type Buffer struct {
	data []byte
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func NewBufferSize(n int) *Buffer {
	if n <= 0 {
		return NewBuffer()
	}
	return &Buffer{data: make([]byte, 0, n)}
}

func NewBufferString(s string) *Buffer {
	b := NewBufferSize(len(s))
	b.data = append(b.data, s...)
	return b
}

func (b *Buffer) String() string {
	return string(b.data)
}

func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) Cap() int {
	return cap(b.data)
}

func (b *Buffer) IsEmpty() bool {
	return len(b.data) == 0
}

// Reserve ensures at least n more bytes can be written without allocating.
func (b *Buffer) Reserve(n int) {
	if n <= cap(b.data)-len(b.data) {
		return
	}
	capacity := cap(b.data) * 2
	if grown := cap(b.data) + n; grown > capacity {
		capacity = grown
	}
	data := make([]byte, len(b.data), capacity)
	copy(data, b.data)
	b.data = data
}

func (b *Buffer) Clear() {
	b.data = b.data[:0]
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.Reserve(len(p))
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *Buffer) WriteString(s string) (int, error) {
	b.Reserve(len(s))
	b.data = append(b.data, s...)
	return len(s), nil
}

func (b *Buffer) WriteByte(c byte) error {
	b.Reserve(1)
	b.data = append(b.data, c)
	return nil
}

func (b *Buffer) WriteRune(r rune) (int, error) {
	var encoded [utf8.UTFMax]byte
	n := utf8.EncodeRune(encoded[:], r)
	return b.Write(encoded[:n])
}

func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}

// Clone returns a copy whose capacity matches the current length.
func (b *Buffer) Clone() *Buffer {
	if cap(b.data) == 0 {
		return NewBuffer()
	}
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &Buffer{data: data}
}

func (b *Buffer) GoString() string {
	return strconv.Quote(string(b.data))
}

// WriteFile replaces the file at path with the buffer contents atomically.
func (b *Buffer) WriteFile(path string) error {
	return atomic.WriteFile(path, bytes.NewReader(b.data))
}
