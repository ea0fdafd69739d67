package serialize

import (
	"fmt"
)

// Sink is the write target accepted by the Serialize* functions. Next
// returns a writable window of exactly n bytes.
type Sink interface {
	Next(n int) []byte
}

// FixedSizeWriter writes into a pre-sized buffer and treats any mismatch
// between the declared size and the bytes actually written as a bug. Size
// the buffer with the ByteSize* functions before serializing into it.
type FixedSizeWriter struct {
	bytes []byte
	wpos  int
}

func NewFixedSizeWriter(size int) *FixedSizeWriter {
	return &FixedSizeWriter{
		bytes: make([]byte, size),
	}
}

func (w *FixedSizeWriter) Next(n int) []byte {
	if w.wpos+n > len(w.bytes) {
		panic(fmt.Sprintf("not enough space, need %d bytes but only %d available", n, len(w.bytes)-w.wpos))
	}
	slice := w.bytes[w.wpos : w.wpos+n]
	w.wpos += n
	return slice
}

func (w *FixedSizeWriter) Bytes() []byte {
	if w.wpos != len(w.bytes) {
		panic(fmt.Sprintf("leftover space, missing %d bytes", +len(w.bytes)-w.wpos))
	}
	return w.bytes[:w.wpos]
}

// Writer is a growable byte sink. Unlike FixedSizeWriter it reallocates
// larger backing storage as needed, copying already-written bytes forward,
// and retains its capacity across Reset so pooled writers do not re-grow
// on every reuse.
type Writer struct {
	bytes []byte
	wpos  int
}

func NewWriter(capacity int) *Writer {
	return &Writer{
		bytes: make([]byte, capacity),
	}
}

// Next returns a writable window of n bytes, growing the backing storage
// if required, and advances the written length.
func (w *Writer) Next(n int) []byte {
	w.Grow(w.wpos + n)
	slice := w.bytes[w.wpos : w.wpos+n]
	w.wpos += n
	return slice
}

// WriteBytes appends a copy of bs.
func (w *Writer) WriteBytes(bs []byte) {
	copy(w.Next(len(bs)), bs)
}

// Grow ensures the backing storage holds at least capacity bytes. Written
// bytes survive the reallocation.
func (w *Writer) Grow(capacity int) {
	if capacity <= len(w.bytes) {
		return
	}
	newCap := len(w.bytes) * 2
	if newCap < capacity {
		newCap = capacity
	}
	grown := make([]byte, newCap)
	copy(grown, w.bytes[:w.wpos])
	w.bytes = grown
}

// Len returns the number of bytes written since the last Reset.
func (w *Writer) Len() int {
	return w.wpos
}

// Capacity returns the size of the backing storage.
func (w *Writer) Capacity() int {
	return len(w.bytes)
}

// Reset discards the written length but keeps the backing storage.
func (w *Writer) Reset() {
	w.wpos = 0
}

// Bytes returns the written prefix of the backing storage. The slice
// aliases the writer's storage and is invalidated by further writes or
// Reset.
func (w *Writer) Bytes() []byte {
	return w.bytes[:w.wpos]
}
