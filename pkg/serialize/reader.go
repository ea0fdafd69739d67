package serialize

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is wrapped by any read that would consume more bytes than
// the reader has left.
var ErrOutOfBounds = errors.New("read exceeds remaining bytes")

// Reader is a positional cursor over a byte region. It does not own the
// bytes; subslices returned by Read alias the underlying region, so the
// region must remain valid for as long as any returned slice is in use.
type Reader struct {
	bytes []byte
	rpos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{
		bytes: data,
	}
}

// Read returns the next n bytes as a subslice of the underlying region and
// advances the cursor. The subslice is a view, not a copy.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot read a negative number of bytes: %d", n)
	}
	if r.rpos+n > len(r.bytes) {
		return nil, fmt.Errorf("%w: num bytes available: %d, num bytes needed: %d", ErrOutOfBounds, len(r.bytes)-r.rpos, n)
	}
	bs := r.bytes[r.rpos : r.rpos+n]
	r.rpos += n
	return bs, nil
}

// Position returns the current cursor offset within the region.
func (r *Reader) Position() int {
	return r.rpos
}

// SetPosition moves the cursor to an absolute offset within the region.
func (r *Reader) SetPosition(pos int) error {
	if pos < 0 || pos > len(r.bytes) {
		return fmt.Errorf("position %d outside of region of length %d", pos, len(r.bytes))
	}
	r.rpos = pos
	return nil
}

// Remaining returns the number of unread bytes left in the region.
func (r *Reader) Remaining() int {
	return len(r.bytes) - r.rpos
}

// Length returns the total length of the underlying region.
func (r *Reader) Length() int {
	return len(r.bytes)
}

// Reset re-targets the reader at a new region and rewinds the cursor. It
// exists so that reader objects can be pooled and recycled; passing nil
// drops the reference to the previous region.
func (r *Reader) Reset(data []byte) {
	r.bytes = data
	r.rpos = 0
}
