package substream

import (
	"github.com/trongtindev/FishNet/pkg/serialize"
)

// WithWrite runs fn with a write-mode stream and guarantees disposal on
// every exit path, including an fn error or panic. Use BeginWrite directly
// when the stream has to outlive the call, e.g. when disposal happens
// after the enclosing message is sent.
func WithWrite(pool *BufferPool, minCapacity int, fn func(*SubStream, *serialize.Writer) error) error {
	s, w := BeginWrite(pool, minCapacity)
	defer s.Dispose()
	return fn(s, w)
}

// WithSlice runs fn with a read-mode stream sliced off the parent cursor
// and guarantees disposal on every exit path. The parent cursor is
// advanced past the slice before fn runs, and not at all if slicing
// fails.
func WithSlice(pool *BufferPool, parent *serialize.Reader, length int, fn func(*SubStream) error) error {
	s, err := FromReader(pool, parent, length)
	if err != nil {
		return err
	}
	defer s.Dispose()
	return fn(s)
}
