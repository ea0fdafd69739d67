package substream

import (
	"sync"

	"github.com/trongtindev/FishNet/pkg/serialize"
)

const (
	// DefaultLengthThreshold is the written-length bracket separating the
	// small and large writer buckets.
	DefaultLengthThreshold = 1024

	// defaultWriterCapacity seeds freshly allocated writers.
	defaultWriterCapacity = 256

	// maxRetainedCapacity is the largest writer the pool will take back.
	// Anything bigger is dropped to prevent a single huge message from
	// pinning memory for the life of the process.
	maxRetainedCapacity = 262144

	// maxBucketDepth bounds each free list; releases beyond it are dropped.
	maxBucketDepth = 64
)

// PoolStats reports free-list depths.
type PoolStats struct {
	SmallWriters int
	LargeWriters int
	Readers      int
}

// BufferPool amortizes allocation of read/write handles across short-lived
// sub-streams. Writers are kept in two free lists bracketed by written
// length: writers that grew to the threshold or beyond go to the large
// bucket so their capacity is reused by later large writes instead of
// being re-grown from scratch; everything else goes to the small bucket.
// Reader objects (the cursors, never the bytes they view) are kept in a
// third list.
//
// The pool is safe for concurrent use. Individual handles are not.
type BufferPool struct {
	mu        sync.Mutex
	threshold int
	small     []*serialize.Writer
	large     []*serialize.Writer
	readers   []*serialize.Reader
}

// NewBufferPool creates a pool with the given length threshold. A
// threshold of zero or less selects DefaultLengthThreshold.
func NewBufferPool(threshold int) *BufferPool {
	if threshold <= 0 {
		threshold = DefaultLengthThreshold
	}
	return &BufferPool{
		threshold: threshold,
	}
}

// DefaultPool serves callers that do not manage a pool of their own.
var DefaultPool = NewBufferPool(DefaultLengthThreshold)

// Threshold returns the written-length bracket of this pool.
func (p *BufferPool) Threshold() int {
	return p.threshold
}

// AcquireWriter returns a writer with capacity at least minCapacity,
// preferring the free-list bucket that matches the request's size bracket.
// A minCapacity of zero or less requests the default small size.
func (p *BufferPool) AcquireWriter(minCapacity int) *serialize.Writer {
	if minCapacity < 0 {
		minCapacity = 0
	}

	p.mu.Lock()
	var w *serialize.Writer
	if minCapacity >= p.threshold {
		w = p.pop(&p.large)
		if w == nil {
			w = p.pop(&p.small)
		}
	} else {
		w = p.pop(&p.small)
		if w == nil {
			w = p.pop(&p.large)
		}
	}
	p.mu.Unlock()

	if w == nil {
		capacity := minCapacity
		if capacity < defaultWriterCapacity {
			capacity = defaultWriterCapacity
		}
		return serialize.NewWriter(capacity)
	}
	w.Grow(minCapacity)
	return w
}

// ReleaseWriter returns a writer to the bucket matching its written
// length. The written length is discarded; capacity is retained.
func (p *BufferPool) ReleaseWriter(w *serialize.Writer) {
	if w == nil || w.Capacity() > maxRetainedCapacity {
		return
	}

	large := w.Len() >= p.threshold
	w.Reset()

	p.mu.Lock()
	if large {
		if len(p.large) < maxBucketDepth {
			p.large = append(p.large, w)
		}
	} else {
		if len(p.small) < maxBucketDepth {
			p.small = append(p.small, w)
		}
	}
	p.mu.Unlock()
}

// AcquireReader returns a cursor positioned at the start of data. The
// cursor views data without copying.
func (p *BufferPool) AcquireReader(data []byte) *serialize.Reader {
	p.mu.Lock()
	var r *serialize.Reader
	if n := len(p.readers); n > 0 {
		r = p.readers[n-1]
		p.readers[n-1] = nil
		p.readers = p.readers[:n-1]
	}
	p.mu.Unlock()

	if r == nil {
		return serialize.NewReader(data)
	}
	r.Reset(data)
	return r
}

// ReleaseReader returns a cursor object to the pool. The view is cleared
// first so a pooled cursor never pins the region it last read.
func (p *BufferPool) ReleaseReader(r *serialize.Reader) {
	if r == nil {
		return
	}
	r.Reset(nil)

	p.mu.Lock()
	if len(p.readers) < maxBucketDepth {
		p.readers = append(p.readers, r)
	}
	p.mu.Unlock()
}

// Stats returns current free-list depths.
func (p *BufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		SmallWriters: len(p.small),
		LargeWriters: len(p.large),
		Readers:      len(p.readers),
	}
}

func (p *BufferPool) pop(bucket *[]*serialize.Writer) *serialize.Writer {
	n := len(*bucket)
	if n == 0 {
		return nil
	}
	w := (*bucket)[n-1]
	(*bucket)[n-1] = nil
	*bucket = (*bucket)[:n-1]
	return w
}
