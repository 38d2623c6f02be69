package textbuf

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Pool recycles TextBuffers grouped by power-of-two capacity class, so a
// buffer taken from the pool never needs to grow for the size it was asked for.
//
// Pool is safe for concurrent use. The buffers it hands out are not.
type Pool struct {
	classes *xsync.Map[int, *sync.Pool]
	maxCap  int
	opts    []Option

	hits    *xsync.Counter
	misses  *xsync.Counter
	drops   *xsync.Counter
	foreign *xsync.Counter
}

// PoolStats is a snapshot of Pool activity.
type PoolStats struct {
	Hits    int64 // Get served from a recycled buffer
	Misses  int64 // Get had to allocate
	Drops   int64 // Put discarded the buffer
	Foreign int64 // Drops of buffers this pool did not allocate
}

// NewPool creates a Pool. Buffers larger than maxCap are not kept; a maxCap
// <= 0 keeps everything. opts apply to every buffer the pool allocates.
func NewPool(maxCap int, opts ...Option) *Pool {
	return &Pool{
		classes: xsync.NewMap[int, *sync.Pool](),
		maxCap:  maxCap,
		opts:    opts,
		hits:    xsync.NewCounter(),
		misses:  xsync.NewCounter(),
		drops:   xsync.NewCounter(),
		foreign: xsync.NewCounter(),
	}
}

func (p *Pool) class(size int) *sync.Pool {
	if sp, ok := p.classes.Load(size); ok {
		return sp
	}
	sp, _ := p.classes.LoadOrStore(size, &sync.Pool{})
	return sp
}

// sizeClass is the capacity class that satisfies a request for size bytes.
func sizeClass(size int) int {
	if size <= MinSize {
		return MinSize
	}
	return NextPowerOfTwo(size)
}

// Get returns an empty buffer with a capacity of at least size bytes.
func (p *Pool) Get(size int) *TextBuffer {
	class := sizeClass(size)
	if b, ok := p.class(class).Get().(*TextBuffer); ok {
		p.hits.Inc()
		return b
	}
	p.misses.Inc()
	b := New(class, p.opts...)
	b.owner = p
	return b
}

// Put resets b and keeps it for reuse. The caller must not use b afterwards.
// Buffers that did not come from Get on this pool are dropped, so every
// buffer handed out carries the pool's allocator and limits.
func (p *Pool) Put(b *TextBuffer) {
	if b != nil && b.owner != p {
		p.foreign.Inc()
		p.drops.Inc()
		return
	}
	if b == nil || b.Cap() == 0 || (p.maxCap > 0 && b.Cap() > p.maxCap) {
		p.drops.Inc()
		return
	}
	b.Reuse()
	// Pool buffers start at a power of two and grow by doubling, so the
	// capacity is its own class.
	p.class(b.Cap()).Put(b)
}

// Stats returns the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Hits:    p.hits.Value(),
		Misses:  p.misses.Value(),
		Drops:   p.drops.Value(),
		Foreign: p.foreign.Value(),
	}
}
