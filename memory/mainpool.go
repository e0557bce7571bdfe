package memory

// DefaultBackingBufferSize is the default size of the process-wide
// backing region feeding MainPool (~1 GiB, per the embeddable server's
// configuration defaults).
const DefaultBackingBufferSize = 1000 * 1024 * 1024

// MainPool is the process-wide pooled allocator. It is backed by a
// single large contiguous byte region (the BackingBuffer) allocated
// once when the MainPool is created — it is never reallocated and
// never shared across processes. The Server creates one MainPool in
// server.New and holds it for its lifetime; the route table and the
// session registry are ordinary Go values and do not allocate from
// it. MainPool is thread-safe; Sessions never allocate from it (see
// SessionArena), which keeps connection churn from fragmenting the
// one pool the whole server shares.
type MainPool struct {
	backing []byte
	bump    *bumpRegion
	pool    *Pool
}

// NewMainPool allocates a BackingBuffer of the given size and layers
// a pool allocator over it. size <= 0 selects DefaultBackingBufferSize.
func NewMainPool(size int) *MainPool {
	if size <= 0 {
		size = DefaultBackingBufferSize
	}
	backing := make([]byte, size)
	bump := newBumpRegion(backing)
	return &MainPool{
		backing: backing,
		bump:    bump,
		pool:    newPool(bump, true),
	}
}

// Allocate reserves size bytes aligned to align from the backing
// buffer, recycling freed blocks where possible.
func (m *MainPool) Allocate(size, align int) ([]byte, error) {
	return m.pool.Allocate(size, align)
}

// Deallocate returns buf to MainPool's size-classed free lists. It is
// a no-op for allocations above the largest recycled size class.
func (m *MainPool) Deallocate(buf []byte, size, align int) {
	m.pool.Deallocate(buf, size, align)
}

// Capacity returns the total size of the backing buffer in bytes.
func (m *MainPool) Capacity() int {
	return len(m.backing)
}
