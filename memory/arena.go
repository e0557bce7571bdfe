package memory

import "sync/atomic"

// DefaultSessionArenaSize is the default size of a per-connection
// heap region (256 KiB).
const DefaultSessionArenaSize = 256 * 1024

// Arena is a per-session allocator: a heap region fronted by a bump
// allocator with a pool layer on top, exactly as described for
// SessionArena. It is exclusively owned by one Session and is never
// touched by any other goroutine. Every allocation returned by Arena
// is valid only until Release is called; after Release, every such
// slice must be treated as invalid even though Go's GC will not
// necessarily reclaim the backing storage instantly.
//
// Arena plays the role the source's BumpMemoryManager::createClientResource
// deleter plays in C++: a scoped resource whose teardown releases the
// pool, then the bump region, then the heap buffer, in that order.
// Unlike the source's type-erased std::function deleter, Arena is a
// plain value type — Release is just a method, no erasure required.
type Arena struct {
	buf    []byte
	bump   *bumpRegion
	pool   *Pool
	closed atomic.Bool
}

// NewArena allocates a fresh size-byte heap region (independent of
// any MainPool) and layers a bump allocator and pool allocator over
// it. synchronized should be false for ordinary per-session use — a
// Session's Arena is confined to its own worker goroutine.
func NewArena(size int, synchronized bool) *Arena {
	if size <= 0 {
		size = DefaultSessionArenaSize
	}
	buf := make([]byte, size)
	bump := newBumpRegion(buf)
	return &Arena{
		buf:  buf,
		bump: bump,
		pool: newPool(bump, synchronized),
	}
}

// Alloc reserves size bytes aligned to align from the arena. Returns
// ErrOutOfCapacity if the arena's backing region is exhausted, or if
// the arena has already been released.
func (a *Arena) Alloc(size, align int) ([]byte, error) {
	if a.closed.Load() {
		return nil, ErrOutOfCapacity
	}
	return a.pool.Allocate(size, align)
}

// Free returns buf to the arena's free lists for reuse within the
// same session. It is never required for correctness — Release bulk
// reclaims everything at session end — but lets long keep-alive
// sessions recycle per-request scratch space between requests.
func (a *Arena) Free(buf []byte, size, align int) {
	if a.closed.Load() {
		return
	}
	a.pool.Deallocate(buf, size, align)
}

// MakeString copies s into the arena and returns a string backed by
// arena memory, valid until Release. The conversion is zero-copy —
// the returned string aliases the freshly written arena bytes.
func (a *Arena) MakeString(s string) (string, error) {
	b, err := a.Alloc(len(s), 1)
	if err != nil {
		return "", err
	}
	copy(b, s)
	return bytesToString(b), nil
}

// Clone copies src into the arena, returning a new slice. The result
// is valid until Release.
func (a *Arena) Clone(src []byte) ([]byte, error) {
	b, err := a.Alloc(len(src), 1)
	if err != nil {
		return nil, err
	}
	copy(b, src)
	return b, nil
}

// Used reports how many bytes of the arena's backing region have been
// bump-allocated so far (including blocks currently on a free list).
func (a *Arena) Used() int {
	return a.bump.used()
}

// Capacity reports the arena's total backing region size.
func (a *Arena) Capacity() int {
	return a.bump.capacity()
}

// Release performs the three-level teardown: release the pool layer,
// then the bump region, then the heap buffer, in that order, and
// marks the arena closed so further Alloc calls fail cleanly instead
// of silently reusing freed memory. Release is idempotent. It runs
// when the connection's socket is closed (TCPSocket.Close), which
// session.Session.Destroy does after joining the worker, whatever
// path the worker left by.
func (a *Arena) Release() {
	if !a.closed.CompareAndSwap(false, true) {
		return
	}
	a.pool.freeList = nil
	a.bump.buf = nil
	a.bump.offset = 0
	a.buf = nil
}

// Closed reports whether Release has already run.
func (a *Arena) Closed() bool {
	return a.closed.Load()
}
