package memory

import "sync"

// sizeClasses are the size-classed free-list buckets layered over a
// bump region. Requests are rounded up to the next class; anything
// larger than the top class bypasses the free lists and is bump
// allocated directly (and never recycled — large allocations are
// rare enough that this matches the teacher's "rare case, acceptable"
// tradeoff in shockwave's Header overflow design). The top class,
// 16384, matches the session worker's per-request receive buffer so
// that buffer recycles within a keep-alive session instead of
// exhausting the default 256 KiB arena after sixteen requests.
var sizeClasses = []int{16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384}

func classFor(size int) (index, classSize int, ok bool) {
	for i, c := range sizeClasses {
		if size <= c {
			return i, c, true
		}
	}
	return -1, 0, false
}

// Pool is a size-classed pooled allocator layered over a bumpRegion.
// Deallocate on the underlying bump region is always a no-op; Pool
// recycles freed blocks by size class instead of returning memory to
// the OS. Pool is safe for concurrent use when constructed with
// synchronized=true (the MainPool case); per-session pools are
// constructed with synchronized=false since a SessionArena is
// confined to exactly one worker goroutine.
type Pool struct {
	mu           sync.Mutex
	synchronized bool

	bump     *bumpRegion
	freeList [][][]byte // freeList[classIndex] = stack of reusable blocks
}

func newPool(bump *bumpRegion, synchronized bool) *Pool {
	return &Pool{
		synchronized: synchronized,
		bump:         bump,
		freeList:     make([][][]byte, len(sizeClasses)),
	}
}

func (p *Pool) lock() {
	if p.synchronized {
		p.mu.Lock()
	}
}

func (p *Pool) unlock() {
	if p.synchronized {
		p.mu.Unlock()
	}
}

// Allocate returns a zeroed slice of at least size bytes aligned to
// align. Small allocations (within the top size class) are served
// from a recycled block when one is available, otherwise bump
// allocated fresh. Larger allocations always bump allocate.
func (p *Pool) Allocate(size, align int) ([]byte, error) {
	if size <= 0 {
		size = 1
	}

	idx, classSize, ok := classFor(size)
	if !ok {
		p.lock()
		defer p.unlock()
		buf, err := p.bump.alloc(size, align)
		if err != nil {
			return nil, err
		}
		return buf, nil
	}

	p.lock()
	defer p.unlock()

	if stack := p.freeList[idx]; len(stack) > 0 {
		block := stack[len(stack)-1]
		p.freeList[idx] = stack[:len(stack)-1]
		block = block[:size]
		clear(block)
		return block, nil
	}

	buf, err := p.bump.alloc(classSize, align)
	if err != nil {
		return nil, err
	}
	return buf[:size], nil
}

// Deallocate recycles buf into the free list for its size class. The
// size class is recovered from size rounded up to the next class, so
// callers must pass the same size they requested from Allocate. Deallocate is a no-op for blocks above the largest size
// class — those were bump-allocated directly and are never reused.
func (p *Pool) Deallocate(buf []byte, size, align int) {
	idx, classSize, ok := classFor(size)
	if !ok {
		return
	}

	p.lock()
	defer p.unlock()

	full := buf[:cap(buf)]
	if len(full) < classSize {
		full = append(full, make([]byte, classSize-len(full))...)
	}
	p.freeList[idx] = append(p.freeList[idx], full[:classSize])
}
