package collections

import "sync"

// ============================================================================
// IntSlicePool - Reusable scratch buffers for index arrays
// ============================================================================

// IntSlicePool recycles []int scratch buffers across parallel workers.
// Extraction uses it for the per-community dense inverse map, which would
// otherwise be reallocated once per community.
type IntSlicePool struct {
	pool sync.Pool
}

// NewIntSlicePool creates a pool whose buffers start with the given capacity.
func NewIntSlicePool(initialCap int) *IntSlicePool {
	if initialCap <= 0 {
		initialCap = 64
	}
	return &IntSlicePool{
		pool: sync.Pool{
			New: func() interface{} {
				s := make([]int, 0, initialCap)
				return &s
			},
		},
	}
}

// Get returns an empty slice from the pool.
func (p *IntSlicePool) Get() *[]int {
	s := p.pool.Get().(*[]int)
	*s = (*s)[:0]
	return s
}

// Put returns a slice to the pool.
func (p *IntSlicePool) Put(s *[]int) {
	if s == nil {
		return
	}
	p.pool.Put(s)
}
