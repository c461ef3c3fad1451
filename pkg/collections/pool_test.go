package collections

import (
	"sync"
	"testing"
)

func TestIntSlicePool_Reuse(t *testing.T) {
	p := NewIntSlicePool(8)

	s := p.Get()
	*s = append(*s, 1, 2, 3)
	p.Put(s)

	s2 := p.Get()
	if len(*s2) != 0 {
		t.Errorf("Expected empty slice from pool, got len %d", len(*s2))
	}
	p.Put(s2)
}

func TestIntSlicePool_Concurrent(t *testing.T) {
	p := NewIntSlicePool(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := p.Get()
				for k := 0; k < n+1; k++ {
					*s = append(*s, k)
				}
				if len(*s) != n+1 {
					t.Errorf("Unexpected length %d", len(*s))
				}
				p.Put(s)
			}
		}(i)
	}
	wg.Wait()
}
