package codec

import (
	"sync"

	"github.com/matzehuels/graphwire/pkg/model"
)

// stack is a free list of slices. Nested list decodes each take their own
// buffer and give it back in reverse order.
type stack[T any] struct {
	free [][]T
}

func (s *stack[T]) get(n int) []T {
	if k := len(s.free); k > 0 {
		b := s.free[k-1]
		s.free = s.free[:k-1]
		if cap(b) >= n {
			return b[:n]
		}
	}
	return make([]T, n)
}

// put clears b so no object outlives the call through a pooled buffer.
func (s *stack[T]) put(b []T) {
	b = b[:cap(b)]
	clear(b)
	s.free = append(s.free, b)
}

// scratch holds the reusable buffers of one encode or decode call.
type scratch struct {
	values   stack[any]
	entries  stack[model.Entry]
	indices  stack[int]
	consumed stack[bool]
}

// scratchPool hands out scratch buffers to one call at a time. Buffers are
// cleared when returned and never shared between concurrent calls.
type scratchPool struct {
	pool sync.Pool
}

func (p *scratchPool) get() *scratch {
	if s, ok := p.pool.Get().(*scratch); ok {
		return s
	}
	return &scratch{}
}

func (p *scratchPool) put(s *scratch) {
	p.pool.Put(s)
}
