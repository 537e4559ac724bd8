package generic

import "sync"

// Pool is a typed sync.Pool. Values implementing Reset are reset on Put.
type Pool[T any] struct {
	pool sync.Pool
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if r, ok := any(value).(interface{ Reset() }); ok {
		r.Reset()
	}
	p.pool.Put(value)
}
