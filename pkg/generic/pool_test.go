package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type buffer struct {
	data []byte
}

func (b *buffer) Reset() { b.data = b.data[:0] }

func TestPoolResetsOnPut(t *testing.T) {
	p := NewPool(func() *buffer { return &buffer{data: make([]byte, 0, 8)} })

	b := p.Get()
	b.data = append(b.data, 1, 2, 3)
	p.Put(b)

	assert.Empty(t, b.data)
	assert.NotNil(t, p.Get())
}
