package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDecodeBuildsChangedComponent(t *testing.T) {
	r := newTestRegistry()
	src := &testPosition{X: 10, Y: 20}

	c, err := r.Decode(TypePosition, src.Encode())
	require.NoError(t, err)
	p, ok := c.(*testPosition)
	require.True(t, ok)
	assert.Equal(t, int32(10), p.X)
	assert.Equal(t, int32(20), p.Y)
	assert.True(t, p.Changed())
}

func TestRegistryRejectsUnknownTag(t *testing.T) {
	r := newTestRegistry()
	_, err := r.New(TypeHealth)
	assert.ErrorIs(t, err, ErrUnknownComponent)
	_, err = r.Decode(TypeHealth, nil)
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestRegistryDecodeFailure(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Decode(TypePosition, []byte{1, 2})
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicatesAndLocals(t *testing.T) {
	r := newTestRegistry()
	assert.ErrorIs(t, Register(r, func() *testOtherPosition { return &testOtherPosition{} }), ErrDuplicateComponent)
	assert.ErrorIs(t, Register(r, func() *testLabel { return &testLabel{} }), ErrLocalComponent)
}

func TestRegistrySeal(t *testing.T) {
	r := NewRegistry()
	r.Seal()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, Register(r, func() *testSpeed { return &testSpeed{} }), ErrRegistrySealed)
	assert.Panics(t, func() { MustRegister(r, func() *testSpeed { return &testSpeed{} }) })
}

func TestRegistryAdderIsNoOpWhenPresent(t *testing.T) {
	r := newTestRegistry()
	e := newEntity(1)
	original := &testPosition{X: 1}

	assert.True(t, r.Add(e, original))
	assert.False(t, r.Add(e, &testPosition{X: 2}))

	got, err := Get[*testPosition](e)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.X)
}

func TestRegistryDestroyer(t *testing.T) {
	r := newTestRegistry()
	e := newEntity(1)
	e.Add(&testSpeed{})

	assert.True(t, r.Destroy(e, TypeSpeed))
	assert.False(t, r.Destroy(e, TypeSpeed))
	assert.False(t, r.Destroy(e, TypeHealth))
	assert.Empty(t, e.PendingRemovals())
}

func TestRegistryTypes(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, []ComponentType{TypePosition, TypeSpeed}, r.Types())
	assert.True(t, r.Has(TypeSpeed))
}
