package encoding

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterIsBigEndian(t *testing.T) {
	w := NewWriter(16)
	w.Int32(1)
	w.Uint64(0x0102030405060708)

	assert.Equal(t, []byte{0, 0, 0, 1, 1, 2, 3, 4, 5, 6, 7, 8}, w.Bytes())
}

func TestReaderRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.Uint8(7)
	w.Bool(true)
	w.Int32(-42)
	w.Uint32(math.MaxUint32)
	w.Int64(-1 << 40)
	w.Float32(1.5)
	w.Float64(-2.25)
	w.String("sprites/player.png")
	w.String("")
	w.Block([]byte{9, 9})

	r := NewReader(w.Bytes())
	assert.Equal(t, uint8(7), r.Uint8())
	assert.True(t, r.Bool())
	assert.Equal(t, int32(-42), r.Int32())
	assert.Equal(t, uint32(math.MaxUint32), r.Uint32())
	assert.Equal(t, int64(-1<<40), r.Int64())
	assert.Equal(t, float32(1.5), r.Float32())
	assert.Equal(t, -2.25, r.Float64())
	assert.Equal(t, "sprites/player.png", r.String())
	assert.Equal(t, "", r.String())
	assert.Equal(t, int32(2), r.Int32())
	assert.Equal(t, []byte{9, 9}, r.Raw(2))
	require.NoError(t, r.Expect())
}

func TestReaderErrorIsSticky(t *testing.T) {
	r := NewReader([]byte{0, 0, 1})

	assert.Zero(t, r.Int32())
	assert.True(t, errors.Is(r.Err(), ErrShortBuffer))
	assert.Zero(t, r.Uint8())
	assert.True(t, errors.Is(r.Expect(), ErrShortBuffer))
}

func TestReaderRejectsOversizedString(t *testing.T) {
	w := NewWriter(0)
	w.Uint32(1000)
	w.Raw([]byte("abc"))

	r := NewReader(w.Bytes())
	assert.Equal(t, "", r.String())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestReaderRejectsInvalidBool(t *testing.T) {
	r := NewReader([]byte{2})
	r.Bool()
	assert.ErrorIs(t, r.Err(), ErrInvalidBool)
}

func TestExpectReportsTrailingBytes(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	r.Uint8()
	assert.Error(t, r.Expect())
}
