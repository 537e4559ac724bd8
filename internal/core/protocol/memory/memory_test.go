package memory

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/deltasync/internal/core/protocol"
)

func TestEndpointsExchangeDatagrams(t *testing.T) {
	n := NewNetwork()
	a, err := n.Listen("a", time.Millisecond)
	require.NoError(t, err)
	b, err := n.Listen("b", time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, a.WriteTo([]byte("hello"), Addr("b")))
	data, from, err := b.ReadFrom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, Addr("a"), from)

	_, _, err = b.ReadFrom(context.Background())
	assert.ErrorIs(t, err, protocol.ErrNoPacket)
}

func TestDropFilterAndUnknownPeers(t *testing.T) {
	n := NewNetwork()
	a, _ := n.Listen("a", time.Millisecond)
	b, _ := n.Listen("b", time.Millisecond)
	n.SetDropFilter(func(_, _ net.Addr, payload []byte) bool { return payload[0] == 0 })

	require.NoError(t, a.WriteTo([]byte{0}, b.LocalAddr()))
	require.NoError(t, a.WriteTo([]byte{1}, b.LocalAddr()))
	require.NoError(t, a.WriteTo([]byte{2}, Addr("nobody")))

	data, _, err := b.ReadFrom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
}

func TestDuplicateBindAndClose(t *testing.T) {
	n := NewNetwork()
	a, err := n.Listen("a", time.Millisecond)
	require.NoError(t, err)
	_, err = n.Listen("a", time.Millisecond)
	assert.ErrorIs(t, err, protocol.ErrBindFailed)

	require.NoError(t, a.Close())
	_, _, err = a.ReadFrom(context.Background())
	assert.ErrorIs(t, err, protocol.ErrTransportClosed)

	_, err = n.Listen("a", time.Millisecond)
	assert.NoError(t, err)
}
