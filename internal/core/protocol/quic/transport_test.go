package quic

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

func TestDatagramRoundTrip(t *testing.T) {
	serverTLS, err := GenerateSelfSignedTLS()
	require.NoError(t, err)

	server, err := Listen("127.0.0.1:0", serverTLS, 10*time.Millisecond, log.NewNop())
	require.NoError(t, err)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, server.LocalAddr().String(), ClientTLS(), 10*time.Millisecond, log.NewNop())
	require.NoError(t, err)
	defer client.Close()

	request := protocol.Marshal(protocol.HandshakeRequest{IsHost: true})
	serverAddr := client.Peers()[0]

	var clientAddr net.Addr
	require.Eventually(t, func() bool {
		_ = client.WriteTo(request, serverAddr)
		data, from, err := server.ReadFrom(ctx)
		if err != nil {
			return false
		}
		assert.Equal(t, request, data)
		clientAddr = from
		return true
	}, 5*time.Second, 10*time.Millisecond)

	response := protocol.Marshal(protocol.HandshakeResponse{Accepted: true})
	require.NoError(t, server.WriteTo(response, clientAddr))
	require.Eventually(t, func() bool {
		data, _, err := client.ReadFrom(ctx)
		return err == nil && assert.Equal(t, response, data)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWriteToUnknownPeer(t *testing.T) {
	serverTLS, err := GenerateSelfSignedTLS()
	require.NoError(t, err)
	server, err := Listen("127.0.0.1:0", serverTLS, 10*time.Millisecond, log.NewNop())
	require.NoError(t, err)
	defer server.Close()

	err = server.WriteTo([]byte{1}, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9})
	assert.ErrorIs(t, err, protocol.ErrUnknownPeer)

	_, _, err = server.ReadFrom(context.Background())
	assert.ErrorIs(t, err, protocol.ErrNoPacket)

	require.NoError(t, server.Close())
	_, _, err = server.ReadFrom(context.Background())
	assert.ErrorIs(t, err, protocol.ErrTransportClosed)
}
