package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/deltasync/pkg/encoding"
)

func TestMarshalWritesBigEndianTag(t *testing.T) {
	data := Marshal(ClientIndependentInitialization{Slot: 2})
	assert.Equal(t, []byte{0, 0, 0, 6, 0, 0, 0, 2}, data)

	data = Marshal(Signal{Kind: PacketLaunchGame})
	assert.Equal(t, []byte{0, 0, 0, 9}, data)
}

func TestPacketsRoundTrip(t *testing.T) {
	packets := []Packet{
		HandshakeRequest{IsHost: true},
		HandshakeResponse{Accepted: false},
		ClientIndependentInitialization{Slot: 3},
		InitializeGame{PlayerCount: 2, Entities: []EntityEntry{
			{ID: 1, Components: []ComponentEntry{{Type: 4, Payload: []byte{0, 0, 0, 10, 0, 0, 0, 20}}}},
			{ID: 9, Components: []ComponentEntry{{Type: 6, Payload: []byte{1, 2, 3, 4}}, {Type: 20, Payload: []byte{}}}},
		}},
		KeyInputs{Events: []InputEvent{
			KeyPressed(57, Modifiers{Shift: true}),
			KeyReleased(57, Modifiers{}),
			MouseButtonPressed(0, 10, 20),
			MouseButtonReleased(1, 11, 21),
			MouseMoved(-5, 7),
			MouseWheelScrolled(0, -1.5, 3, 4),
		}},
		ClientUpdate{Kind: UpdateAddComponents, Entities: []EntityEntry{
			{ID: 5, Components: []ComponentEntry{{Type: 4, Payload: []byte{0, 0, 0, 15, 0, 0, 0, 20}}}},
		}},
		ClientUpdate{Kind: UpdateRemoveComponents, Removed: []RemovedComponents{{ID: 5, Types: []int32{4, 6}}}},
		ClientUpdate{Kind: UpdateRemoveEntity, RemovedIDs: []uint64{5, 8}},
		Signal{Kind: PacketSwitchWorld},
		Signal{Kind: PacketEndGameAcknowledged},
	}

	for _, p := range packets {
		t.Run(p.Type().String(), func(t *testing.T) {
			got, err := Unmarshal(Marshal(p))
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}

func TestUnmarshalUnknownPacket(t *testing.T) {
	w := encoding.NewWriter(4)
	w.Int32(99)
	p, err := Unmarshal(w.Bytes())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrUnknownPacket)
	assert.Equal(t, ErrorCodeUnknownPacket, GetErrorCode(err))

	_, err = Unmarshal([]byte{0, 1})
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestUnmarshalKeepsEntriesBeforeBadLength(t *testing.T) {
	w := encoding.NewWriter(64)
	w.Int32(int32(PacketClientUpdate))
	w.Int32(int32(UpdateAddComponents))
	w.Int32(2)
	// entity 1: one valid component, then one claiming more bytes than left
	w.Uint64(1)
	w.Int32(2)
	w.Int32(4)
	w.Block([]byte{0, 0, 0, 1, 0, 0, 0, 2})
	w.Int32(6)
	w.Int32(1000)
	w.Raw([]byte{1, 2, 3, 4})

	p, err := Unmarshal(w.Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLengthOutOfRange))
	assert.Equal(t, ErrorCodeLengthOutOfRange, GetErrorCode(err))

	update, ok := p.(ClientUpdate)
	require.True(t, ok)
	require.Len(t, update.Entities, 1)
	assert.Equal(t, uint64(1), update.Entities[0].ID)
	require.Len(t, update.Entities[0].Components, 1)
	assert.Equal(t, int32(4), update.Entities[0].Components[0].Type)
}

func TestUnmarshalRejectsOversizedCounts(t *testing.T) {
	w := encoding.NewWriter(16)
	w.Int32(int32(PacketClientUpdate))
	w.Int32(int32(UpdateRemoveEntity))
	w.Int32(1 << 30)

	p, err := Unmarshal(w.Bytes())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrLengthOutOfRange)

	w = encoding.NewWriter(16)
	w.Int32(int32(PacketInitializeGame))
	w.Int32(2)
	w.Int32(-1)
	p, err = Unmarshal(w.Bytes())
	assert.ErrorIs(t, err, ErrLengthOutOfRange)
	init, ok := p.(InitializeGame)
	require.True(t, ok)
	assert.Empty(t, init.Entities)
}

func TestUnmarshalUnknownInputKeepsEarlierEvents(t *testing.T) {
	w := encoding.NewWriter(64)
	w.Int32(int32(PacketKeyInputs))
	w.Int32(2)
	MouseMoved(1, 2).encode(w)
	w.Int32(42)
	w.Int32(0)
	w.Int32(0)

	p, err := Unmarshal(w.Bytes())
	assert.ErrorIs(t, err, ErrUnknownInput)
	inputs, ok := p.(KeyInputs)
	require.True(t, ok)
	assert.Equal(t, []InputEvent{MouseMoved(1, 2)}, inputs.Events)
}

func TestUnmarshalUnknownUpdateKind(t *testing.T) {
	w := encoding.NewWriter(16)
	w.Int32(int32(PacketClientUpdate))
	w.Int32(7)
	w.Int32(0)
	_, err := Unmarshal(w.Bytes())
	assert.ErrorIs(t, err, ErrUnknownUpdate)
}

func TestPacketTypeValues(t *testing.T) {
	assert.EqualValues(t, 0, PacketHandshakeRequest)
	assert.EqualValues(t, 11, PacketClientUpdate)
	assert.EqualValues(t, 21, PacketEndGameAcknowledged)
	assert.Equal(t, "ClientIndependentInitialization", PacketClientIndependentInitialization.String())
	assert.Equal(t, "PacketType(40)", PacketType(40).String())
}

func TestWrapErrorKeepsCode(t *testing.T) {
	err := WrapError(ErrTransportClosed, "read")
	assert.Equal(t, ErrorCodeTransportClosed, err.Code)
	assert.ErrorIs(t, err, ErrTransportClosed)
	assert.Equal(t, ErrorCodeSuccess, GetErrorCode(nil))
}
