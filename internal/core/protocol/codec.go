package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zeusync/deltasync/pkg/encoding"
	"github.com/zeusync/deltasync/pkg/generic"
)

const (
	// minEntitySize is an entity entry holding no component: id and count.
	minEntitySize = 12
	// minComponentSize is a component entry with an empty payload.
	minComponentSize = 8
)

var writers = generic.NewPool(func() *encoding.Writer { return encoding.NewWriter(512) })

// Marshal encodes p as one datagram.
func Marshal(p Packet) []byte {
	w := writers.Get()
	defer writers.Put(w)
	w.Int32(int32(p.Type()))
	p.encode(w)
	return bytes.Clone(w.Bytes())
}

// Unmarshal decodes one datagram.
//
// A nil packet with an error means nothing could be recovered. A non-nil
// packet with an error means some entries were malformed: entries with an
// out-of-range length end decoding of the packet, but everything parsed
// before them is returned and should still be applied.
func Unmarshal(data []byte) (Packet, error) {
	r := encoding.NewReader(data)
	kind := PacketType(r.Int32())
	if r.Err() != nil {
		return nil, NewProtocolError(ErrorCodeMalformedPacket, "packet header", malformed("%v", r.Err()))
	}

	switch kind {
	case PacketHandshakeRequest:
		p := HandshakeRequest{IsHost: r.Bool()}
		return finish(p, r, kind)
	case PacketHandshakeResponse:
		p := HandshakeResponse{Accepted: r.Bool()}
		return finish(p, r, kind)
	case PacketClientIndependentInitialization:
		p := ClientIndependentInitialization{Slot: r.Int32()}
		return finish(p, r, kind)
	case PacketInitializeGame:
		return decodeInitializeGame(r)
	case PacketKeyInputs:
		return decodeKeyInputs(r)
	case PacketClientUpdate:
		return decodeClientUpdate(r)
	default:
		if !kind.Valid() {
			return nil, NewProtocolError(ErrorCodeUnknownPacket, "unmarshal",
				fmt.Errorf("%w: %d", ErrUnknownPacket, int32(kind)))
		}
		return Signal{Kind: kind}, nil
	}
}

func finish(p Packet, r *encoding.Reader, kind PacketType) (Packet, error) {
	if r.Err() != nil {
		return nil, NewProtocolError(ErrorCodeMalformedPacket, kind.String(), malformed("%v", r.Err()))
	}
	return p, nil
}

func decodeInitializeGame(r *encoding.Reader) (Packet, error) {
	p := InitializeGame{PlayerCount: r.Int32()}
	count := r.Int32()
	if r.Err() != nil {
		return nil, NewProtocolError(ErrorCodeMalformedPacket, "InitializeGame", malformed("%v", r.Err()))
	}
	var err error
	p.Entities, err = readEntities(r, count)
	return p, wrapEntries(err, PacketInitializeGame)
}

func decodeKeyInputs(r *encoding.Reader) (Packet, error) {
	count := r.Int32()
	if r.Err() != nil {
		return nil, NewProtocolError(ErrorCodeMalformedPacket, "KeyInputs", malformed("%v", r.Err()))
	}
	// the smallest event is a kind and two coordinates
	if count < 0 || int(count) > r.Remaining()/12 {
		return nil, NewProtocolError(ErrorCodeLengthOutOfRange, "KeyInputs",
			fmt.Errorf("%w: %d events in %d bytes", ErrLengthOutOfRange, count, r.Remaining()))
	}
	p := KeyInputs{Events: make([]InputEvent, 0, count)}
	for i := int32(0); i < count; i++ {
		ev, err := decodeInput(r)
		if err != nil {
			return p, WrapError(err, fmt.Sprintf("KeyInputs event %d", i))
		}
		p.Events = append(p.Events, ev)
	}
	return p, nil
}

func decodeClientUpdate(r *encoding.Reader) (Packet, error) {
	p := ClientUpdate{Kind: UpdateKind(r.Int32())}
	count := r.Int32()
	if r.Err() != nil {
		return nil, NewProtocolError(ErrorCodeMalformedPacket, "ClientUpdate", malformed("%v", r.Err()))
	}

	var err error
	switch p.Kind {
	case UpdateAddComponents:
		p.Entities, err = readEntities(r, count)
	case UpdateRemoveComponents:
		p.Removed, err = readRemoved(r, count)
	case UpdateRemoveEntity:
		if count < 0 || int(count) > r.Remaining()/8 {
			return nil, NewProtocolError(ErrorCodeLengthOutOfRange, "ClientUpdate",
				fmt.Errorf("%w: %d ids in %d bytes", ErrLengthOutOfRange, count, r.Remaining()))
		}
		p.RemovedIDs = make([]uint64, count)
		for i := range p.RemovedIDs {
			p.RemovedIDs[i] = r.Uint64()
		}
	default:
		return nil, NewProtocolError(ErrorCodeUnknownUpdate, "ClientUpdate",
			fmt.Errorf("%w: %d", ErrUnknownUpdate, int32(p.Kind)))
	}
	return p, wrapEntries(err, PacketClientUpdate)
}

func readEntities(r *encoding.Reader, count int32) ([]EntityEntry, error) {
	if count < 0 || int(count) > r.Remaining()/minEntitySize {
		return nil, fmt.Errorf("%w: %d entities in %d bytes", ErrLengthOutOfRange, count, r.Remaining())
	}
	entities := make([]EntityEntry, 0, count)
	for i := int32(0); i < count; i++ {
		entity := EntityEntry{ID: r.Uint64()}
		n := r.Int32()
		if r.Err() != nil {
			return entities, malformed("entity %d: %v", i, r.Err())
		}
		if n < 0 || int(n) > r.Remaining()/minComponentSize {
			return entities, fmt.Errorf("%w: entity %d declares %d components in %d bytes",
				ErrLengthOutOfRange, entity.ID, n, r.Remaining())
		}
		entity.Components = make([]ComponentEntry, 0, n)
		for j := int32(0); j < n; j++ {
			tag := r.Int32()
			size := r.Int32()
			if r.Err() != nil {
				return append(entities, entity), malformed("entity %d component %d: %v", entity.ID, j, r.Err())
			}
			if size < 0 || int(size) > r.Remaining() {
				return append(entities, entity), fmt.Errorf("%w: entity %d component %d declares %d bytes, %d left",
					ErrLengthOutOfRange, entity.ID, tag, size, r.Remaining())
			}
			entity.Components = append(entity.Components, ComponentEntry{
				Type:    tag,
				Payload: bytes.Clone(r.Raw(int(size))),
			})
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func readRemoved(r *encoding.Reader, count int32) ([]RemovedComponents, error) {
	if count < 0 || int(count) > r.Remaining()/minEntitySize {
		return nil, fmt.Errorf("%w: %d entries in %d bytes", ErrLengthOutOfRange, count, r.Remaining())
	}
	removed := make([]RemovedComponents, 0, count)
	for i := int32(0); i < count; i++ {
		entry := RemovedComponents{ID: r.Uint64()}
		n := r.Int32()
		if r.Err() != nil {
			return removed, malformed("entry %d: %v", i, r.Err())
		}
		if n < 0 || int(n) > r.Remaining()/4 {
			return removed, fmt.Errorf("%w: entity %d declares %d removed types in %d bytes",
				ErrLengthOutOfRange, entry.ID, n, r.Remaining())
		}
		entry.Types = make([]int32, n)
		for j := range entry.Types {
			entry.Types[j] = r.Int32()
		}
		removed = append(removed, entry)
	}
	return removed, nil
}

func wrapEntries(err error, kind PacketType) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeMalformedPacket
	if errors.Is(err, ErrLengthOutOfRange) {
		code = ErrorCodeLengthOutOfRange
	}
	return NewProtocolError(code, kind.String(), err)
}
