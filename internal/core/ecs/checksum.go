package ecs

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Checksum hashes the replicated state of the world: the id of every entity
// holding replicated components, followed by their tags and encoded payloads.
// Two worlds holding the same replicated state produce the same value; dirty
// flags, local components and local-only entities do not contribute.
func (w *World) Checksum() uint64 {
	d := xxhash.New()
	var scratch [8]byte
	for _, e := range w.Entities() {
		idWritten := false
		for _, c := range e.Components() {
			if !c.Type().Networked() {
				continue
			}
			if !idWritten {
				binary.BigEndian.PutUint64(scratch[:], uint64(e.id))
				_, _ = d.Write(scratch[:])
				idWritten = true
			}
			payload := c.Encode()
			binary.BigEndian.PutUint32(scratch[:4], uint32(c.Type()))
			binary.BigEndian.PutUint32(scratch[4:], uint32(len(payload)))
			_, _ = d.Write(scratch[:])
			_, _ = d.Write(payload)
		}
	}
	return d.Sum64()
}
