package iscmagic

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Hn computes the hname of a contract or entrypoint name: the first four
// bytes of the BLAKE2b-256 hash of the name, read little-endian. Used to
// populate SendMetadata when a transfer should invoke a contract on arrival.
func Hn(name string) uint32 {
	sum := blake2b.Sum256([]byte(name))
	return binary.LittleEndian.Uint32(sum[:4])
}
