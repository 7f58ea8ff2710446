package store

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a BLAKE3 keyed hash of the uncompressed encoded bytes, so the
// same path file has the same digest whatever compression it is stored with.
type Digest [32]byte

// digestKey separates path file digests from any other BLAKE3 use of the
// same bytes. Changing it changes every digest.
var digestKey = [32]byte{
	'p', 'a', 't', 'h', 'c', 't', 'l', '.', 'p', 'a', 't', 'h', 'f', 'i', 'l', 'e',
}

func DigestOf(encoded []byte) Digest {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("store: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(encoded)
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 12 hex characters.
func (d Digest) Short() string { return d.String()[:12] }
