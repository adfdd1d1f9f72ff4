package audit

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// encMode encodes entries with Core Deterministic Encoding so the same entry
// always hashes to the same value.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	encMode, err = opts.EncMode()
	if err != nil {
		panic("audit: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("audit: CBOR decoder initialization failed: " + err.Error())
	}
}

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// chainKey is the BLAKE3 key for journal links, ASCII zero-padded to 32 bytes.
var chainKey = [32]byte{
	't', 'i', 'c', 'k', 'e', 't', '-', 'e', 'x', 'c', 'h', 'a', 'n', 'g', 'e', '.',
	'a', 'u', 'd', 'i', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// link hashes an encoded entry onto the previous head.
func link(prev Hash, payload []byte) Hash {
	hasher, err := blake3.NewKeyed(chainKey[:])
	if err != nil {
		panic("audit: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(prev[:])
	hasher.Write(payload)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}
