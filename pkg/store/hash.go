package store

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// keyMode encodes key components deterministically, so equal components
// always hash to the same key.
var keyMode cbor.EncMode

func init() {
	var err error
	keyMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: CBOR key encoder initialization failed: " + err.Error())
	}
}

// hashKey generates a store key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, err := keyMode.Marshal(parts)
	if err != nil {
		panic("store: key components not encodable: " + err.Error())
	}
	return prefix + ":" + Hash(data)
}

// Hash computes a BLAKE3 digest of data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
