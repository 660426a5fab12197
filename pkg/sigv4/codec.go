package sigv4

import (
	"encoding/hex"
)

// Key is raw key material used as an HMAC key.
//
// Intermediate results of the key derivation chain are kept as Key values.
// The hex form is only for display; a hex string must go through ParseKey
// before it can be used as a key again.
type Key []byte

// Hex returns the lowercase hex encoding of the key
func (k Key) Hex() string {
	return BytesToHex(k)
}

// ParseKey decodes a hex encoded key back to raw bytes
func ParseKey(s string) (Key, error) {
	b, err := HexToBytes(s)
	if err != nil {
		return nil, err
	}
	return Key(b), nil
}

// BytesToHex encodes b as lowercase hex
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToBytes decodes a hex string, accepting either case
func HexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
