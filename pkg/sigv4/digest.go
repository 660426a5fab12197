package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of data
func SHA256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return BytesToHex(hash[:])
}

// HMACSHA256 computes HMAC-SHA256 of data keyed with key
func HMACSHA256(key Key, data string) Key {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

// HMACSHA256Hex computes HMAC-SHA256 of data and returns it as lowercase hex
func HMACSHA256Hex(key Key, data string) string {
	return HMACSHA256(key, data).Hex()
}
