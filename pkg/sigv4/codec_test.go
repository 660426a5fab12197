package sigv4

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	random := make([]byte, 64)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("Failed to read random bytes: %v", err)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"Empty", []byte{}},
		{"All zero", make([]byte, 32)},
		{"All 0xFF", bytes.Repeat([]byte{0xff}, 32)},
		{"Single byte", []byte{0x0a}},
		{"Random", random},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := BytesToHex(tt.input)
			if len(encoded) != 2*len(tt.input) {
				t.Fatalf("Expected hex length %d, got %d", 2*len(tt.input), len(encoded))
			}
			decoded, err := HexToBytes(encoded)
			if err != nil {
				t.Fatalf("HexToBytes(%q) failed: %v", encoded, err)
			}
			if !bytes.Equal(decoded, tt.input) {
				t.Errorf("Round trip mismatch: got %x, want %x", decoded, tt.input)
			}
		})
	}
}

func TestBytesToHexLowercase(t *testing.T) {
	if got := BytesToHex([]byte{0xab, 0xcd, 0xef}); got != "abcdef" {
		t.Errorf("Expected lowercase hex, got %q", got)
	}
}

func TestParseKey(t *testing.T) {
	key := HMACSHA256(Key("secret"), "data")

	parsed, err := ParseKey(key.Hex())
	if err != nil {
		t.Fatalf("ParseKey failed: %v", err)
	}
	if !bytes.Equal(parsed, key) {
		t.Fatal("Parsed key should equal the original raw key")
	}

	// The hex text itself is not the key
	if bytes.Equal([]byte(key.Hex()), key) {
		t.Fatal("Hex form should differ from raw bytes")
	}

	if _, err := ParseKey("not-hex"); err == nil {
		t.Fatal("Expected error for invalid hex")
	}
}
