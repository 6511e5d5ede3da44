package keys_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"strings"
	"testing"

	"capestudio/internal/keys"
)

const testKey = "s5s5ejuDru4uchuF2drUFuthaspAbepE"

func TestGenerateKeyAlphabetAndLength(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 64; i++ {
		key, err := keys.GenerateKey()
		if err != nil {
			t.Fatalf("GenerateKey: %v", err)
		}
		if len(key) != keys.KeySize {
			t.Fatalf("expected %d characters, got %d", keys.KeySize, len(key))
		}
		for _, r := range key {
			if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
				t.Fatalf("unexpected character %q in %q", r, key)
			}
		}
		seen[key] = struct{}{}
	}
	if len(seen) < 60 {
		t.Fatalf("expected distinct keys, got %d unique of 64", len(seen))
	}
}

func TestGenerateKeySkipsBiasedBytes(t *testing.T) {
	original := keys.Reader
	t.Cleanup(func() { keys.Reader = original })

	// 0xFF is above the rejection bound and must never map into the alphabet.
	src := append(bytes.Repeat([]byte{0xFF}, 32), bytes.Repeat([]byte{0}, 32)...)
	keys.Reader = bytes.NewReader(src)
	key, err := keys.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if key != strings.Repeat("a", keys.KeySize) {
		t.Fatalf("expected all 'a', got %q", key)
	}
}

func TestDeriveIVIsKeyPrefix(t *testing.T) {
	iv := keys.DeriveIV([]byte(testKey))
	if string(iv) != testKey[:16] {
		t.Fatalf("expected iv %q, got %q", testKey[:16], iv)
	}
}

func TestEncryptPadsAndRoundTrips(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		wantLen   int
	}{
		{name: "empty", plaintext: "", wantLen: 0},
		{name: "short", plaintext: "hello", wantLen: 16},
		{name: "exact block", plaintext: "0123456789abcdef", wantLen: 16},
		{name: "multi block", plaintext: strings.Repeat("x", 33), wantLen: 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := keys.Encrypt([]byte(testKey), []byte(tt.plaintext))
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			if len(ct) != tt.wantLen {
				t.Fatalf("expected %d bytes, got %d", tt.wantLen, len(ct))
			}
			pt, err := keys.Decrypt([]byte(testKey), ct)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if got := string(bytes.TrimRight(pt, "\x00")); got != tt.plaintext {
				t.Fatalf("round trip mismatch: %q", got)
			}
		})
	}
}

func TestEncryptMatchesSegmentedCFB(t *testing.T) {
	plaintext := []byte("persona piece payload")
	ct, err := keys.Encrypt([]byte(testKey), plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Reference CFB-8 built from full-block CFB one byte at a time.
	block, _ := aes.NewCipher([]byte(testKey))
	reg := []byte(testKey[:16])
	padded := make([]byte, keys.PaddedLen(len(plaintext)))
	copy(padded, plaintext)
	want := make([]byte, len(padded))
	for i, b := range padded {
		ks := make([]byte, 1)
		cipher.NewCFBEncrypter(block, reg).XORKeyStream(ks, []byte{b})
		want[i] = ks[0]
		reg = append(reg[1:], ks[0])
	}
	if !bytes.Equal(ct, want) {
		t.Fatalf("ciphertext mismatch\n got %x\nwant %x", ct, want)
	}
}

func TestEncryptRejectsShortKey(t *testing.T) {
	if _, err := keys.Encrypt([]byte("short"), []byte("x")); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := keys.Decrypt([]byte("short"), []byte("x")); err == nil {
		t.Fatal("expected error for short key")
	}
}
