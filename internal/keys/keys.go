package keys

import (
	"crypto/aes"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes and the generated key length in characters.
	KeySize = 32
	// BlockSize is the AES block size; ciphertext lengths are multiples of it.
	BlockSize = aes.BlockSize

	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// rejectAbove keeps the modulo unbiased: 248 = 4 * 62.
	rejectAbove = 256 - 256%len(alphabet)
)

// Reader is the entropy source for GenerateKey. Tests may replace it.
var Reader io.Reader = rand.Reader

// GenerateKey returns a KeySize-character key drawn uniformly from [a-zA-Z0-9].
func GenerateKey() (string, error) {
	out := make([]byte, 0, KeySize)
	buf := make([]byte, KeySize)
	for len(out) < KeySize {
		if _, err := io.ReadFull(Reader, buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == KeySize {
				break
			}
		}
	}
	return string(out), nil
}

// DeriveIV returns the IV the content format pairs with key: its first block.
func DeriveIV(key []byte) []byte {
	iv := make([]byte, BlockSize)
	copy(iv, key[:BlockSize])
	return iv
}

// PaddedLen rounds n up to a multiple of BlockSize.
func PaddedLen(n int) int {
	if rem := n % BlockSize; rem != 0 {
		return n + BlockSize - rem
	}
	return n
}

// Encrypt zero-pads plaintext to a block multiple and encrypts it with
// AES-256 CFB-8 under key, using DeriveIV(key) as the IV.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	if len(key) < KeySize {
		return nil, fmt.Errorf("key must be at least %d bytes, got %d", KeySize, len(key))
	}
	key = key[:KeySize]
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	buf := make([]byte, PaddedLen(len(plaintext)))
	copy(buf, plaintext)
	newCFB8(block, DeriveIV(key), false).XORKeyStream(buf, buf)
	return buf, nil
}

// Decrypt reverses Encrypt. Zero padding is left in place; callers that know
// the plaintext shape trim it.
func Decrypt(key, ciphertext []byte) ([]byte, error) {
	if len(key) < KeySize {
		return nil, fmt.Errorf("key must be at least %d bytes, got %d", KeySize, len(key))
	}
	key = key[:KeySize]
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	out := make([]byte, len(ciphertext))
	newCFB8(block, DeriveIV(key), true).XORKeyStream(out, ciphertext)
	return out, nil
}
