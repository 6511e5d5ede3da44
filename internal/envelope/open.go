package envelope

import (
	"fmt"

	"capestudio/internal/keys"
)

// Open decodes an envelope and decrypts its key table with contentKey.
func Open(data []byte, contentKey string) (Header, KeyTable, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return Header{}, KeyTable{}, err
	}
	body := data[HeaderSize:]
	if len(body)%keys.BlockSize != 0 {
		return Header{}, KeyTable{}, fmt.Errorf("%w: ciphertext length %d", ErrNotEnvelope, len(body))
	}
	plaintext, err := keys.Decrypt([]byte(contentKey), body)
	if err != nil {
		return Header{}, KeyTable{}, err
	}
	table, err := UnmarshalKeyTable(plaintext)
	if err != nil {
		return Header{}, KeyTable{}, err
	}
	return header, table, nil
}

// DecryptFile reverses entry's encryption. Plain entries are returned as-is.
// Trailing zero padding is kept; the content length is not recorded.
func DecryptFile(entry Entry, data []byte) ([]byte, error) {
	if !entry.IsEncrypted() {
		return data, nil
	}
	return keys.Decrypt([]byte(entry.Key), data)
}
