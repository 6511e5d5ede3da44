package envelope

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"capestudio/internal/keys"
)

// KeyFunc returns a fresh per-file key.
type KeyFunc func() (string, error)

// Encryptor encrypts staged trees.
type Encryptor struct {
	contentKey []byte
	newKey     KeyFunc
}

// NewEncryptor returns an Encryptor that protects the key table with contentKey.
func NewEncryptor(contentKey string) (*Encryptor, error) {
	if len(contentKey) < keys.KeySize {
		return nil, fmt.Errorf("content key must be at least %d bytes", keys.KeySize)
	}
	return &Encryptor{contentKey: []byte(contentKey), newKey: keys.GenerateKey}, nil
}

// WithKeyFunc overrides per-file key generation.
func (e *Encryptor) WithKeyFunc(fn KeyFunc) *Encryptor {
	if fn != nil {
		e.newKey = fn
	}
	return e
}

// Encrypt replaces every non-exempt file under dir with its ciphertext and
// writes the envelope to dir/contents.json. Directories are always Plain and
// recorded with a trailing slash. On error dir is left partially encrypted and
// must be discarded.
func (e *Encryptor) Encrypt(dir, packID string) (KeyTable, error) {
	header, err := EncodeHeader(packID)
	if err != nil {
		return KeyTable{}, err
	}

	table := KeyTable{Version: KeyTableVersion, Content: []Entry{}}
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			table.Content = append(table.Content, Plain(rel+"/"))
			return nil
		}
		if IsExempt(rel) {
			table.Content = append(table.Content, Plain(rel))
			return nil
		}
		key, err := e.newKey()
		if err != nil {
			return fmt.Errorf("generate key for %s: %w", rel, err)
		}
		if err := encryptInPlace(path, key); err != nil {
			return fmt.Errorf("encrypt %s: %w", rel, err)
		}
		table.Content = append(table.Content, Encrypted(rel, key))
		return nil
	})
	if walkErr != nil {
		return KeyTable{}, walkErr
	}

	plaintext, err := table.Marshal()
	if err != nil {
		return KeyTable{}, err
	}
	ciphertext, err := keys.Encrypt(e.contentKey, plaintext)
	if err != nil {
		return KeyTable{}, fmt.Errorf("encrypt key table: %w", err)
	}
	out := make([]byte, 0, len(header)+len(ciphertext))
	out = append(out, header...)
	out = append(out, ciphertext...)
	if err := os.WriteFile(filepath.Join(dir, ContentsFile), out, 0o644); err != nil {
		return KeyTable{}, fmt.Errorf("write envelope: %w", err)
	}
	return table, nil
}

func encryptInPlace(path, key string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ciphertext, err := keys.Encrypt([]byte(key), plaintext)
	if err != nil {
		return err
	}
	return os.WriteFile(path, ciphertext, info.Mode().Perm())
}
