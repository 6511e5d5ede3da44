package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// KeyTableVersion is the version tag written into every key table.
const KeyTableVersion = 1

// Entry is one key table row. An entry with a key is Encrypted; one without
// is Plain.
type Entry struct {
	Path string `json:"path"`
	Key  string `json:"key,omitempty"`
}

// Plain records a path stored as-is.
func Plain(path string) Entry { return Entry{Path: path} }

// Encrypted records a path encrypted under key.
func Encrypted(path, key string) Entry { return Entry{Path: path, Key: key} }

// IsEncrypted reports whether the entry carries a key.
func (e Entry) IsEncrypted() bool { return e.Key != "" }

// IsDir reports whether the entry names a directory.
func (e Entry) IsDir() bool { return len(e.Path) > 0 && e.Path[len(e.Path)-1] == '/' }

// KeyTable lists every entry of a staged tree.
type KeyTable struct {
	Version int     `json:"version"`
	Content []Entry `json:"content"`
}

// Marshal returns the canonical (RFC 8785) encoding of the table.
func (t KeyTable) Marshal() ([]byte, error) {
	if t.Content == nil {
		t.Content = []Entry{}
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode key table: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize key table: %w", err)
	}
	return canonical, nil
}

// UnmarshalKeyTable decodes a decrypted table, ignoring trailing zero padding.
func UnmarshalKeyTable(data []byte) (KeyTable, error) {
	var t KeyTable
	if err := json.Unmarshal(bytes.TrimRight(data, "\x00"), &t); err != nil {
		return KeyTable{}, fmt.Errorf("decode key table: %w", err)
	}
	return t, nil
}

// Lookup returns the entry for path.
func (t KeyTable) Lookup(path string) (Entry, bool) {
	for _, e := range t.Content {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Encrypted returns the encrypted entries in table order.
func (t KeyTable) Encrypted() []Entry {
	var out []Entry
	for _, e := range t.Content {
		if e.IsEncrypted() {
			out = append(out, e)
		}
	}
	return out
}

// Plain returns the plain entries in table order.
func (t KeyTable) Plain() []Entry {
	var out []Entry
	for _, e := range t.Content {
		if !e.IsEncrypted() {
			out = append(out, e)
		}
	}
	return out
}
