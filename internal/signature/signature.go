package signature

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ManifestFile is the file covered by the signature document.
	ManifestFile = "manifest.json"
	// FileName is the signature document written beside the manifest.
	FileName = "signatures.json"
)

// Entry is one signed file.
type Entry struct {
	Hash string `json:"hash"`
	Path string `json:"path"`
}

// Digest returns the base64 SHA-256 of content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SignManifest hashes <dir>/manifest.json and writes <dir>/signatures.json.
func SignManifest(dir string) (Entry, error) {
	manifest, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return Entry{}, fmt.Errorf("read manifest: %w", err)
	}
	entry := Entry{Hash: Digest(manifest), Path: ManifestFile}
	payload, err := json.Marshal([]Entry{entry})
	if err != nil {
		return Entry{}, fmt.Errorf("encode signatures: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), payload, 0o644); err != nil {
		return Entry{}, fmt.Errorf("write signatures: %w", err)
	}
	return entry, nil
}

// Verify reports whether the signature document in dir matches the manifest.
func Verify(dir string) error {
	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return fmt.Errorf("read signatures: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("decode signatures: %w", err)
	}
	for _, entry := range entries {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(entry.Path)))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Path, err)
		}
		if got := Digest(content); got != entry.Hash {
			return fmt.Errorf("%s: digest mismatch", entry.Path)
		}
	}
	return nil
}
