package packager

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"capestudio/internal/envelope"
	"capestudio/internal/faults"
	"capestudio/internal/signature"
)

// Inspection describes an archive produced by Build.
type Inspection struct {
	PackID         string
	ManifestUUID   string
	Members        []string
	Entries        []envelope.Entry
	SignatureValid bool
}

// Inspect opens an outer archive, decrypts its envelope with contentKey and
// checks the manifest signature.
func Inspect(path, contentKey string) (*Inspection, error) {
	outer, err := zip.OpenReader(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "inspect", path, err)
	}
	defer outer.Close()

	if len(outer.File) != 1 || outer.File[0].Name != InnerArchiveName {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "inspect",
			fmt.Sprintf("%s: expected a single %s entry", path, InnerArchiveName), nil)
	}
	innerBytes, err := readMember(outer.File[0])
	if err != nil {
		return nil, faults.Wrap(faults.ErrTransientIO, component, "inspect", "read inner archive", err)
	}
	inner, err := zip.NewReader(bytes.NewReader(innerBytes), int64(len(innerBytes)))
	if err != nil {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "inspect", "open inner archive", err)
	}

	members := make(map[string]*zip.File, len(inner.File))
	result := &Inspection{}
	for _, f := range inner.File {
		members[f.Name] = f
		result.Members = append(result.Members, f.Name)
	}

	raw, err := readNamed(members, contentsFile)
	if err != nil {
		return nil, err
	}
	header, table, err := envelope.Open(raw, contentKey)
	if err != nil {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "inspect", "open envelope", err)
	}
	result.PackID = header.PackID
	result.Entries = table.Content

	manifest, err := readNamed(members, manifestFile)
	if err != nil {
		return nil, err
	}
	var doc manifestDoc
	if err := json.Unmarshal(manifest, &doc); err != nil {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "inspect", "decode manifest", err)
	}
	result.ManifestUUID = doc.Header.UUID

	if sigRaw, err := readNamed(members, signature.FileName); err == nil {
		if entry, ok := table.Lookup(signature.FileName); ok {
			if sigRaw, err = envelope.DecryptFile(entry, sigRaw); err != nil {
				return nil, faults.Wrap(faults.ErrPrecondition, component, "inspect", "decrypt signatures", err)
			}
		}
		var entries []signature.Entry
		if json.Unmarshal(bytes.TrimRight(sigRaw, "\x00"), &entries) == nil {
			digest := signature.Digest(manifest)
			for _, e := range entries {
				if e.Path == manifestFile && e.Hash == digest {
					result.SignatureValid = true
				}
			}
		}
	}
	return result, nil
}

func readNamed(members map[string]*zip.File, name string) ([]byte, error) {
	f, ok := members[name]
	if !ok {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "inspect", name+" missing from inner archive", nil)
	}
	data, err := readMember(f)
	if err != nil {
		return nil, faults.Wrap(faults.ErrTransientIO, component, "inspect", "read "+name, err)
	}
	return data, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
