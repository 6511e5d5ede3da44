package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kaptinlin/jsonschema"

	"capestudio/internal/cape"
	"capestudio/internal/faults"
	"capestudio/internal/fileutil"
)

// MediaType is the content type of a served catalog document.
const MediaType = "application/json"

const component = "catalog"

//go:embed template.json
var templateJSON []byte

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		schema, schemaErr = compiler.Compile(schemaJSON)
	})
	return schema, schemaErr
}

// Document is a parsed catalog page.
type Document struct {
	root map[string]any
	list map[string]any
}

// Template returns the built-in empty catalog page.
func Template() (*Document, error) {
	return Parse(templateJSON)
}

// Parse validates data against the catalog shape and locates its item list.
func Parse(data []byte) (*Document, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, component, "compile schema", "", err)
	}
	if result := s.ValidateJSON(data); !result.IsValid() {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "validate",
			fmt.Sprintf("malformed catalog structure: %v", result.Errors), nil)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "decode", "", err)
	}
	list, err := locateItemList(root)
	if err != nil {
		return nil, err
	}
	return &Document{root: root, list: list}, nil
}

// Load reads the document at path, falling back to Template when the file
// does not exist.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Template()
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrTransientIO, component, "load", path, err)
	}
	return Parse(data)
}

// locateItemList returns the first itemListComp of the first GridList row.
func locateItemList(root map[string]any) (map[string]any, error) {
	result, _ := root["result"].(map[string]any)
	rows, _ := result["rows"].([]any)
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok || row["controlId"] != "GridList" {
			continue
		}
		components, _ := row["components"].([]any)
		for _, c := range components {
			comp, ok := c.(map[string]any)
			if !ok || comp["type"] != "itemListComp" {
				continue
			}
			if _, ok := comp["items"].([]any); !ok {
				break
			}
			return comp, nil
		}
		break
	}
	return nil, faults.Wrap(faults.ErrPrecondition, component, "locate items",
		"could not find the items list in the GridList row", nil)
}

func (d *Document) items() []any {
	items, _ := d.list["items"].([]any)
	return items
}

func (d *Document) setItems(items []any) {
	if items == nil {
		items = []any{}
	}
	d.list["items"] = items
	d.list["totalItems"] = len(items)
	if cfg, ok := d.list["customStoreRowConfiguration"].(map[string]any); ok {
		cfg["maxOffers"] = len(items)
	}
}

func itemID(v any) string {
	m, _ := v.(map[string]any)
	id, _ := m["id"].(string)
	return id
}

// IDs returns the identifiers of every listed item in order.
func (d *Document) IDs() []string {
	items := d.items()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, itemID(it))
	}
	return out
}

// Count returns the number of listed items.
func (d *Document) Count() int {
	return len(d.items())
}

// TotalItems returns the stored totalItems value.
func (d *Document) TotalItems() int {
	switch v := d.list["totalItems"].(type) {
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// Upsert removes every entry whose id matches one of defs, then appends defs
// in order. Entries for other ids are kept in place.
func (d *Document) Upsert(now time.Time, defs ...cape.Definition) error {
	known := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		known[def.ItemID] = struct{}{}
	}
	kept := filterItems(d.items(), known)
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if _, dup := seen[def.ItemID]; dup {
			continue
		}
		seen[def.ItemID] = struct{}{}
		entry, err := toTree(NewItem(def, now))
		if err != nil {
			return faults.Wrap(faults.ErrPrecondition, component, "upsert", "cape "+def.ItemID, err)
		}
		kept = append(kept, entry)
	}
	d.setItems(kept)
	return nil
}

// Remove drops entries with the given ids and returns how many were removed.
func (d *Document) Remove(ids ...string) int {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	before := d.Count()
	d.setItems(filterItems(d.items(), known))
	return before - d.Count()
}

func filterItems(items []any, drop map[string]struct{}) []any {
	kept := make([]any, 0, len(items))
	for _, it := range items {
		if id := itemID(it); id != "" {
			if _, ok := drop[id]; ok {
				continue
			}
		}
		kept = append(kept, it)
	}
	return kept
}

func toTree(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bytes returns the indented document.
func (d *Document) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(d.root, "", "  ")
	if err != nil {
		return nil, faults.Wrap(faults.ErrPrecondition, component, "encode", "", err)
	}
	return data, nil
}

// Save writes the document to path atomically.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return faults.Wrap(faults.ErrTransientIO, component, "save", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return faults.Wrap(faults.ErrTransientIO, component, "save", path, err)
	}
	return nil
}

// Regenerate loads the document at path, upserts defs and saves it back.
func Regenerate(path string, now time.Time, defs []cape.Definition) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Upsert(now, defs...); err != nil {
		return nil, err
	}
	if err := doc.Save(path); err != nil {
		return nil, err
	}
	return doc, nil
}
