package catalog_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"capestudio/internal/cape"
	"capestudio/internal/catalog"
	"capestudio/internal/faults"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

func defs() []cape.Definition {
	return []cape.Definition{
		{ItemID: "A", PieceUUID: "p-a", Name: "Crimson", Rarity: cape.RarityEpic, CreatorName: "me"},
		{ItemID: "B", PieceUUID: "p-b", Name: "Azure", Rarity: cape.RarityRare},
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	doc, err := catalog.Template()
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := doc.Upsert(fixedNow, defs()...); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if doc.Count() != 2 || doc.TotalItems() != 2 {
		t.Fatalf("count=%d total=%d, want 2", doc.Count(), doc.TotalItems())
	}
	ids := doc.IDs()
	if ids[0] != "A" || ids[1] != "B" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestUpsertKeepsForeignItems(t *testing.T) {
	raw := []byte(`{"result":{"rows":[{"controlId":"GridList","components":[
		{"type":"itemListComp","items":[{"id":"real-1"},{"id":"A","title":"stale"}],"totalItems":2,
		 "customStoreRowConfiguration":{"maxOffers":2}}]}],"extra":"kept"}}`)
	doc, err := catalog.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := doc.Upsert(fixedNow, defs()...); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	ids := doc.IDs()
	if len(ids) != 3 || ids[0] != "real-1" || ids[1] != "A" || ids[2] != "B" {
		t.Fatalf("unexpected ids %v", ids)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	var decoded struct {
		Result struct {
			Extra string `json:"extra"`
			Rows  []struct {
				Components []struct {
					TotalItems int `json:"totalItems"`
					Config     struct {
						MaxOffers int `json:"maxOffers"`
					} `json:"customStoreRowConfiguration"`
					Items []map[string]any `json:"items"`
				} `json:"components"`
			} `json:"rows"`
		} `json:"result"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	comp := decoded.Result.Rows[0].Components[0]
	if decoded.Result.Extra != "kept" || comp.TotalItems != 3 || comp.Config.MaxOffers != 3 {
		t.Fatalf("unexpected output %s", out)
	}
	if comp.Items[1]["title"] != "Crimson" {
		t.Fatalf("stale entry was not replaced: %v", comp.Items[1])
	}
}

func TestRemoveUpdatesCount(t *testing.T) {
	doc, err := catalog.Template()
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if err := doc.Upsert(fixedNow, defs()...); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n := doc.Remove("A", "missing"); n != 1 {
		t.Fatalf("expected one removal, got %d", n)
	}
	if doc.Count() != 1 || doc.TotalItems() != 1 {
		t.Fatalf("count=%d total=%d", doc.Count(), doc.TotalItems())
	}
}

func TestParseRejectsMalformedStructure(t *testing.T) {
	tests := []string{
		`{"result":{"rows":[]}}`,
		`{"result":{"rows":[{"controlId":"Layout","components":[]}]}}`,
		`{"result":{"rows":[{"controlId":"GridList","components":[{"type":"headerComp"}]}]}}`,
		`[]`,
	}
	for _, raw := range tests {
		if _, err := catalog.Parse([]byte(raw)); !errors.Is(err, faults.ErrPrecondition) {
			t.Errorf("Parse(%s) = %v, want precondition failure", raw, err)
		}
	}
}

func TestNewItemShape(t *testing.T) {
	def := cape.Definition{ItemID: "A", PieceUUID: "p-a", Name: "Crimson", Rarity: cape.RarityEpic, ThumbnailURL: "https://t/x.png"}
	item := catalog.NewItem(def, fixedNow)
	if item.LinksTo != "ItemDetail_A?selectedItemId=A" || item.LinksToInfo.LinksTo != item.LinksTo {
		t.Fatalf("unexpected link %q", item.LinksTo)
	}
	if item.StartDate != "2026-03-04T05:06:07.890Z" {
		t.Fatalf("unexpected start date %q", item.StartDate)
	}
	if len(item.PackIdentity) != 1 || item.PackIdentity[0].UUID != "p-a" || item.PackIdentity[0].Version != "1.2.0" {
		t.Fatalf("unexpected pack identity %+v", item.PackIdentity)
	}
	if item.Thumbnail.URL != "https://t/x.png" || item.Images[0].URL != "https://t/x.png" {
		t.Fatalf("thumbnail not propagated")
	}
	raw, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	for _, key := range []string{"flags", "tags", "contents", "iconOverlay", "descriptionLineByLine", "subscription"} {
		if arr, ok := m[key].([]any); !ok || len(arr) != 0 {
			t.Fatalf("%s should be an empty array, got %v", key, m[key])
		}
	}
}

func TestRegenerateCreatesFromTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "capesv2.json")
	doc, err := catalog.Regenerate(path, fixedNow, defs())
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if doc.Count() != 2 {
		t.Fatalf("count = %d", doc.Count())
	}
	loaded, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Count() != 2 || loaded.TotalItems() != 2 {
		t.Fatalf("reloaded count=%d total=%d", loaded.Count(), loaded.TotalItems())
	}
	if _, err := catalog.Regenerate(path, fixedNow, defs()); err != nil {
		t.Fatalf("second Regenerate: %v", err)
	}
	again, _ := catalog.Load(path)
	if again.Count() != 2 {
		t.Fatalf("regenerate duplicated entries: %d", again.Count())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("catalog not written: %v", err)
	}
}
