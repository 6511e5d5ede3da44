package cape_test

import (
	"path/filepath"
	"testing"

	"capestudio/internal/cape"
)

func TestNewAssignsIdentifiersAndDefaults(t *testing.T) {
	def := cape.New("alex")
	if err := def.Validate(); err != nil {
		t.Fatalf("expected new cape to validate: %v", err)
	}
	if def.ItemID == def.PieceUUID {
		t.Fatal("expected distinct item id and piece uuid")
	}
	if def.Name != "New Cape" || def.Description != "Custom cape" {
		t.Fatalf("unexpected defaults: %+v", def)
	}
	if def.Rarity != cape.RarityRare {
		t.Fatalf("expected rare default, got %q", def.Rarity)
	}
	if def.CreatorName != "alex" {
		t.Fatalf("unexpected creator %q", def.CreatorName)
	}
}

func TestParseRarity(t *testing.T) {
	for _, value := range []string{"common", "Rare", " epic ", "LEGENDARY"} {
		if _, err := cape.ParseRarity(value); err != nil {
			t.Fatalf("ParseRarity(%q) failed: %v", value, err)
		}
	}
	if _, err := cape.ParseRarity("mythic"); err == nil {
		t.Fatal("expected error for unknown rarity")
	}
}

func TestValidateRejectsBadIdentifiers(t *testing.T) {
	def := cape.New("alex")
	for _, id := range []string{"", "..", "a/b", `a\b`, " A"} {
		def.ItemID = id
		if err := def.Validate(); err == nil {
			t.Fatalf("expected error for item id %q", id)
		}
	}

	def.ItemID = "A"
	if err := def.Validate(); err != nil {
		t.Fatalf("expected short item id to validate: %v", err)
	}
	def.PieceUUID = "not-a-uuid"
	if err := def.Validate(); err == nil {
		t.Fatal("expected error for non-uuid piece id")
	}
}

func TestDerivedNames(t *testing.T) {
	def := cape.Definition{ItemID: "A"}
	if got := def.TextureFileName(); got != "A_cape.png" {
		t.Fatalf("texture name %q", got)
	}
	if got := def.MetaFileName(); got != "A_cape.meta.json" {
		t.Fatalf("meta name %q", got)
	}
	if got := def.TitleKey(); got != "persona.A_cape.title" {
		t.Fatalf("title key %q", got)
	}
	if got := def.ArchivePathIn("/out/zips"); got != filepath.Join("/out/zips", "A_primary.zip") {
		t.Fatalf("archive path %q", got)
	}
}

func TestSetFindAndOrder(t *testing.T) {
	set := cape.NewSet([]cape.Definition{
		{ItemID: "A", Name: "Crimson"},
		{ItemID: "B", Name: "Azure"},
		{ItemID: "A", Name: "Crimson v2"},
	})
	if set.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", set.Len())
	}
	got, ok := set.Find("A")
	if !ok || got.Name != "Crimson v2" {
		t.Fatalf("expected replaced definition, got %+v ok=%v", got, ok)
	}
	if _, ok := set.Find("missing"); ok {
		t.Fatal("expected missing id to be absent")
	}
	all := set.All()
	if len(all) != 2 || all[0].ItemID != "A" || all[1].ItemID != "B" {
		t.Fatalf("unexpected order: %+v", all)
	}
	var nilSet *cape.Set
	if _, ok := nilSet.Find("A"); ok {
		t.Fatal("nil set should find nothing")
	}
}
