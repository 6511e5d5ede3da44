package capestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"capestudio/internal/cape"
	"capestudio/internal/capestore"
	"capestudio/internal/faults"
	"capestudio/internal/testsupport"
)

func TestAddGetListOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := cape.New("alex")
	first.Name = "Crimson"
	second := cape.New("alex")
	second.Name = "Azure"
	for _, def := range []cape.Definition{first, second} {
		if err := store.Add(ctx, def); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := store.Get(ctx, first.ItemID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Name != "Crimson" || got.PieceUUID != first.PieceUUID || got.Rarity != cape.RarityRare {
		t.Fatalf("unexpected cape %#v", got)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ItemID != first.ItemID || all[1].ItemID != second.ItemID {
		t.Fatalf("unexpected order %#v", all)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown id, got %#v err=%v", missing, err)
	}
}

func TestUpdateAndRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	def := cape.New("alex")
	if err := store.Add(ctx, def); err != nil {
		t.Fatalf("Add: %v", err)
	}
	def.Name = "Renamed"
	def.Rarity = cape.RarityLegendary
	def.ThumbnailURL = "https://example.invalid/t.png"
	if err := store.Update(ctx, def); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.SetArchivePath(ctx, def.ItemID, "/out/zips/x.zip"); err != nil {
		t.Fatalf("SetArchivePath: %v", err)
	}
	got, _ := store.Get(ctx, def.ItemID)
	if got.Name != "Renamed" || got.Rarity != cape.RarityLegendary || got.ArchivePath != "/out/zips/x.zip" {
		t.Fatalf("unexpected cape after update %#v", got)
	}

	if err := store.Remove(ctx, def.ItemID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(ctx, def.ItemID); !errors.Is(err, capestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Update(ctx, def); !errors.Is(err, capestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestAddRejectsInvalidDefinition(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	def := cape.New("alex")
	def.Rarity = "mythic"
	if err := store.Add(context.Background(), def); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := capestore.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	def := cape.New("alex")
	if err := store.Add(context.Background(), def); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_ = store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	got, err := reopened.Get(context.Background(), def.ItemID)
	if err != nil || got == nil {
		t.Fatalf("expected cape after reopen, got %#v err=%v", got, err)
	}
}

func TestImportTextureEnforcesSize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	def := cape.New("alex")
	if err := store.Add(ctx, def); err != nil {
		t.Fatalf("Add: %v", err)
	}

	wrong := testsupport.WriteTexture(t, filepath.Join(t.TempDir(), "big.png"), 128, 64)
	if _, err := store.ImportTexture(ctx, def.ItemID, wrong, false); !errors.Is(err, faults.ErrPrecondition) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
	if _, err := store.ImportTexture(ctx, def.ItemID, wrong, true); err != nil {
		t.Fatalf("forced import failed: %v", err)
	}

	good := testsupport.WriteCapeTexture(t, t.TempDir())
	updated, err := store.ImportTexture(ctx, def.ItemID, good, false)
	if err != nil {
		t.Fatalf("ImportTexture: %v", err)
	}
	want := filepath.Join(cfg.TexturesDir(), def.ItemID+"_cape.png")
	if updated.TexturePath != want {
		t.Fatalf("texture path %q, want %q", updated.TexturePath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("texture not copied: %v", err)
	}
	w, h, err := capestore.CheckTexture(want)
	if err != nil || w != 64 || h != 32 {
		t.Fatalf("imported texture is %dx%d err=%v", w, h, err)
	}

	if _, err := store.ImportTexture(ctx, def.ItemID, want, false); err != nil {
		t.Fatalf("re-importing the stored texture failed: %v", err)
	}
	if w, h, err := capestore.CheckTexture(want); err != nil || w != 64 || h != 32 {
		t.Fatalf("stored texture damaged by self import: %dx%d err=%v", w, h, err)
	}
}
