package cape

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Rarity is the catalog rarity tier shown by the client.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DefaultRarity applies to newly created capes.
const DefaultRarity = RarityRare

// Rarities lists the valid tiers in display order.
func Rarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

// ParseRarity validates a rarity name.
func ParseRarity(value string) (Rarity, error) {
	r := Rarity(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Rarities() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown rarity %q (want common, rare, epic, or legendary)", value)
}

// TextureWidth and TextureHeight are the expected cape texture dimensions.
const (
	TextureWidth  = 64
	TextureHeight = 32
)

// Definition is one user-authored cape.
type Definition struct {
	ItemID       string `json:"item_id"`
	PieceUUID    string `json:"piece_uuid"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CreatorName  string `json:"creator_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Rarity       Rarity `json:"rarity"`
	TexturePath  string `json:"texture_path"`
	ArchivePath  string `json:"archive_path"`
}

// New returns a cape with fresh identifiers and the editor defaults.
func New(creator string) Definition {
	return Definition{
		ItemID:      uuid.NewString(),
		PieceUUID:   uuid.NewString(),
		Name:        "New Cape",
		Description: "Custom cape",
		CreatorName: creator,
		Rarity:      DefaultRarity,
	}
}

// Validate checks the identifiers and rarity. The item id names files on
// disk and must be a single path segment; generated ids are UUIDs.
func (d Definition) Validate() error {
	id := strings.TrimSpace(d.ItemID)
	if id == "" || id != d.ItemID || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("item id %q is not a valid file name segment", d.ItemID)
	}
	if _, err := uuid.Parse(d.PieceUUID); err != nil {
		return fmt.Errorf("piece uuid %q: %w", d.PieceUUID, err)
	}
	if _, err := ParseRarity(string(d.Rarity)); err != nil {
		return err
	}
	return nil
}

// PieceName is the persona piece name and the stem of the staged texture files.
func (d Definition) PieceName() string {
	return d.ItemID + "_cape"
}

// TextureFileName is the staged texture name inside the package.
func (d Definition) TextureFileName() string {
	return d.PieceName() + ".png"
}

// MetaFileName is the staged piece metadata name inside the package.
func (d Definition) MetaFileName() string {
	return d.PieceName() + ".meta.json"
}

// ArchiveFileName is the outer archive name under the zips directory.
func (d Definition) ArchiveFileName() string {
	return d.ItemID + "_primary.zip"
}

// ArchivePathIn returns the outer archive path under zipsDir.
func (d Definition) ArchivePathIn(zipsDir string) string {
	return filepath.Join(zipsDir, d.ArchiveFileName())
}

// TitleKey is the localization key for the cape title.
func (d Definition) TitleKey() string {
	return "persona." + d.PieceName() + ".title"
}

func (d Definition) String() string {
	return d.Name
}
