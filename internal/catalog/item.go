package catalog

import (
	"time"

	"capestudio/internal/cape"
)

const (
	contentType     = "PersonaDurable"
	pieceType       = "persona_capes"
	creatorPage     = "CreatorPage_master_player_account!H8MB8R7GTF"
	minecoinID      = "ecd19d3c-7635-402c-a185-eb11cb6c6946"
	packVersion     = "1.2.0"
	startDateLayout = "2006-01-02T15:04:05.000Z"
)

// Item is one catalog entry for a cape.
type Item struct {
	ID                    string         `json:"id"`
	ContentType           string         `json:"contentType"`
	Title                 string         `json:"title"`
	Description           string         `json:"description"`
	CreatorName           string         `json:"creatorName"`
	Thumbnail             Thumbnail      `json:"thumbnail"`
	Rating                Rating         `json:"rating"`
	Price                 Price          `json:"price"`
	LinksTo               string         `json:"linksTo"`
	LinksToInfo           LinksToInfo    `json:"linksToInfo"`
	CreatorPage           string         `json:"creatorPage"`
	Statistics            Statistics     `json:"statistics"`
	Flags                 []string       `json:"flags"`
	PieceType             string         `json:"pieceType"`
	Rarity                cape.Rarity    `json:"rarity"`
	Ownership             string         `json:"ownership"`
	PackType              string         `json:"packType"`
	PackIdentity          []PackIdentity `json:"packIdentity"`
	Tags                  []string       `json:"tags"`
	Images                []Image        `json:"images"`
	Contents              []any          `json:"contents"`
	PlatformRestricted    bool           `json:"platformRestricted"`
	IconOverlay           []any          `json:"iconOverlay"`
	DescriptionLineByLine []string       `json:"descriptionLineByLine"`
	StartDate             string         `json:"startDate"`
	Subscription          []any          `json:"subscription"`
	ThumbnailPreviewOnly  bool           `json:"thumbnailPreviewOnly"`
}

type Thumbnail struct {
	Tag               string `json:"tag"`
	Type              string `json:"type"`
	URL               string `json:"url"`
	URLWithResolution string `json:"urlWithResolution"`
}

type Rating struct {
	Average    float64 `json:"average"`
	TotalCount int     `json:"totalCount"`
}

type Price struct {
	ListPrice           int        `json:"listPrice"`
	RealmsInfo          RealmsInfo `json:"realmsInfo"`
	CurrencyID          string     `json:"currencyId"`
	VirtualCurrencyType string     `json:"virtualCurrencyType"`
}

type RealmsInfo struct {
	InRealmsPlus bool `json:"inRealmsPlus"`
}

type LinksToInfo struct {
	LinksTo         string `json:"linksTo"`
	LinkType        string `json:"linkType"`
	DisplayType     string `json:"displayType"`
	NavigateInPlace bool   `json:"navigateInPlace"`
}

type Statistics struct {
	Skins     int `json:"skins"`
	Worlds    int `json:"worlds"`
	Textures  int `json:"textures"`
	Behaviors int `json:"behaviors"`
}

type PackIdentity struct {
	Type    string `json:"type"`
	UUID    string `json:"uuid"`
	Version string `json:"version"`
}

type Image struct {
	Tag  string `json:"tag"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// NewItem renders def as a catalog entry dated now.
func NewItem(def cape.Definition, now time.Time) Item {
	link := "ItemDetail_" + def.ItemID + "?selectedItemId=" + def.ItemID
	return Item{
		ID:          def.ItemID,
		ContentType: contentType,
		Title:       def.Name,
		Description: def.Description,
		CreatorName: def.CreatorName,
		Thumbnail: Thumbnail{
			Tag:               "Thumbnail",
			Type:              "Thumbnail",
			URL:               def.ThumbnailURL,
			URLWithResolution: def.ThumbnailURL,
		},
		Rating: Rating{Average: 4.5, TotalCount: 10},
		Price: Price{
			CurrencyID:          minecoinID,
			VirtualCurrencyType: "Minecoin",
		},
		LinksTo: link,
		LinksToInfo: LinksToInfo{
			LinksTo:     link,
			LinkType:    "pageId",
			DisplayType: "store_layout.character_creator_screen",
		},
		CreatorPage:  creatorPage,
		Flags:        []string{},
		PieceType:    pieceType,
		Rarity:       def.Rarity,
		Ownership:    "Purchased",
		PackType:     "Persona",
		PackIdentity: []PackIdentity{{Type: "persona_piece", UUID: def.PieceUUID, Version: packVersion}},
		Tags:         []string{},
		Images: []Image{{
			Tag:  "Thumbnail",
			Type: "Thumbnail",
			URL:  def.ThumbnailURL,
		}},
		Contents:              []any{},
		IconOverlay:           []any{},
		DescriptionLineByLine: []string{},
		StartDate:             now.UTC().Format(startDateLayout),
		Subscription:          []any{},
	}
}
