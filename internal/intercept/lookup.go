package intercept

import "capestudio/internal/cape"

type lookupResponse struct {
	Code   int        `json:"code"`
	Status string     `json:"status"`
	Data   lookupData `json:"data"`
}

type lookupData struct {
	Item lookupItem `json:"Item"`
}

type lookupItem struct {
	ID                string            `json:"Id"`
	Type              string            `json:"Type"`
	Title             neutralText       `json:"Title"`
	Description       neutralText       `json:"Description"`
	ContentType       string            `json:"ContentType"`
	Contents          []lookupContent   `json:"Contents"`
	DisplayProperties displayProperties `json:"DisplayProperties"`
}

type neutralText struct {
	Neutral string `json:"NEUTRAL"`
}

type lookupContent struct {
	ID   string `json:"Id"`
	URL  string `json:"Url"`
	Type string `json:"Type"`
}

type displayProperties struct {
	PieceType string      `json:"pieceType"`
	Rarity    cape.Rarity `json:"rarity"`
}

func newLookupResponse(def cape.Definition, assetID, url string) lookupResponse {
	return lookupResponse{
		Code:   200,
		Status: "OK",
		Data: lookupData{Item: lookupItem{
			ID:          def.ItemID,
			Type:        lookupItemType,
			Title:       neutralText{Neutral: def.Name},
			Description: neutralText{Neutral: def.Description},
			ContentType: "PersonaDurable",
			Contents: []lookupContent{{
				ID:   assetID,
				URL:  url,
				Type: lookupBinaryType,
			}},
			DisplayProperties: displayProperties{
				PieceType: "persona_capes",
				Rarity:    def.Rarity,
			},
		}},
	}
}
