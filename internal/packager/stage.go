package packager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"capestudio/internal/cape"
	"capestudio/internal/fileutil"
)

const (
	manifestFile  = "manifest.json"
	contentsFile  = "contents.json"
	textsDir      = "texts"
	languagesFile = "languages.json"

	pieceType = "persona_capes"
)

var (
	packVersion = [3]int{1, 1, 0}
	capeZones   = []string{"body_back_upper", "body_back_lower"}
)

type manifestDoc struct {
	FormatVersion int              `json:"format_version"`
	Header        manifestHeader   `json:"header"`
	Modules       []manifestModule `json:"modules"`
}

type manifestHeader struct {
	Description string `json:"description"`
	Name        string `json:"name"`
	UUID        string `json:"uuid"`
	Version     [3]int `json:"version"`
}

type manifestModule struct {
	Type    string `json:"type"`
	UUID    string `json:"uuid"`
	Version [3]int `json:"version"`
}

type metaDoc struct {
	PieceID        string          `json:"piece_id"`
	PieceName      string          `json:"piece_name"`
	PieceType      string          `json:"piece_type"`
	Zone           []string        `json:"zone"`
	TextureSources []textureSource `json:"texture_sources"`
}

type textureSource struct {
	Texture string `json:"texture"`
}

type contentsDoc struct {
	Content []contentPath `json:"content"`
}

type contentPath struct {
	Path string `json:"path"`
}

func newManifest(def cape.Definition, moduleID string) manifestDoc {
	description := def.Description
	if description == "" {
		description = "pack.description"
	}
	name := def.Name
	if name == "" {
		name = "pack.name"
	}
	return manifestDoc{
		FormatVersion: 1,
		Header: manifestHeader{
			Description: description,
			Name:        name,
			UUID:        def.PieceUUID,
			Version:     packVersion,
		},
		Modules: []manifestModule{{
			Type:    "persona_piece",
			UUID:    moduleID,
			Version: packVersion,
		}},
	}
}

// stageTree writes the four content files plus manifest and descriptor into
// dir and returns the descriptor paths.
func stageTree(dir string, def cape.Definition, moduleID, langName string) ([]string, error) {
	if err := os.MkdirAll(filepath.Join(dir, textsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create staging tree: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, manifestFile), newManifest(def, moduleID)); err != nil {
		return nil, err
	}

	texture := def.TextureFileName()
	if err := fileutil.CopyFile(def.TexturePath, filepath.Join(dir, texture)); err != nil {
		return nil, fmt.Errorf("copy texture: %w", err)
	}

	meta := metaDoc{
		PieceID:        def.PieceUUID,
		PieceName:      def.PieceName(),
		PieceType:      pieceType,
		Zone:           capeZones,
		TextureSources: []textureSource{{Texture: texture}},
	}
	if err := writeJSON(filepath.Join(dir, def.MetaFileName()), meta); err != nil {
		return nil, err
	}

	languages := textsDir + "/" + languagesFile
	if err := writeJSON(filepath.Join(dir, filepath.FromSlash(languages)), []string{langName}); err != nil {
		return nil, err
	}
	lang := textsDir + "/" + langName + ".lang"
	line := fmt.Sprintf("%s=%s\n", def.TitleKey(), def.Name)
	if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(lang)), []byte(line), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", lang, err)
	}

	paths := []string{texture, def.MetaFileName(), languages, lang}
	contents := contentsDoc{Content: make([]contentPath, 0, len(paths))}
	for _, p := range paths {
		contents.Content = append(contents.Content, contentPath{Path: p})
	}
	if err := writeJSON(filepath.Join(dir, contentsFile), contents); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
