package capestore

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"capestudio/internal/cape"
	"capestudio/internal/faults"
	"capestudio/internal/fileutil"
)

// CheckTexture decodes the PNG header at path and reports its dimensions.
func CheckTexture(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, faults.Wrap(faults.ErrPrecondition, "capestore", "check texture", path, err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, faults.Wrap(faults.ErrPrecondition, "capestore", "check texture", path, err)
	}
	if format != "png" {
		return 0, 0, faults.Wrap(faults.ErrPrecondition, "capestore", "check texture",
			fmt.Sprintf("%s is %s, want png", path, format), nil)
	}
	return cfg.Width, cfg.Height, nil
}

// ImportTexture copies src into the textures directory as <item>_cape.png and
// records it on the cape. Unless force is set the image must be 64x32.
func (s *Store) ImportTexture(ctx context.Context, itemID, src string, force bool) (*cape.Definition, error) {
	def, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}

	w, h, err := CheckTexture(src)
	if err != nil {
		return nil, err
	}
	if !force && (w != cape.TextureWidth || h != cape.TextureHeight) {
		return nil, faults.Wrap(faults.ErrPrecondition, "capestore", "import texture",
			fmt.Sprintf("%s is %dx%d, want %dx%d (use --force to override)", src, w, h, cape.TextureWidth, cape.TextureHeight), nil)
	}

	if err := os.MkdirAll(s.texturesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create textures dir: %w", err)
	}
	dest := filepath.Join(s.texturesDir, def.TextureFileName())
	if abs, _ := filepath.Abs(src); abs != dest {
		if err := fileutil.CopyFile(src, dest); err != nil {
			return nil, fmt.Errorf("copy texture: %w", err)
		}
	}
	def.TexturePath = dest
	if err := s.Update(ctx, *def); err != nil {
		return nil, err
	}
	return def, nil
}
