package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// WriteTexture writes a width x height PNG to path and returns path.
func WriteTexture(t testing.TB, path string, width, height int) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: 0xB0, G: 0x10, B: 0x20, A: 0xFF})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// WriteCapeTexture writes a valid 64x32 cape texture under dir.
func WriteCapeTexture(t testing.TB, dir string) string {
	t.Helper()
	return WriteTexture(t, filepath.Join(dir, "cape.png"), 64, 32)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
