package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/brushlight/internal/engine/lightmap"
)

func TestPreviewWriterFlush(t *testing.T) {
	atlas := lightmap.NewAtlas(64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			atlas.SetRGB(x, y, 255, 255, 255)
		}
	}
	path := filepath.Join(t.TempDir(), "out", "preview.png")
	pw := NewPreviewWriter(path, 16, nil)

	if err := pw.Flush(atlas, lightmap.Progress{Done: 1, Total: 2}); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("preview not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("preview bounds = %v, want 16x16", b)
	}
	if r, _, _, _ := img.At(8, 8).RGBA(); r>>8 != 255 {
		t.Errorf("preview centre red = %d, want 255", r>>8)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestPreviewWriterKeepsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	pw := NewPreviewWriter(path, 0, nil)
	if err := pw.WriteImage(lightmap.NewAtlas(8)); err != nil {
		t.Fatalf("WriteImage() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("preview not written: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("png.DecodeConfig() error = %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("preview size = %dx%d, want 8x8", cfg.Width, cfg.Height)
	}
}
