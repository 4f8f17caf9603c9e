// Package debug writes preview images of lightmaps while they are baked.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/brushlight/internal/engine/lightmap"
)

// PreviewWriter saves downscaled PNG snapshots of an atlas. It implements
// lightmap.ProgressSink.
type PreviewWriter struct {
	path string
	size int
	log  *zap.Logger
}

// NewPreviewWriter creates a writer that replaces the PNG at path with
// every snapshot, scaled to size x size. A size of 0 keeps the atlas size.
func NewPreviewWriter(path string, size int, log *zap.Logger) *PreviewWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &PreviewWriter{path: path, size: size, log: log}
}

// Path returns the preview file path.
func (pw *PreviewWriter) Path() string {
	return pw.path
}

// Flush implements lightmap.ProgressSink.
func (pw *PreviewWriter) Flush(snapshot *lightmap.Atlas, p lightmap.Progress) error {
	if err := pw.WriteImage(snapshot); err != nil {
		return err
	}
	pw.log.Debug("lightmap preview written",
		zap.String("path", pw.path), zap.Int("done", p.Done), zap.Int("total", p.Total))
	return nil
}

// WriteImage scales img and writes it to the preview path. The file is
// written next to the target and renamed over it.
func (pw *PreviewWriter) WriteImage(img image.Image) error {
	if dir := filepath.Dir(pw.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	out := img
	if b := img.Bounds(); pw.size > 0 && (b.Dx() != pw.size || b.Dy() != pw.size) {
		dst := image.NewRGBA(image.Rect(0, 0, pw.size, pw.size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		out = dst
	}

	tmp := pw.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, out); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp, pw.path); err != nil {
		return fmt.Errorf("replacing preview: %w", err)
	}
	return nil
}
