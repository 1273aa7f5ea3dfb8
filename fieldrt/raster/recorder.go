package raster

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Recorder collects presented frames into an animated GIF and/or a PNG sequence.
// Delay is in 100ths of a second (e.g. 2 => 50 fps).
type Recorder struct {
	GIFPath   string
	PNGPrefix string
	Delay     int

	anim   *gif.GIF
	frames int
}

func (r *Recorder) Enabled() bool { return r.GIFPath != "" || r.PNGPrefix != "" }

func (r *Recorder) Frames() int { return r.frames }

// Capture stores one frame. PNG frames are written immediately.
func (r *Recorder) Capture(img *image.NRGBA) error {
	if r.PNGPrefix != "" {
		path := fmt.Sprintf("%s%05d.png", r.PNGPrefix, r.frames)
		if err := writePNG(path, img); err != nil {
			return err
		}
	}
	if r.GIFPath != "" {
		if r.anim == nil {
			r.anim = &gif.GIF{LoopCount: 0}
		}
		p := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, p.Bounds(), img, img.Bounds().Min)
		r.anim.Image = append(r.anim.Image, p)
		r.anim.Delay = append(r.anim.Delay, max(1, r.Delay))
	}
	r.frames++
	return nil
}

// Close flushes the GIF, if any frames were captured for it.
func (r *Recorder) Close() error {
	if r.anim == nil || len(r.anim.Image) == 0 {
		return nil
	}
	f, err := os.Create(r.GIFPath)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := gif.EncodeAll(f, r.anim); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	r.anim = nil
	return f.Close()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	return f.Close()
}
