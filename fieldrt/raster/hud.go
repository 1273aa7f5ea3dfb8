package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gekko3d/pixeldust/fieldrt/core"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HUD draws a few lines of status text in the top-left corner of a frame.
type HUD struct {
	Face   font.Face
	Color  color.Color
	Origin image.Point
}

func NewHUD() *HUD {
	return &HUD{
		Face:   basicfont.Face7x13,
		Color:  color.NRGBA{R: 200, G: 200, B: 200, A: 255},
		Origin: image.Pt(8, 4),
	}
}

func (h *HUD) Lines(u core.Uniforms, particles, frame int) []string {
	return []string{
		fmt.Sprintf("particles %d", particles),
		fmt.Sprintf("t %.2fs  frame %d", u.Time, frame),
		fmt.Sprintf("pointer %+.2f %+.2f", u.Pointer.X(), u.Pointer.Y()),
	}
}

func (h *HUD) Draw(dst draw.Image, lines ...string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(h.Color),
		Face: h.Face,
	}
	lineHeight := h.Face.Metrics().Height.Ceil()
	ascent := h.Face.Metrics().Ascent.Ceil()
	for i, line := range lines {
		d.Dot = fixed.P(h.Origin.X, h.Origin.Y+ascent+i*lineHeight)
		d.DrawString(line)
	}
}
