package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SourceImage is a decoded, non-premultiplied RGBA8 pixel buffer, row-major.
type SourceImage struct {
	Width, Height int
	Pix           []uint8
}

// NewSourceImage wraps a raw RGBA buffer. pix must hold width*height*4 bytes.
func NewSourceImage(width, height int, pix []uint8) (*SourceImage, error) {
	if width < 0 || height < 0 || len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer size %d does not match %dx%d", len(pix), width, height)
	}
	return &SourceImage{Width: width, Height: height, Pix: pix}, nil
}

// FromImage copies any image.Image into a SourceImage, the way a 2D canvas would.
func FromImage(img image.Image) *SourceImage {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &SourceImage{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// RGBA returns the channels of the pixel at column x, row y.
func (s *SourceImage) RGBA(x, y int) (r, g, b, a uint8) {
	i := (y*s.Width + x) * 4
	return s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3]
}

func (s *SourceImage) image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.Pix,
		Stride: s.Width * 4,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
}

// Downscale returns a copy whose longest side is at most maxDim pixels.
// The receiver is returned as-is when it already fits or maxDim <= 0.
func (s *SourceImage) Downscale(maxDim int) *SourceImage {
	if maxDim <= 0 || (s.Width <= maxDim && s.Height <= maxDim) {
		return s
	}
	w, h := s.Width, s.Height
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), s.image(), s.image().Bounds(), draw.Src, nil)
	return &SourceImage{Width: w, Height: h, Pix: dst.Pix}
}

// Decode reads PNG, JPEG, GIF, BMP, TIFF or WebP data.
func Decode(r io.Reader) (*SourceImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Loader fetches images from http(s) URLs or the filesystem.
type Loader struct {
	Client *http.Client
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Load fetches and decodes src. Every failure is an *ImageLoadError.
func (l *Loader) Load(ctx context.Context, src string) (*SourceImage, error) {
	var (
		data []byte
		err  error
	)
	if isURL(src) {
		data, err = l.fetch(ctx, src)
	} else {
		data, err = os.ReadFile(strings.TrimPrefix(src, "file://"))
		if err != nil {
			err = &ImageLoadError{Source: src, Err: err}
		}
	}
	if err != nil {
		return nil, err
	}

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageLoadError{Source: src, Err: fmt.Errorf("decode: %w", err)}
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, &ImageLoadError{Source: src, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &ImageLoadError{Source: src, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &ImageLoadError{Source: src, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ImageLoadError{Source: src, Status: resp.StatusCode, Err: err}
	}
	return data, nil
}

// Load fetches src with a default Loader.
func Load(ctx context.Context, src string) (*SourceImage, error) {
	var l Loader
	return l.Load(ctx, src)
}
