// Package hud rasterizes short text captions for on-screen overlays.
package hud

import (
	"errors"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// CaptionConfig configures a [Caption].
type CaptionConfig struct {
	Width, Height int
	// Size is the font size in points. If zero a size filling the height is chosen.
	Size       float64
	Foreground color.Color // Defaults to white.
	Background color.Color // Defaults to translucent black.
	// TTF is a true type font file. If nil the Go Mono font is used.
	TTF []byte
}

// Caption renders a single line of text into a reusable RGBA image.
type Caption struct {
	img  *image.RGBA
	bg   image.Image
	ctx  *freetype.Context
	size float64
	last string
}

// NewCaption parses the configured font and allocates the caption image.
func NewCaption(cfg CaptionConfig) (*Caption, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("caption size must be positive")
	}
	ttf := cfg.TTF
	if ttf == nil {
		ttf = gomono.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	if cfg.Size == 0 {
		cfg.Size = 0.6 * float64(cfg.Height)
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.White
	}
	if cfg.Background == nil {
		cfg.Background = color.RGBA{A: 160}
	}
	c := &Caption{
		img:  image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		bg:   image.NewUniform(cfg.Background),
		ctx:  freetype.NewContext(),
		size: cfg.Size,
	}
	c.ctx.SetDPI(72)
	c.ctx.SetFont(f)
	c.ctx.SetFontSize(cfg.Size)
	c.ctx.SetHinting(font.HintingFull)
	c.ctx.SetClip(c.img.Bounds())
	c.ctx.SetDst(c.img)
	c.ctx.SetSrc(image.NewUniform(cfg.Foreground))
	c.clear()
	return c, nil
}

// Render draws text and returns the caption image. changed is false when text
// is the same as the previous call, in which case the image is untouched.
// The returned image is reused between calls.
func (c *Caption) Render(text string) (img *image.RGBA, changed bool, err error) {
	if text == c.last {
		return c.img, false, nil
	}
	c.clear()
	c.last = text
	h := c.img.Bounds().Dy()
	ascent := c.ctx.PointToFixed(c.size).Ceil()
	baseline := (h+ascent)/2 - 1
	_, err = c.ctx.DrawString(text, freetype.Pt(h/4, baseline))
	if err != nil {
		return nil, false, err
	}
	return c.img, true, nil
}

// Image returns the last rendered caption.
func (c *Caption) Image() *image.RGBA { return c.img }

func (c *Caption) clear() {
	draw.Draw(c.img, c.img.Bounds(), c.bg, image.Point{}, draw.Src)
}
