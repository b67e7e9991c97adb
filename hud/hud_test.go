package hud

import (
	"image/color"
	"testing"
)

func TestCaptionRender(t *testing.T) {
	bg := color.RGBA{A: 255}
	c, err := NewCaption(CaptionConfig{Width: 256, Height: 32, Background: bg})
	if err != nil {
		t.Fatal(err)
	}
	img, changed, err := c.Render("exterior-orbit 42%")
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("first render should report change")
	}
	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != bg {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("no glyph pixels drawn")
	}
	_, changed, _ = c.Render("exterior-orbit 42%")
	if changed {
		t.Error("same text should not re-render")
	}
	img, changed, _ = c.Render("")
	if !changed {
		t.Error("cleared text should report change")
	}
	if img.RGBAAt(10, 10) != bg {
		t.Error("empty caption should be background only")
	}
}

func TestCaptionBadConfig(t *testing.T) {
	_, err := NewCaption(CaptionConfig{Width: 0, Height: 10})
	if err == nil {
		t.Error("expected error for zero width")
	}
	_, err = NewCaption(CaptionConfig{Width: 10, Height: 10, TTF: []byte("not a font")})
	if err == nil {
		t.Error("expected error for bad font")
	}
}
