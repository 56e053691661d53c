package synth

import (
	"image"
	"image/color"

	"github.com/suyashkumar/dicom/pkg/frame"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawTextOnFrame16 stamps text near the top edge of a uint16 frame: a black
// outline first, then the glyphs at value. Pixels elsewhere are untouched.
func drawTextOnFrame16(nativeFrame *frame.NativeFrame[uint16], width, height int, text string, value uint16) {
	face := basicfont.Face7x13
	baseWidth := font.MeasureString(face, text).Ceil()
	baseHeight := 13
	if baseWidth == 0 {
		return
	}

	textImg := image.NewAlpha(image.Rect(0, 0, baseWidth, baseHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.NewUniform(color.Alpha{A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(11)},
	}
	drawer.DrawString(text)

	// half the frame width, never smaller than the font itself
	scale := float64(width) * 0.5 / float64(baseWidth)
	if scale < 1 {
		scale = 1
	}
	scaledWidth := int(float64(baseWidth) * scale)
	scaledHeight := int(float64(baseHeight) * scale)
	scaled := image.NewAlpha(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), textImg, textImg.Bounds(), draw.Over, nil)

	originX := (width - scaledWidth) / 2
	originY := 2
	outline := max(1, scaledHeight/10)

	set := func(x, y int, v uint16) {
		if x >= 0 && x < width && y >= 0 && y < height {
			nativeFrame.RawData[y*width+x] = v
		}
	}

	for sy := 0; sy < scaledHeight; sy++ {
		for sx := 0; sx < scaledWidth; sx++ {
			if scaled.AlphaAt(sx, sy).A < 128 {
				continue
			}
			for dy := -outline; dy <= outline; dy++ {
				for dx := -outline; dx <= outline; dx++ {
					if dx*dx+dy*dy <= outline*outline {
						set(originX+sx+dx, originY+sy+dy, 0)
					}
				}
			}
		}
	}
	for sy := 0; sy < scaledHeight; sy++ {
		for sx := 0; sx < scaledWidth; sx++ {
			if scaled.AlphaAt(sx, sy).A >= 128 {
				set(originX+sx, originY+sy, value)
			}
		}
	}
}
