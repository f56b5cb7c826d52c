package keyboard

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/gesture"
)

var (
	keyColor   = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

const (
	keyThickness = 2
	fontScale    = 1.0
	fontFace     = gocv.FontHersheyPlain
)

// Renderer draws the keyboard overlay. It keeps no per-frame state.
type Renderer struct {
	keys []Key
}

// NewRenderer precomputes the key rectangles of layout.
func NewRenderer(layout Layout) *Renderer {
	return &Renderer{keys: layout.Keys()}
}

// Keys returns the keys the renderer draws.
func (r *Renderer) Keys() []Key {
	return r.keys
}

// Draw paints the keyboard onto img when a left hand is present. The hand
// only gates drawing; key positions do not follow the fingers.
func (r *Renderer) Draw(img *gocv.Mat, hand *gesture.PixelHand) {
	if hand == nil || img == nil || img.Empty() {
		return
	}

	for _, k := range r.keys {
		gocv.Rectangle(img, k.Rect, keyColor, keyThickness)

		size := gocv.GetTextSize(k.Label, fontFace, fontScale, keyThickness)
		org := image.Pt(
			k.Rect.Min.X+(k.Rect.Dx()-size.X)/2,
			k.Rect.Min.Y+(k.Rect.Dy()+size.Y)/2,
		)
		gocv.PutText(img, k.Label, org, fontFace, fontScale, labelColor, keyThickness)
	}
}
