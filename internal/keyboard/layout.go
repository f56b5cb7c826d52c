// Package keyboard draws the virtual keyboard overlay shown for the left hand.
package keyboard

import "image"

// Rows is the key layout, top row first. The space key follows the last row.
var Rows = []string{"QWERTYUIOP", "ASDFGHJKL", "ZXCVBNM"}

// SpaceLabel is the label of the space key.
const SpaceLabel = "SPACE"

// spaceKeys is how many regular keys the space key spans.
const spaceKeys = 3

// Key is one key cap in frame pixels.
type Key struct {
	Label string
	Rect  image.Rectangle
}

// Layout positions the keyboard on the frame.
type Layout struct {
	Origin  image.Point
	KeySize int
	Gap     int
}

// DefaultLayout matches the default configuration.
func DefaultLayout() Layout {
	return Layout{Origin: image.Pt(50, 50), KeySize: 50, Gap: 10}
}

// Keys returns every key in reading order. Each row is shifted right by half
// a key relative to the one above it.
func (l Layout) Keys() []Key {
	step := l.KeySize + l.Gap
	keys := make([]Key, 0, 27)

	var x int
	for row, letters := range Rows {
		x = l.Origin.X + row*l.KeySize/2
		y := l.Origin.Y + row*step
		for _, r := range letters {
			keys = append(keys, Key{
				Label: string(r),
				Rect:  image.Rect(x, y, x+l.KeySize, y+l.KeySize),
			})
			x += step
		}
	}

	last := len(Rows) - 1
	y := l.Origin.Y + last*step
	width := spaceKeys*l.KeySize + (spaceKeys-1)*l.Gap
	keys = append(keys, Key{
		Label: SpaceLabel,
		Rect:  image.Rect(x, y, x+width, y+l.KeySize),
	})

	return keys
}

// Bounds returns the smallest rectangle covering every key.
func (l Layout) Bounds() image.Rectangle {
	var b image.Rectangle
	for i, k := range l.Keys() {
		if i == 0 {
			b = k.Rect
			continue
		}
		b = b.Union(k.Rect)
	}
	return b
}
