package display

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// HandConnections are the landmark pairs joined when drawing a hand skeleton.
var HandConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC},
	{detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP},
	{detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP},
	{detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP},
	{detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP},
	{detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP},
	{detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP},
	{detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP},
	{detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

var (
	boneColor     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	leftJoint     = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	rightJoint    = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	statusColor   = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	jointRadius   = 4
	lineThickness = 2
)

// DrawHand draws the landmarks and skeleton of hand onto img.
func DrawHand(img *gocv.Mat, hand gesture.PixelHand) {
	if img == nil || img.Empty() {
		return
	}

	for _, c := range HandConnections {
		a, b := hand.Points[c[0]], hand.Points[c[1]]
		gocv.Line(img, image.Pt(a.X, a.Y), image.Pt(b.X, b.Y), boneColor, lineThickness)
	}

	joint := rightJoint
	if hand.Handedness == detector.Left {
		joint = leftJoint
	}
	for _, p := range hand.Points {
		gocv.Circle(img, image.Pt(p.X, p.Y), jointRadius, joint, -1)
	}
}

// DrawStatus writes a single status line in the lower left corner of img.
func DrawStatus(img *gocv.Mat, text string) {
	if img == nil || img.Empty() || text == "" {
		return
	}
	org := image.Pt(10, img.Rows()-10)
	gocv.PutText(img, text, org, gocv.FontHersheyPlain, 1.2, statusColor, lineThickness)
}
