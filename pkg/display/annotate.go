package display

import (
	"image"
	"image/color"

	"github.com/teslashibe/go-objsize/pkg/measure"
	"gocv.io/x/gocv"
)

// Style controls how measurements are drawn. gocv converts color.RGBA to
// OpenCV's BGR order, so colors here are plain RGB.
type Style struct {
	BoxColor      color.RGBA
	OutlineColor  color.RGBA
	TextColor     color.RGBA
	Thickness     int
	Font          gocv.HersheyFont
	FontScale     float64
	WidthOffsetY  int // Label offsets above the box top edge
	HeightOffsetY int
}

// DefaultStyle draws a green box, blue outline and blue labels 30 and 15
// pixels above the box.
func DefaultStyle() Style {
	return Style{
		BoxColor:      color.RGBA{R: 0, G: 255, B: 0, A: 0},
		OutlineColor:  color.RGBA{R: 0, G: 0, B: 255, A: 0},
		TextColor:     color.RGBA{R: 0, G: 0, B: 255, A: 0},
		Thickness:     2,
		Font:          gocv.FontHersheySimplex,
		FontScale:     0.5,
		WidthOffsetY:  30,
		HeightOffsetY: 15,
	}
}

// LabelOrigins returns where the width and height labels start.
func (s Style) LabelOrigins(box image.Rectangle) (width, height image.Point) {
	return image.Pt(box.Min.X, box.Min.Y-s.WidthOffsetY),
		image.Pt(box.Min.X, box.Min.Y-s.HeightOffsetY)
}

// Annotate draws the bounding box, object outline and size labels onto frame.
func Annotate(frame *gocv.Mat, m measure.Measurement, outline []image.Point, style Style) {
	gocv.Rectangle(frame, m.Box, style.BoxColor, style.Thickness)

	if len(outline) > 0 {
		pv := gocv.NewPointsVectorFromPoints([][]image.Point{outline})
		gocv.DrawContours(frame, pv, -1, style.OutlineColor, style.Thickness)
		pv.Close()
	}

	wOrg, hOrg := style.LabelOrigins(m.Box)
	gocv.PutText(frame, m.WidthLabel(), wOrg, style.Font, style.FontScale, style.TextColor, style.Thickness)
	gocv.PutText(frame, m.HeightLabel(), hOrg, style.Font, style.FontScale, style.TextColor, style.Thickness)
}
