package pdfreader

import "math"

// Viewport maps PDF page space (origin bottom-left, y up) to rendered
// CSS pixel space (origin top-left, y down) for a given scale and rotation.
type Viewport struct {
	Width     float64
	Height    float64
	transform [6]float64
}

// NewViewport builds the viewport for a page of the given size in points.
// rotation must be a multiple of 90; other values fall back to 0.
func NewViewport(pageWidth, pageHeight, scale float64, rotation int) Viewport {
	rotation = ((rotation % 360) + 360) % 360

	var m [6]float64
	var w, h float64
	switch rotation {
	case 90:
		m = [6]float64{0, scale, scale, 0, 0, 0}
		w, h = pageHeight*scale, pageWidth*scale
	case 180:
		m = [6]float64{-scale, 0, 0, scale, pageWidth * scale, 0}
		w, h = pageWidth*scale, pageHeight*scale
	case 270:
		m = [6]float64{0, -scale, -scale, 0, pageHeight * scale, pageWidth * scale}
		w, h = pageHeight*scale, pageWidth*scale
	default:
		m = [6]float64{scale, 0, 0, -scale, 0, pageHeight * scale}
		w, h = pageWidth*scale, pageHeight*scale
	}
	return Viewport{Width: w, Height: h, transform: m}
}

// ConvertPoint maps a page-space point to viewport space.
func (v Viewport) ConvertPoint(x, y float64) (float64, float64) {
	return v.transform[0]*x + v.transform[2]*y + v.transform[4],
		v.transform[1]*x + v.transform[3]*y + v.transform[5]
}

// Rect is an axis-aligned rectangle in viewport space, top-left anchored.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ConvertRect maps a page-space rectangle given by two opposite corners to
// a normalized viewport rectangle.
func (v Viewport) ConvertRect(x1, y1, x2, y2 float64) Rect {
	ax, ay := v.ConvertPoint(x1, y1)
	bx, by := v.ConvertPoint(x2, y2)
	minX, maxX := math.Min(ax, bx), math.Max(ax, bx)
	minY, maxY := math.Min(ay, by), math.Max(ay, by)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
