package canvas

import "errors"

// AspectRatio identifies one of the supported target canvas shapes.
type AspectRatio string

const (
	RatioPortrait  AspectRatio = "9:16"
	RatioLandscape AspectRatio = "16:9"
	RatioSquare    AspectRatio = "1:1"
)

// ErrUnsupportedRatio is returned when parsing an aspect ratio string that is
// not one of the three supported values.
var ErrUnsupportedRatio = errors.New("unsupported aspect ratio")

// ParseRatio converts a string such as "9:16" into an AspectRatio.
func ParseRatio(s string) (AspectRatio, error) {
	switch AspectRatio(s) {
	case RatioPortrait, RatioLandscape, RatioSquare:
		return AspectRatio(s), nil
	}
	return "", ErrUnsupportedRatio
}

// Value returns the width/height ratio as a float.
func (r AspectRatio) Value() float64 {
	switch r {
	case RatioPortrait:
		return 9.0 / 16.0
	case RatioLandscape:
		return 16.0 / 9.0
	default:
		return 1.0
	}
}

// NativeSize returns the fixed logical pixel buffer for the ratio. The output
// surface always uses this resolution regardless of on-screen size.
func (r AspectRatio) NativeSize() Size {
	switch r {
	case RatioPortrait:
		return Size{Width: 1080, Height: 1920}
	case RatioLandscape:
		return Size{Width: 1920, Height: 1080}
	default:
		return Size{Width: 1080, Height: 1080}
	}
}

// Point is a position in either canvas-native or display pixel space,
// depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p falls inside the rectangle (inclusive bounds).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// CropRect computes the centered sub-region of a source frame that fills the
// target ratio with no letterboxing. A source relatively wider than the target
// is cropped from the sides at full height; a relatively taller source is
// cropped from the top and bottom at full width. ok is false when the source
// has no usable dimensions.
func CropRect(sourceWidth, sourceHeight float64, ratio AspectRatio) (Rect, bool) {
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return Rect{}, false
	}

	target := ratio.Value()
	videoAspect := sourceWidth / sourceHeight

	var crop Rect
	if videoAspect > target {
		crop.Height = sourceHeight
		crop.Width = sourceHeight * target
	} else {
		crop.Width = sourceWidth
		crop.Height = sourceWidth / target
	}
	crop.X = (sourceWidth - crop.Width) / 2
	crop.Y = (sourceHeight - crop.Height) / 2

	return crop, true
}

// FitDisplay returns the largest size with the native aspect ratio that fits
// inside the container, never exceeding it.
func FitDisplay(container, native Size) Size {
	if container.Width <= 0 || container.Height <= 0 || native.Width <= 0 || native.Height <= 0 {
		return Size{}
	}

	scale := container.Width / native.Width
	if s := container.Height / native.Height; s < scale {
		scale = s
	}
	return Size{Width: native.Width * scale, Height: native.Height * scale}
}

// ContainerScale is the single conversion factor between canvas-native and
// display space: displayWidth / canvasNativeWidth. It is derived on demand
// from its two inputs and never stored.
func ContainerScale(display, native Size) float64 {
	if native.Width <= 0 {
		return 0
	}
	return display.Width / native.Width
}

// ToCanvas converts a display-space point into canvas-native space.
func ToCanvas(p Point, containerScale float64) Point {
	if containerScale == 0 {
		return Point{}
	}
	return Point{X: p.X / containerScale, Y: p.Y / containerScale}
}

// ToDisplay converts a canvas-native point into display space.
func ToDisplay(p Point, containerScale float64) Point {
	return Point{X: p.X * containerScale, Y: p.Y * containerScale}
}
