package spots

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Defaults used by DefaultOptions.
const (
	// DefaultMinAreaRatio is the minimum spot area as a fraction of the image
	// area (0.05%).
	DefaultMinAreaRatio = 0.0005

	// DefaultLineThickness is the stroke width of annotation boxes and labels.
	DefaultLineThickness = 2

	// DefaultFontScale is the Hershey font scale of the spot index labels.
	DefaultFontScale = 0.6

	// labelOffset lifts the index label above the box's top-left corner.
	labelOffset = 6
)

// Fixed processing parameters.
const (
	blurKernelSize  = 5
	morphKernelSize = 5
	openIterations  = 2
)

// DefaultAnnotationColor is pure red.
var DefaultAnnotationColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Options controls spot filtering and annotation rendering.
//
// The zero value is not usable; start from DefaultOptions.
type Options struct {
	// MinAreaRatio is the smallest qualifying contour area relative to the
	// image area. Must be in [0, 1).
	MinAreaRatio float64

	// AnnotationColor is used for boxes and index labels.
	AnnotationColor color.RGBA

	// LineThickness is the stroke width in pixels for boxes and labels.
	LineThickness int

	// FontScale is the scale of the Hershey Simplex label font.
	FontScale float64
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		MinAreaRatio:    DefaultMinAreaRatio,
		AnnotationColor: DefaultAnnotationColor,
		LineThickness:   DefaultLineThickness,
		FontScale:       DefaultFontScale,
	}
}

// Validate reports whether the options can drive the pipeline.
func (o Options) Validate() error {
	if o.MinAreaRatio < 0 || o.MinAreaRatio >= 1 {
		return errors.Errorf("min area ratio %v outside [0, 1)", o.MinAreaRatio)
	}
	if o.LineThickness <= 0 {
		return errors.Errorf("line thickness must be positive, got %d", o.LineThickness)
	}
	if o.FontScale <= 0 {
		return errors.Errorf("font scale must be positive, got %v", o.FontScale)
	}
	return nil
}

// structuringElement returns the 5x5 elliptical kernel used by Clean.
// The caller owns the returned Mat.
func structuringElement() gocv.Mat {
	return gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(morphKernelSize, morphKernelSize))
}
