package spots

import (
	"image"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ExtractAndClassify measures the regions of a cleaned mask and renders them
// onto a copy of original.
//
// Only outer contours are considered, so a spot with a hole is still one
// spot. A contour qualifies when its polygon area is at least
// opts.MinAreaRatio of the image area. Qualifying spots keep contour
// discovery order; their areas are summed unrounded into the coverage.
//
// cleaned and original must have the same size. Neither is modified. Any
// contour list, including an empty one, produces a valid result; errors are
// only returned for empty input or a failed image conversion.
func ExtractAndClassify(cleaned, original gocv.Mat, opts Options) (*Result, error) {
	if cleaned.Empty() || original.Empty() {
		return nil, ErrEmptyImage
	}
	if cleaned.Rows() != original.Rows() || cleaned.Cols() != original.Cols() {
		return nil, errors.Errorf("mask is %dx%d but image is %dx%d",
			cleaned.Cols(), cleaned.Rows(), original.Cols(), original.Rows())
	}

	width, height := original.Cols(), original.Rows()
	minArea := opts.MinAreaRatio * float64(width*height)

	found, totalArea := extractSpots(cleaned, minArea)

	annotated, err := annotate(original, found, opts)
	if err != nil {
		return nil, err
	}

	coverage := CoveragePercent(totalArea, width, height)
	return &Result{
		Metrics: Metrics{
			Coverage: round2(coverage),
			Count:    len(found),
			Spots:    found,
			Message:  Classify(coverage),
			Width:    width,
			Height:   height,
		},
		Annotated: annotated,
	}, nil
}

// extractSpots returns the qualifying spots and their summed contour area.
func extractSpots(mask gocv.Mat, minArea float64) ([]Spot, float64) {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	found := make([]Spot, 0)
	var total float64
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area < minArea {
			continue
		}
		rect := gocv.BoundingRect(c)
		total += area
		found = append(found, Spot{
			Area: round2(area),
			BBox: BBox{rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy()},
		})
	}
	return found, total
}

// annotate draws each spot's box and 1-based index on a BGR copy of src.
func annotate(src gocv.Mat, found []Spot, opts Options) (image.Image, error) {
	var canvas gocv.Mat
	var err error
	switch src.Channels() {
	case 1:
		canvas = gocv.NewMat()
		err = gocv.CvtColor(src, &canvas, gocv.ColorGrayToBGR)
	case 4:
		canvas = gocv.NewMat()
		err = gocv.CvtColor(src, &canvas, gocv.ColorBGRAToBGR)
	default:
		canvas = src.Clone()
	}
	defer canvas.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare annotation canvas")
	}

	// Line8 keeps every drawn pixel exactly AnnotationColor.
	for i, s := range found {
		r := s.BBox.Rect()
		if err := gocv.RectangleWithParams(&canvas, r, opts.AnnotationColor, opts.LineThickness, gocv.Line8, 0); err != nil {
			return nil, errors.Wrapf(err, "failed to draw box %d", i+1)
		}
		if err := gocv.PutTextWithParams(&canvas, strconv.Itoa(i+1), image.Pt(r.Min.X, r.Min.Y-labelOffset),
			gocv.FontHersheySimplex, opts.FontScale, opts.AnnotationColor, opts.LineThickness, gocv.Line8, false); err != nil {
			return nil, errors.Wrapf(err, "failed to draw label %d", i+1)
		}
	}

	img, err := canvas.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert annotated image")
	}
	return img, nil
}
