package spots

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Clean removes speckle noise from mask and closes small gaps, in place.
//
// The opening runs with two iterations, which in OpenCV terms means two
// erosions followed by two dilations. A single closing (dilate, erode)
// follows so that each genuine spot ends up as one connected region.
func Clean(mask *gocv.Mat) error {
	if mask.Empty() {
		return ErrEmptyImage
	}

	kernel := structuringElement()
	defer kernel.Close()

	for i := 0; i < openIterations; i++ {
		if err := gocv.Erode(*mask, mask, kernel); err != nil {
			return errors.Wrap(err, "opening: erode")
		}
	}
	for i := 0; i < openIterations; i++ {
		if err := gocv.Dilate(*mask, mask, kernel); err != nil {
			return errors.Wrap(err, "opening: dilate")
		}
	}

	if err := gocv.MorphologyEx(*mask, mask, gocv.MorphClose, kernel); err != nil {
		return errors.Wrap(err, "closing")
	}
	return nil
}
