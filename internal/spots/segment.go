package spots

import (
	"gocv.io/x/gocv"
)

// Segment computes an Otsu threshold over gray and returns the inverted
// binary mask together with the chosen cutoff.
//
// Pixels at or below the cutoff (the dark class) are set to 255, everything
// else to 0. A grid holding a single intensity value has no second class, so
// the cutoff is that value and the mask is all background.
//
// gray must be CV_8UC1. The returned mask is owned by the caller.
func Segment(gray gocv.Mat) (gocv.Mat, float32) {
	minVal, maxVal, _, _ := gocv.MinMaxLoc(gray)
	if minVal == maxVal {
		return gocv.Zeros(gray.Rows(), gray.Cols(), gocv.MatTypeCV8UC1), minVal
	}

	mask := gocv.NewMat()
	threshold := gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)
	return mask, threshold
}
