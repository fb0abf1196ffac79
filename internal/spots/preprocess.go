package spots

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned when a stage receives a Mat with no pixels.
var ErrEmptyImage = errors.New("empty image")

// Preprocess converts src to a blurred single-channel intensity grid.
//
// Three-channel input is treated as BGR, four-channel as BGRA; single-channel
// input is blurred as is. The returned Mat is CV_8UC1 with the same size as
// src and is owned by the caller. src is not modified.
func Preprocess(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), ErrEmptyImage
	}

	var gray gocv.Mat
	var err error
	switch src.Channels() {
	case 1:
		gray = src.Clone()
	case 3:
		gray = gocv.NewMat()
		err = gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gray = gocv.NewMat()
		err = gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		return gocv.NewMat(), errors.Errorf("unsupported channel count %d", src.Channels())
	}
	defer gray.Close()
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "grayscale conversion failed")
	}

	blurred := gocv.NewMat()
	if err := gocv.GaussianBlur(gray, &blurred, image.Pt(blurKernelSize, blurKernelSize), 0, 0, gocv.BorderDefault); err != nil {
		blurred.Close()
		return gocv.NewMat(), errors.Wrap(err, "gaussian blur failed")
	}
	return blurred, nil
}
