package spots

import (
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Detector runs the spot pipeline with a fixed set of options.
type Detector struct {
	opts Options
	log  zerolog.Logger
}

// NewDetector validates opts and returns a ready Detector.
func NewDetector(opts Options, log zerolog.Logger) (*Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detector options")
	}
	return &Detector{
		opts: opts,
		log:  log.With().Str("component", "spots").Logger(),
	}, nil
}

// Options returns a copy of the detector's options.
func (d *Detector) Options() Options {
	return d.opts
}

// WithMinAreaRatio returns a copy of d that filters with ratio instead.
func (d *Detector) WithMinAreaRatio(ratio float64) (*Detector, error) {
	opts := d.opts
	opts.MinAreaRatio = ratio
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detector options")
	}
	return &Detector{opts: opts, log: d.log}, nil
}

// Analyze runs the pipeline on a decoded Go image.
//
// img must have a positive area; callers are expected to reject zero-area
// images before getting here, and ErrEmptyImage is returned otherwise.
// Alpha is discarded: a transparent pixel is analyzed as its stored color.
func (d *Detector) Analyze(img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	src, err := gocv.ImageToMatRGB(opaque(img))
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert image to mat")
	}
	defer src.Close()

	return d.AnalyzeMat(src)
}

// AnalyzeMat runs the pipeline on a BGR (or BGRA, or gray) Mat.
//
// src is only read. All intermediate buffers are released before returning.
func (d *Detector) AnalyzeMat(src gocv.Mat) (*Result, error) {
	start := time.Now()

	gray, err := Preprocess(src)
	if err != nil {
		return nil, errors.Wrap(err, "preprocess")
	}
	defer gray.Close()

	mask, threshold := Segment(gray)
	defer mask.Close()

	if err := Clean(&mask); err != nil {
		return nil, errors.Wrap(err, "clean")
	}

	result, err := ExtractAndClassify(mask, src, d.opts)
	if err != nil {
		return nil, errors.Wrap(err, "extract")
	}
	result.Metrics.Threshold = float64(threshold)

	d.log.Debug().
		Int("width", result.Metrics.Width).
		Int("height", result.Metrics.Height).
		Float32("threshold", threshold).
		Int("spots", result.Metrics.Count).
		Float64("coverage", result.Metrics.Coverage).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return result, nil
}

// opaque returns img with every alpha value forced to 255 and the stored
// color channels kept, so transparent regions do not read as black.
// Images that report themselves opaque are returned unchanged.
func opaque(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	flat := imaging.Clone(img)
	for i := 3; i < len(flat.Pix); i += 4 {
		flat.Pix[i] = 0xff
	}
	// Fully opaque NRGBA and RGBA share a pixel layout.
	return &image.RGBA{Pix: flat.Pix, Stride: flat.Stride, Rect: flat.Rect}
}
