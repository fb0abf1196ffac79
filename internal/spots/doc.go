// Package spots implements dark-spot detection on raster images.
//
// The detector converts a color image into a list of spot measurements, an
// aggregate coverage percentage, and a severity message. It also renders an
// annotated copy of the input with every qualifying spot boxed and numbered.
//
// # Pipeline
//
// Analysis runs four stages strictly in sequence:
//
//  1. Preprocess: BGR to single-channel intensity, then a 5x5 Gaussian blur
//     with sigma derived from the kernel size.
//
//  2. Segment: Otsu's method picks a global cutoff from the intensity
//     histogram. Polarity is inverted, so dark pixels become foreground (255).
//
//  3. Clean: a 5x5 elliptical structuring element removes noise with two
//     opening iterations and fills small holes with one closing.
//
//  4. ExtractAndClassify: external contours are measured with the polygon
//     area, filtered by MinAreaRatio of the image area, boxed, drawn, and
//     summed into the coverage percentage.
//
// Each stage is exported so it can be exercised with synthetic buffers.
//
// # Classification
//
// The unrounded coverage percentage is compared against two fixed cutoffs:
//
//	coverage > 15        "Extensive spots detected"
//	5 < coverage <= 15   "Possible spots detected"
//	coverage <= 5        "Clean image"
//
// # Ownership
//
// The input image is only ever read. Every intermediate gocv.Mat is owned by
// the stage that created it and is closed before Analyze returns. The
// annotated output is a Go image.Image, so callers never have to release
// native memory.
//
// # Thread Safety
//
// A Detector holds only immutable options and a logger. It is safe to call
// Analyze concurrently from multiple goroutines.
package spots
