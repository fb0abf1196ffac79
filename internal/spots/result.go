package spots

import (
	"image"
)

// BBox is an axis-aligned bounding box encoded as [x, y, width, height].
type BBox [4]int

// X returns the left edge.
func (b BBox) X() int { return b[0] }

// Y returns the top edge.
func (b BBox) Y() int { return b[1] }

// Width returns the horizontal extent in pixels.
func (b BBox) Width() int { return b[2] }

// Height returns the vertical extent in pixels.
func (b BBox) Height() int { return b[3] }

// Rect converts the box to an image.Rectangle with an exclusive max corner.
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b[0], b[1], b[0]+b[2], b[1]+b[3])
}

// Spot is one detected dark region.
type Spot struct {
	// Area is the polygon area of the spot's outer contour, rounded to two
	// decimal places.
	Area float64 `json:"area"`

	// BBox is the contour's bounding box.
	BBox BBox `json:"bbox"`
}

// Metrics is the serializable part of an analysis.
type Metrics struct {
	// Coverage is the percentage of the image covered by qualifying spots
	// (0-100, two decimals).
	Coverage float64 `json:"percentual_manchas"`

	// Count is the number of qualifying spots; always len(Spots).
	Count int `json:"num_manchas"`

	// Spots lists qualifying spots in contour discovery order.
	Spots []Spot `json:"spots"`

	// Message is the severity classification of Coverage.
	Message string `json:"mensagem"`

	// Threshold is the intensity cutoff chosen by Otsu's method.
	Threshold float64 `json:"otsu_threshold"`

	// Width and Height are the analyzed image dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result bundles the metrics with the annotated copy of the input.
//
// The two halves are independent values: Metrics can be serialized on its
// own while Annotated is persisted separately.
type Result struct {
	Metrics   Metrics
	Annotated image.Image
}
