package spots

import "math"

// Coverage cutoffs in percent. A coverage equal to a cutoff falls into the
// lower class.
const (
	ExtensiveCoverage = 15.0
	PossibleCoverage  = 5.0
)

// Classification messages.
const (
	MessageExtensive = "Extensive spots detected"
	MessagePossible  = "Possible spots detected"
	MessageClean     = "Clean image"
)

// Classify maps an unrounded coverage percentage to its severity message.
func Classify(coverage float64) string {
	switch {
	case coverage > ExtensiveCoverage:
		return MessageExtensive
	case coverage > PossibleCoverage:
		return MessagePossible
	default:
		return MessageClean
	}
}

// CoveragePercent returns spotArea as a percentage of a width x height image.
// A zero-area image yields 0.
func CoveragePercent(spotArea float64, width, height int) float64 {
	imageArea := float64(width) * float64(height)
	if imageArea <= 0 {
		return 0
	}
	return spotArea / imageArea * 100
}

// round2 rounds v to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
