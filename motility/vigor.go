package motility

// VigorClass is a discrete motility vigor level.
type VigorClass string

const (
	VigorLow    VigorClass = "Low"
	VigorMedium VigorClass = "Medium"
	VigorHigh   VigorClass = "High"
)

// Vigor class boundaries. Index above VigorHighThreshold is High, above
// VigorMediumThreshold is Medium.
const (
	VigorHighThreshold   = 15.0
	VigorMediumThreshold = 5.0
)

// Progressive motility thresholds: a track is progressive when both velocity
// and linearity are strictly above them.
const (
	ProgressiveVelocityUmPerS = 25.0
	ProgressiveLinearity      = 0.6
)

// VigorIndex is composite motility score: velocity multiplied by linearity.
func VigorIndex(velocity, linearity float64) float64 {
	return velocity * linearity
}

// ClassifyVigor maps vigor index to a class.
func ClassifyVigor(index float64) VigorClass {
	switch {
	case index > VigorHighThreshold:
		return VigorHigh
	case index > VigorMediumThreshold:
		return VigorMedium
	default:
		return VigorLow
	}
}

// IsProgressive reports whether track moves fast and straight enough.
func IsProgressive(velocity, linearity float64) bool {
	return velocity > ProgressiveVelocityUmPerS && linearity > ProgressiveLinearity
}
