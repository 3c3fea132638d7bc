package mot

import (
	"sort"

	"github.com/google/uuid"
)

// IoU calculates Intersection over Union between two rectangles.
func IoU(r1, r2 Rectangle) float64 {
	xA := maxFloat64(r1.X, r2.X)
	yA := maxFloat64(r1.Y, r2.Y)
	xB := minFloat64(r1.X+r1.Width, r2.X+r2.Width)
	yB := minFloat64(r1.Y+r1.Height, r2.Y+r2.Height)

	interArea := maxFloat64(0, xB-xA) * maxFloat64(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}

	union := r1.Area() + r2.Area() - interArea
	if union <= 0 {
		return 0.0
	}
	return interArea / union
}

// observedTracks collects blobs which were matched or registered on the last
// frame, ordered by track identifier.
func observedTracks[B Blob[B]](objects map[uuid.UUID]B) []B {
	observed := make([]B, 0, len(objects))
	for _, object := range objects {
		if object.IsActive() {
			observed = append(observed, object)
		}
	}
	sort.Slice(observed, func(i, j int) bool {
		return observed[i].GetTrackID() < observed[j].GetTrackID()
	})
	return observed
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
