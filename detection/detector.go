// Package detection finds cells on video frames with a YOLOv8 network and
// emits them as time-ordered detections.
package detection

import (
	"sort"

	"github.com/LdDl/motility-go/mot"
	"github.com/LdDl/motility-go/tracking"
	"gocv.io/x/gocv"
)

// Candidate is an object found on a single frame
type Candidate struct {
	BBox    tracking.BBox
	Score   float64
	ClassID int
}

// Detection attaches frame identifier to candidate
func (c Candidate) Detection(frameID int) tracking.Detection {
	return tracking.Detection{
		FrameID: frameID,
		BBox:    c.BBox,
		Score:   c.Score,
	}
}

// Detector finds objects on a frame. Implementations may block for the whole
// inference.
type Detector interface {
	Detect(frame gocv.Mat) ([]Candidate, error)
	Close() error
}

// NonMaxSuppression greedily keeps highest scored candidates and drops the
// ones overlapping an already kept candidate by more than iouThreshold.
func NonMaxSuppression(candidates []Candidate, iouThreshold float64) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	kept := make([]Candidate, 0, len(sorted))
	for _, cand := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.ClassID != cand.ClassID {
				continue
			}
			if mot.IoU(k.BBox.XYWH(), cand.BBox.XYWH()) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, cand)
		}
	}
	return kept
}

// clampBBox limits box to frame bounds
func clampBBox(b tracking.BBox, width, height float64) tracking.BBox {
	return tracking.BBox{
		X1: clamp(b.X1, 0, width),
		Y1: clamp(b.Y1, 0, height),
		X2: clamp(b.X2, 0, width),
		Y2: clamp(b.Y2, 0, height),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
