package motility

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// microlitresPerMillilitre converts density per µL into density per mL.
const microlitresPerMillilitre = 1000.0

// EstimateConcentration returns estimated number of objects per millilitre:
// mean per-frame count divided by reference volume (µL), scaled to mL.
// Empty counts or non-positive volume cannot be estimated and yield 0.
func EstimateConcentration(counts []int, referenceVolumeUL float64) float64 {
	if len(counts) == 0 || referenceVolumeUL <= 0 {
		return 0.0
	}
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	meanCount := stat.Mean(values, nil)
	return (meanCount / referenceVolumeUL) * microlitresPerMillilitre
}

// OccupancyCounts returns number of distinct tracks observed on each frame,
// ordered by frame identifier. Only frames holding at least one trajectory
// point appear in the result.
func OccupancyCounts(trajs Trajectories) []int {
	perFrame := make(map[int]map[int64]struct{})
	for trackID, traj := range trajs {
		for _, pt := range traj {
			ids, ok := perFrame[pt.FrameID]
			if !ok {
				ids = make(map[int64]struct{})
				perFrame[pt.FrameID] = ids
			}
			ids[trackID] = struct{}{}
		}
	}
	frames := make([]int, 0, len(perFrame))
	for frameID := range perFrame {
		frames = append(frames, frameID)
	}
	sort.Ints(frames)
	counts := make([]int, len(frames))
	for i, frameID := range frames {
		counts[i] = len(perFrame[frameID])
	}
	return counts
}
