// Package motility contains kinematic, vigor and concentration measures
// computed over reconstructed cell trajectories.
package motility

import (
	"sort"
)

// TrajectoryPoint is a single observation of a tracked object: bounding box
// centroid on a given frame.
type TrajectoryPoint struct {
	FrameID int     `json:"frame_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Trajectory is an ordered sequence of observations of a single track.
type Trajectory []TrajectoryPoint

// Sorted returns a copy of trajectory ordered by frame identifier.
// Sorting is stable: points sharing a frame keep their observation order and
// are not deduplicated.
func (traj Trajectory) Sorted() Trajectory {
	sorted := make(Trajectory, len(traj))
	copy(sorted, traj)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FrameID < sorted[j].FrameID
	})
	return sorted
}

// Reversed returns a copy of trajectory with points in reverse order.
func (traj Trajectory) Reversed() Trajectory {
	reversed := make(Trajectory, len(traj))
	for i, pt := range traj {
		reversed[len(traj)-1-i] = pt
	}
	return reversed
}

// Trajectories maps track identifier to its trajectory.
type Trajectories map[int64]Trajectory

// IDs returns track identifiers in ascending order.
func (trajs Trajectories) IDs() []int64 {
	ids := make([]int64, 0, len(trajs))
	for id := range trajs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PointCount returns total number of points over all trajectories.
func (trajs Trajectories) PointCount() int {
	total := 0
	for _, traj := range trajs {
		total += len(traj)
	}
	return total
}
