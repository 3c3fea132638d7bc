package motility

// TrackMetrics holds kinematic and vigor measures of a single trajectory.
type TrackMetrics struct {
	TrackID        int64      `json:"track_id"`
	Points         int        `json:"n_points"`
	DistancePx     float64    `json:"distance_px"`
	VelocityUmPerS float64    `json:"velocity_um_s"`
	Linearity      float64    `json:"linearity"`
	VigorIndex     float64    `json:"vigor_index"`
	VigorClass     VigorClass `json:"vigor_class"`
}

// Progressive reports whether track counts towards progressive motility.
func (m TrackMetrics) Progressive() bool {
	return IsProgressive(m.VelocityUmPerS, m.Linearity)
}

// ComputeMetrics sorts trajectory by frame and derives its metrics.
func ComputeMetrics(trackID int64, traj Trajectory, fps, micronsPerPixel float64) TrackMetrics {
	sorted := traj.Sorted()
	velocity := Velocity(sorted, fps, micronsPerPixel)
	linearity := Linearity(sorted)
	index := VigorIndex(velocity, linearity)
	return TrackMetrics{
		TrackID:        trackID,
		Points:         len(sorted),
		DistancePx:     Distance(sorted),
		VelocityUmPerS: velocity,
		Linearity:      linearity,
		VigorIndex:     index,
		VigorClass:     ClassifyVigor(index),
	}
}

// ComputeAll derives metrics of every non-empty trajectory, ordered by track identifier.
func ComputeAll(trajs Trajectories, fps, micronsPerPixel float64) []TrackMetrics {
	metrics := make([]TrackMetrics, 0, len(trajs))
	for _, id := range trajs.IDs() {
		traj := trajs[id]
		if len(traj) == 0 {
			continue
		}
		metrics = append(metrics, ComputeMetrics(id, traj, fps, micronsPerPixel))
	}
	return metrics
}
