package motility

import (
	"math"
)

// Distance returns total path length in pixels: sum of Euclidean distances
// between consecutive points. Zero for trajectories with fewer than 2 points.
func Distance(traj Trajectory) float64 {
	if len(traj) < 2 {
		return 0.0
	}
	dist := 0.0
	for i := 1; i < len(traj); i++ {
		dist += math.Hypot(traj[i].X-traj[i-1].X, traj[i].Y-traj[i-1].Y)
	}
	return dist
}

// ElapsedSeconds returns time base used for average velocity.
//
// Regular case is span between first and last frame divided by fps. When the
// span collapses to zero or below (single frame, duplicated or unordered frame
// identifiers) number of points divided by fps is used instead. Non-positive
// fps is a degenerate calibration and yields one second.
func ElapsedSeconds(traj Trajectory, fps float64) float64 {
	if fps <= 0 {
		return 1.0
	}
	if len(traj) == 0 {
		return 0.0
	}
	seconds := float64(traj[len(traj)-1].FrameID-traj[0].FrameID) / fps
	if seconds <= 0 {
		seconds = float64(len(traj)) / fps
	}
	return seconds
}

// Velocity returns average velocity in micrometres per second. Pixel distance
// is converted with micronsPerPixel and divided by ElapsedSeconds.
// Zero for trajectories with fewer than 2 points.
func Velocity(traj Trajectory, fps, micronsPerPixel float64) float64 {
	if len(traj) < 2 {
		return 0.0
	}
	distUm := Distance(traj) * micronsPerPixel
	return distUm / ElapsedSeconds(traj, fps)
}

// Linearity returns straight-line displacement between first and last points
// divided by total path length. Straight movement scores 1, looping movement
// scores near 0. Zero for trajectories with fewer than 2 points or without any
// movement.
func Linearity(traj Trajectory) float64 {
	if len(traj) < 2 {
		return 0.0
	}
	total := Distance(traj)
	if total == 0 {
		return 0.0
	}
	first := traj[0]
	last := traj[len(traj)-1]
	straight := math.Hypot(last.X-first.X, last.Y-first.Y)
	// Rounding may push collinear paths a few ulps above 1
	return math.Min(straight/total, 1.0)
}
