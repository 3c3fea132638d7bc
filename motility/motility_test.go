package motility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinglePointTrajectoryIsStill(t *testing.T) {
	traj := Trajectory{{FrameID: 3, X: 10, Y: 10}}

	assert.Equal(t, 0.0, Distance(traj))
	assert.Equal(t, 0.0, Velocity(traj, 25, 0.5))
	assert.Equal(t, 0.0, Linearity(traj))

	m := ComputeMetrics(7, traj, 25, 0.5)
	assert.Equal(t, int64(7), m.TrackID)
	assert.Equal(t, 1, m.Points)
	assert.Equal(t, 0.0, m.VigorIndex)
	assert.Equal(t, VigorLow, m.VigorClass)
}

func TestDistanceAndVelocity(t *testing.T) {
	// 3-4-5 triangles: two legs of 5 px over 2 frames
	traj := Trajectory{
		{FrameID: 0, X: 0, Y: 0},
		{FrameID: 1, X: 3, Y: 4},
		{FrameID: 2, X: 6, Y: 8},
	}
	assert.InDelta(t, 10.0, Distance(traj), 1e-12)
	// 10 px * 0.5 µm/px over 2/25 s
	assert.InDelta(t, 62.5, Velocity(traj, 25, 0.5), 1e-9)
	assert.InDelta(t, 1.0, Linearity(traj), 1e-12)
}

func TestDistanceIsTimeReversible(t *testing.T) {
	traj := Trajectory{
		{FrameID: 0, X: 1, Y: 2},
		{FrameID: 1, X: 5, Y: -3},
		{FrameID: 2, X: 7, Y: 11},
		{FrameID: 4, X: -2, Y: 0.5},
	}
	assert.InDelta(t, Distance(traj), Distance(traj.Reversed()), 1e-9)
}

func TestLinearityBounds(t *testing.T) {
	loop := Trajectory{
		{FrameID: 0, X: 0, Y: 0},
		{FrameID: 1, X: 10, Y: 0},
		{FrameID: 2, X: 10, Y: 10},
		{FrameID: 3, X: 0, Y: 10},
		{FrameID: 4, X: 0, Y: 0},
	}
	assert.Equal(t, 0.0, Linearity(loop))

	zigzag := Trajectory{
		{FrameID: 0, X: 0, Y: 0},
		{FrameID: 1, X: 1, Y: 1},
		{FrameID: 2, X: 2, Y: 0},
	}
	lin := Linearity(zigzag)
	assert.Greater(t, lin, 0.0)
	assert.Less(t, lin, 1.0)
	assert.InDelta(t, 2.0/(2*math.Sqrt2), lin, 1e-12)

	backtrack := Trajectory{
		{FrameID: 0, X: 0, Y: 0},
		{FrameID: 1, X: 10, Y: 0},
		{FrameID: 2, X: 5, Y: 0},
	}
	assert.InDelta(t, 5.0/15.0, Linearity(backtrack), 1e-12)

	still := Trajectory{{FrameID: 0, X: 4, Y: 4}, {FrameID: 1, X: 4, Y: 4}}
	assert.Equal(t, 0.0, Linearity(still))
}

func TestVelocityDuplicateFrameFallback(t *testing.T) {
	// Tracker reported frame 10 twice: span collapses to zero
	traj := Trajectory{
		{FrameID: 10, X: 0, Y: 0},
		{FrameID: 10, X: 3, Y: 4},
	}
	assert.InDelta(t, 2.0/25.0, ElapsedSeconds(traj, 25), 1e-12)
	// 5 px * 0.5 µm/px over 0.08 s
	assert.InDelta(t, 31.25, Velocity(traj, 25, 0.5), 1e-9)

	m := ComputeMetrics(1, traj, 25, 0.5)
	assert.Equal(t, 2, m.Points)
	assert.False(t, math.IsInf(m.VelocityUmPerS, 0))
	assert.False(t, math.IsNaN(m.VelocityUmPerS))
}

func TestVelocityDegenerateFPS(t *testing.T) {
	traj := Trajectory{
		{FrameID: 0, X: 0, Y: 0},
		{FrameID: 5, X: 3, Y: 4},
	}
	assert.Equal(t, 1.0, ElapsedSeconds(traj, 0))
	assert.Equal(t, 1.0, ElapsedSeconds(traj, -25))
	assert.InDelta(t, 5.0, Velocity(traj, 0, 1.0), 1e-12)
}

func TestVigorClassification(t *testing.T) {
	cases := []struct {
		velocity  float64
		linearity float64
		index     float64
		class     VigorClass
	}{
		{10, 0.3, 3.0, VigorLow},
		{30, 0.7, 21.0, VigorHigh},
		{40, 0.8, 32.0, VigorHigh},
		{10, 0.5, 5.0, VigorLow},
		{20, 0.75, 15.0, VigorMedium},
		{12, 0.5, 6.0, VigorMedium},
	}
	for _, c := range cases {
		index := VigorIndex(c.velocity, c.linearity)
		assert.InDelta(t, c.index, index, 1e-9)
		assert.Equal(t, c.class, ClassifyVigor(index), "index %v", index)
	}
}

func TestComputeMetricsSortsByFrame(t *testing.T) {
	traj := Trajectory{
		{FrameID: 2, X: 6, Y: 8},
		{FrameID: 0, X: 0, Y: 0},
		{FrameID: 1, X: 3, Y: 4},
	}
	m := ComputeMetrics(1, traj, 25, 1)
	assert.InDelta(t, 10.0, m.DistancePx, 1e-12)
	assert.InDelta(t, 1.0, m.Linearity, 1e-12)
	// input left untouched
	assert.Equal(t, 2, traj[0].FrameID)
}

func TestComputeAllOrdersByTrackID(t *testing.T) {
	trajs := Trajectories{
		9: {{FrameID: 0, X: 0, Y: 0}},
		2: {{FrameID: 0, X: 0, Y: 0}, {FrameID: 1, X: 1, Y: 0}},
		5: {},
	}
	metrics := ComputeAll(trajs, 25, 0.5)
	require.Len(t, metrics, 2)
	assert.Equal(t, int64(2), metrics[0].TrackID)
	assert.Equal(t, int64(9), metrics[1].TrackID)
}

func TestEstimateConcentration(t *testing.T) {
	assert.InDelta(t, 1375.0, EstimateConcentration([]int{2, 3, 2, 4}, 2.0), 1e-9)

	assert.Equal(t, 0.0, EstimateConcentration(nil, 2.0))
	assert.Equal(t, 0.0, EstimateConcentration([]int{}, 2.0))
	assert.Equal(t, 0.0, EstimateConcentration([]int{1, 2}, 0))
	assert.Equal(t, 0.0, EstimateConcentration([]int{1, 2}, -1))
}

func TestEstimateConcentrationDecreasesWithVolume(t *testing.T) {
	counts := []int{1, 4, 2, 7}
	prev := math.Inf(1)
	for _, volume := range []float64{0.1, 0.5, 1, 2, 10, 100} {
		current := EstimateConcentration(counts, volume)
		assert.Less(t, current, prev, "volume %v", volume)
		prev = current
	}
}

func TestOccupancyCounts(t *testing.T) {
	trajs := Trajectories{
		1: {{FrameID: 0}, {FrameID: 1}},
		2: {{FrameID: 1}, {FrameID: 3}, {FrameID: 3}},
	}
	assert.Equal(t, []int{1, 2, 1}, OccupancyCounts(trajs))
	assert.Empty(t, OccupancyCounts(Trajectories{}))
}

func TestTrajectorySortedKeepsDuplicates(t *testing.T) {
	traj := Trajectory{
		{FrameID: 4, X: 1},
		{FrameID: 2, X: 2},
		{FrameID: 4, X: 3},
	}
	sorted := traj.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, []TrajectoryPoint{{FrameID: 2, X: 2}, {FrameID: 4, X: 1}, {FrameID: 4, X: 3}}, []TrajectoryPoint(sorted))
}
