package tracking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMOTTrackerUnknownKind(t *testing.T) {
	opts := DefaultMOTOptions(0.25)
	opts.Kind = "deepsort"
	_, err := NewMOTTracker(opts)
	assert.Error(t, err)
}

func movingPair(frames int) []Detection {
	dets := make([]Detection, 0, 2*frames)
	for f := 0; f < frames; f++ {
		shift := float64(f)
		dets = append(dets,
			Detection{FrameID: f, BBox: BBox{X1: 10 + shift, Y1: 10, X2: 30 + shift, Y2: 30}, Score: 0.9},
			Detection{FrameID: f, BBox: BBox{X1: 200, Y1: 100 + shift, X2: 220, Y2: 120 + shift}, Score: 0.8},
		)
	}
	return dets
}

func TestMOTTrackerKeepsIdentities(t *testing.T) {
	for _, kind := range []string{KindByteTrack, KindIoU} {
		t.Run(kind, func(t *testing.T) {
			opts := DefaultMOTOptions(0.25)
			opts.Kind = kind
			tracker, err := NewMOTTracker(opts)
			require.NoError(t, err)

			trajs, err := Ingest(context.Background(), tracker, movingPair(4))
			require.NoError(t, err)
			require.Len(t, trajs, 2)
			assert.Equal(t, []int64{1, 2}, trajs.IDs())
			for id, traj := range trajs {
				assert.Len(t, traj, 4, "track %d", id)
				for i, pt := range traj {
					assert.Equal(t, i, pt.FrameID)
				}
			}
		})
	}
}

func TestMOTTrackerConfirmation(t *testing.T) {
	opts := DefaultMOTOptions(0.25)
	opts.HitsToConfirm = 2
	tracker, err := NewMOTTracker(opts)
	require.NoError(t, err)

	trajs, err := Ingest(context.Background(), tracker, movingPair(3))
	require.NoError(t, err)
	require.Len(t, trajs, 2)
	for id, traj := range trajs {
		// first frame is tentative
		require.Len(t, traj, 2, "track %d", id)
		assert.Equal(t, 1, traj[0].FrameID)
	}
}

func singleMover(frames int, score float64) []Detection {
	dets := make([]Detection, 0, frames)
	for f := 0; f < frames; f++ {
		shift := 2 * float64(f)
		dets = append(dets, Detection{FrameID: f, BBox: BBox{X1: 40 + shift, Y1: 40, X2: 60 + shift, Y2: 60}, Score: score})
	}
	return dets
}

func TestMOTTrackerAcceptsDetectionsAtDetectorThreshold(t *testing.T) {
	tracker, err := NewMOTTracker(DefaultMOTOptions(0.25))
	require.NoError(t, err)

	// scored above detector threshold but below the usual ByteTrack 0.5
	trajs, err := Ingest(context.Background(), tracker, singleMover(5, 0.4))
	require.NoError(t, err)
	require.Len(t, trajs, 1)
	assert.Len(t, trajs[1], 5)
}

func TestMOTTrackerIgnoresDetectionsBelowThreshold(t *testing.T) {
	tracker, err := NewMOTTracker(DefaultMOTOptions(0.25))
	require.NoError(t, err)

	trajs, err := Ingest(context.Background(), tracker, singleMover(5, 0.1))
	require.NoError(t, err)
	assert.Empty(t, trajs)
}

func TestMOTTrackerLowStageExtendsTracks(t *testing.T) {
	opts := DefaultMOTOptions(0.25)
	opts.HighThresh = 0.5
	tracker, err := NewMOTTracker(opts)
	require.NoError(t, err)

	dets := singleMover(4, 0.3)
	dets[0].Score = 0.9
	trajs, err := Ingest(context.Background(), tracker, dets)
	require.NoError(t, err)
	require.Len(t, trajs, 1)
	assert.Len(t, trajs[1], 4)
}
