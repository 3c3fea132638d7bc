package tracking

import (
	"context"

	"github.com/LdDl/motility-go/motility"
	"github.com/pkg/errors"
)

var (
	// ErrFrameOrder is returned when detection arrives with frame identifier
	// smaller than the one being accumulated.
	ErrFrameOrder = errors.New("detections are not in frame order")
)

// Tracker associates detections of a single frame with existing tracks.
// Implementations are stateful and must not be shared between runs.
type Tracker interface {
	Update(ctx context.Context, frameID int, batch []FramedBox) ([]TrackOutput, error)
}

type aggregatorState int

const (
	stateFlushed aggregatorState = iota
	stateAccumulating
)

// Aggregator groups time-ordered detections into per-frame batches, feeds them
// to tracker and folds confirmed outputs into trajectories.
//
// It is a two-state machine. While accumulating it holds pending batch of the
// current frame; detection of a later frame flushes the batch first. Flush at
// the end of stream is mandatory, otherwise the last frame is lost.
type Aggregator struct {
	tracker      Tracker
	state        aggregatorState
	started      bool
	currentFrame int
	pending      []FramedBox
	trajectories motility.Trajectories
}

// NewAggregator creates aggregator driving given tracker
func NewAggregator(tracker Tracker) *Aggregator {
	return &Aggregator{
		tracker:      tracker,
		state:        stateFlushed,
		trajectories: make(motility.Trajectories),
	}
}

// Push adds detection to the stream
func (agg *Aggregator) Push(ctx context.Context, det Detection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if agg.started && det.FrameID < agg.currentFrame {
		return errors.Wrapf(ErrFrameOrder, "frame %d after frame %d", det.FrameID, agg.currentFrame)
	}
	if agg.state == stateAccumulating && det.FrameID > agg.currentFrame {
		if err := agg.Flush(ctx); err != nil {
			return err
		}
	}
	agg.started = true
	agg.currentFrame = det.FrameID
	agg.pending = append(agg.pending, det.Framed())
	agg.state = stateAccumulating
	return nil
}

// Flush sends pending batch to tracker. It is no-op when nothing is pending.
func (agg *Aggregator) Flush(ctx context.Context) error {
	if agg.state != stateAccumulating {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	outputs, err := agg.tracker.Update(ctx, agg.currentFrame, agg.pending)
	if err != nil {
		return errors.Wrapf(err, "Can't update tracker on frame %d", agg.currentFrame)
	}
	for _, out := range outputs {
		if !out.Confirmed {
			continue
		}
		cx, cy := out.BBox.Center()
		agg.trajectories[out.TrackID] = append(agg.trajectories[out.TrackID], motility.TrajectoryPoint{
			FrameID: out.FrameID,
			X:       cx,
			Y:       cy,
		})
	}
	agg.pending = nil
	agg.state = stateFlushed
	return nil
}

// Trajectories returns trajectories collected so far, in observation order
func (agg *Aggregator) Trajectories() motility.Trajectories {
	return agg.trajectories
}

// Ingest runs whole detection stream through tracker and returns trajectories
// keyed by track identifier. Empty stream yields empty map.
func Ingest(ctx context.Context, tracker Tracker, detections []Detection) (motility.Trajectories, error) {
	agg := NewAggregator(tracker)
	for _, det := range detections {
		if err := agg.Push(ctx, det); err != nil {
			return nil, err
		}
	}
	if err := agg.Flush(ctx); err != nil {
		return nil, err
	}
	return agg.Trajectories(), nil
}
