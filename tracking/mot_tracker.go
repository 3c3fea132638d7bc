package tracking

import (
	"context"

	"github.com/LdDl/motility-go/mot"
	"github.com/pkg/errors"
)

// Supported tracker implementations
const (
	KindByteTrack = "bytetrack"
	KindIoU       = "iou"
)

// MOTOptions configures MOTTracker.
type MOTOptions struct {
	Kind string
	// Frames a track may stay unmatched before removal
	MaxDisappeared int
	// Hits required before a track is reported as confirmed
	HitsToConfirm int
	// ByteTrack only
	MinIoU     float64
	HighThresh float64
	LowThresh  float64
	Matching   mot.MatchingAlgorithm
	// IoU tracker only
	IoUThreshold float64
}

// DefaultMOTOptions returns ByteTrack options for detector confidence threshold
// conf. Any detection at or above conf may start a track, so both ByteTrack
// stages use conf as their threshold.
func DefaultMOTOptions(conf float64) MOTOptions {
	return MOTOptions{
		Kind:           KindByteTrack,
		MaxDisappeared: 30,
		HitsToConfirm:  1,
		MinIoU:         0.3,
		HighThresh:     conf,
		LowThresh:      conf,
		Matching:       mot.MatchingAlgorithmHungarian,
		IoUThreshold:   0.0,
	}
}

// MOTTracker adapts trackers of mot package to Tracker interface.
type MOTTracker struct {
	engine mot.MultiObjectTracker[*mot.BlobBBox]
}

// NewMOTTracker creates tracker of requested kind
func NewMOTTracker(opts MOTOptions) (*MOTTracker, error) {
	var engine mot.MultiObjectTracker[*mot.BlobBBox]
	switch opts.Kind {
	case KindByteTrack, "":
		engine = mot.NewByteTracker[*mot.BlobBBox](opts.MaxDisappeared, opts.MinIoU, opts.HighThresh, opts.LowThresh, opts.HitsToConfirm, opts.Matching)
	case KindIoU:
		engine = mot.NewIoUTracker[*mot.BlobBBox](opts.MaxDisappeared, opts.IoUThreshold, opts.HitsToConfirm)
	default:
		return nil, errors.Errorf("unknown tracker kind '%s'", opts.Kind)
	}
	return &MOTTracker{engine: engine}, nil
}

// Update implements Tracker
func (t *MOTTracker) Update(ctx context.Context, frameID int, batch []FramedBox) ([]TrackOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blobs := make([]*mot.BlobBBox, len(batch))
	confidences := make([]float64, len(batch))
	for i, fb := range batch {
		blobs[i] = mot.NewBlobBBox(fb.Box)
		confidences[i] = fb.Score
	}
	if err := t.engine.Track(blobs, confidences); err != nil {
		return nil, errors.Wrap(err, "Can't match objects")
	}
	observed := t.engine.ObservedTracks()
	outputs := make([]TrackOutput, 0, len(observed))
	for _, blob := range observed {
		outputs = append(outputs, TrackOutput{
			TrackID:   blob.GetTrackID(),
			BBox:      BBoxFromRect(blob.GetBBox()),
			FrameID:   frameID,
			Confirmed: t.engine.IsConfirmed(blob),
		})
	}
	return outputs, nil
}
