package detection

import (
	"context"
	"log"

	"github.com/LdDl/motility-go/tracking"
	"github.com/LdDl/motility-go/video"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ScanOptions limits which frames reach the detector.
type ScanOptions struct {
	// Frames with index >= MaxFrames are not read, 0 reads whole source
	MaxFrames int
	// Detector runs on every (SkipFrames+1)-th frame
	SkipFrames int
	Logger     *log.Logger
}

// ScanVideo runs detector over source frames and returns detections in frame
// order together with number of frames read. Frame identifiers are zero based
// source frame indices, so skipped frames leave gaps.
func ScanVideo(ctx context.Context, src video.Source, detector Detector, opts ScanOptions) ([]tracking.Detection, int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	frame := gocv.NewMat()
	defer frame.Close()

	detections := make([]tracking.Detection, 0)
	frameID := 0
	for {
		if opts.MaxFrames > 0 && frameID >= opts.MaxFrames {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, frameID, err
		}
		if !src.Read(&frame) {
			break
		}
		if !shouldDetect(frameID, opts.SkipFrames) {
			frameID++
			continue
		}
		candidates, err := detector.Detect(frame)
		if err != nil {
			return nil, frameID, errors.Wrapf(err, "Can't detect objects on frame %d", frameID)
		}
		for _, cand := range candidates {
			detections = append(detections, cand.Detection(frameID))
		}
		frameID++
	}
	logger.Printf("[detection] %d detections on %d frames", len(detections), frameID)
	return detections, frameID, nil
}

func shouldDetect(frameID, skipFrames int) bool {
	if skipFrames <= 0 {
		return true
	}
	return frameID%(skipFrames+1) == 0
}
