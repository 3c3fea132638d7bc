package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/motility-go/config"
	"github.com/LdDl/motility-go/detection"
	"github.com/LdDl/motility-go/report"
	"github.com/LdDl/motility-go/tracking"
	"github.com/LdDl/motility-go/video"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type staticDetector struct {
	candidates []detection.Candidate
}

func (d *staticDetector) Detect(_ gocv.Mat) ([]detection.Candidate, error) {
	return d.candidates, nil
}

func (d *staticDetector) Close() error { return nil }

func writeSlide(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 10; x < 20; x++ {
		for y := 10; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "slide.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunStillImage(t *testing.T) {
	slide := writeSlide(t)
	outDir := filepath.Join(t.TempDir(), "run")
	det := &staticDetector{candidates: []detection.Candidate{
		{BBox: tracking.BBox{X1: 10, Y1: 10, X2: 20, Y2: 20}, Score: 0.9},
		{BBox: tracking.BBox{X1: 40, Y1: 30, X2: 50, Y2: 40}, Score: 0.8},
	}}

	bundle, err := Run(context.Background(), slide, config.DefaultCalibration(), outDir,
		WithDetector(det),
		WithRunID("test_run"),
		WithLogger(quietLogger()),
		WithoutVideo(),
	)
	require.NoError(t, err)
	require.NotNil(t, bundle)

	assert.Equal(t, "test_run", bundle.RunID)
	assert.Empty(t, bundle.AnnotatedVideo)
	assert.Equal(t, 1, bundle.Document.FramesProcessed)
	// one frame is not enough to move
	assert.Equal(t, 2, bundle.Document.Summary.TrajectoryCount)
	assert.Equal(t, 0.0, bundle.Document.Summary.MeanVigorIndex)
	assert.Equal(t, []int{2}, bundle.Document.OccupancyCounts)
	assert.InDelta(t, 1000.0, bundle.Document.ConcentrationPerML, 1e-9)

	loaded, err := report.ReadDocument(bundle.Artifacts.JSON)
	require.NoError(t, err)
	assert.Equal(t, bundle.Document.Summary, loaded.Summary)
	assert.FileExists(t, bundle.Artifacts.Markdown)
	assert.FileExists(t, bundle.Artifacts.Histogram)
	assert.FileExists(t, bundle.Artifacts.Database)
}

func TestRunLowScoreDetections(t *testing.T) {
	slide := writeSlide(t)
	// above default detector threshold 0.25
	det := &staticDetector{candidates: []detection.Candidate{
		{BBox: tracking.BBox{X1: 10, Y1: 10, X2: 20, Y2: 20}, Score: 0.3},
	}}
	bundle, err := Run(context.Background(), slide, config.DefaultCalibration(), t.TempDir(),
		WithDetector(det),
		WithLogger(quietLogger()),
		WithoutVideo(),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, bundle.Document.Summary.TrajectoryCount)
	assert.Equal(t, []int{1}, bundle.Document.OccupancyCounts)
}

func TestRunWritesAnnotatedVideo(t *testing.T) {
	slide := writeSlide(t)
	outDir := filepath.Join(t.TempDir(), "run")
	det := &staticDetector{candidates: []detection.Candidate{
		{BBox: tracking.BBox{X1: 10, Y1: 10, X2: 20, Y2: 20}, Score: 0.9},
	}}
	bundle, err := Run(context.Background(), slide, config.DefaultCalibration(), outDir,
		WithDetector(det),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outDir, AnnotatedVideoName), bundle.AnnotatedVideo)
	require.FileExists(t, bundle.AnnotatedVideo)

	capture, err := gocv.VideoCaptureFile(bundle.AnnotatedVideo)
	require.NoError(t, err)
	defer capture.Close()
	frame := gocv.NewMat()
	defer frame.Close()
	frames := 0
	for capture.Read(&frame) && !frame.Empty() {
		frames++
		assert.Equal(t, 64, frame.Cols())
		assert.Equal(t, 48, frame.Rows())
	}
	assert.Equal(t, 1, frames)
}

func TestRunNoDetections(t *testing.T) {
	slide := writeSlide(t)
	bundle, err := Run(context.Background(), slide, config.Calibration{MicronsPerPixel: 0.5, FPS: 0, ReferenceVolumeUL: 0}, t.TempDir(),
		WithDetector(&staticDetector{}),
		WithLogger(quietLogger()),
		WithoutVideo(),
	)
	require.NoError(t, err)
	assert.Equal(t, report.Summary{}, bundle.Document.Summary)
	assert.Empty(t, bundle.Artifacts.Histogram)
	assert.Len(t, bundle.Document.Params.Warnings, 2)
}

func TestRunTrackerFailure(t *testing.T) {
	slide := writeSlide(t)
	det := &staticDetector{candidates: []detection.Candidate{{BBox: tracking.BBox{X1: 1, Y1: 1, X2: 5, Y2: 5}, Score: 0.9}}}
	bundle, err := Run(context.Background(), slide, config.DefaultCalibration(), t.TempDir(),
		WithDetector(det),
		WithLogger(quietLogger()),
		WithoutVideo(),
		WithTrackerFactory(func() (tracking.Tracker, error) {
			return nil, errors.New("tracker unavailable")
		}),
	)
	require.Error(t, err)
	assert.Nil(t, bundle)
	assert.Contains(t, err.Error(), "tracker unavailable")
}

func TestRunMissingInput(t *testing.T) {
	bundle, err := Run(context.Background(), filepath.Join(t.TempDir(), "absent.mp4"), config.DefaultCalibration(), t.TempDir(),
		WithDetector(&staticDetector{}),
		WithLogger(quietLogger()),
	)
	require.Error(t, err)
	assert.Nil(t, bundle)
	assert.True(t, errors.Is(err, video.ErrOpen))
}

func TestTrackerFromConfig(t *testing.T) {
	cfg := config.Empty()
	kind := "iou"
	cfg.Tracker = &kind
	tracker, err := TrackerFromConfig(cfg)()
	require.NoError(t, err)
	assert.NotNil(t, tracker)

	bad := "sort"
	cfg.Tracker = &bad
	_, err = TrackerFromConfig(cfg)()
	assert.Error(t, err)
}
