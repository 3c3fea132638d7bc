// Package pipeline wires detection, tracking, motility metrics, reporting and
// annotation into a single blocking run.
package pipeline

import (
	"context"
	"log"
	"path/filepath"

	"github.com/LdDl/motility-go/annotate"
	"github.com/LdDl/motility-go/config"
	"github.com/LdDl/motility-go/detection"
	"github.com/LdDl/motility-go/motility"
	"github.com/LdDl/motility-go/report"
	"github.com/LdDl/motility-go/tracking"
	"github.com/LdDl/motility-go/video"
	"github.com/pkg/errors"
)

// AnnotatedVideoName is file name of overlay video inside run directory
const AnnotatedVideoName = "processed.mp4"

// Bundle lists everything one run produced.
type Bundle struct {
	RunID          string           `json:"run_id"`
	Dir            string           `json:"dir"`
	Artifacts      report.Artifacts `json:"artifacts"`
	AnnotatedVideo string           `json:"processed_video,omitempty"`
	Document       report.Document  `json:"-"`
}

// TrackerFactory creates fresh tracker for a run
type TrackerFactory func() (tracking.Tracker, error)

type runner struct {
	cfg            *config.File
	runID          string
	detector       detection.Detector
	trackerFactory TrackerFactory
	noVideo        bool
	logger         *log.Logger
}

// Option customizes Run
type Option func(*runner)

// WithConfig sets detector, tracker and report settings. Calibration passed to
// Run takes precedence over calibration of the file.
func WithConfig(cfg *config.File) Option {
	return func(r *runner) {
		r.cfg = cfg
	}
}

// WithRunID sets identifier recorded in the report
func WithRunID(runID string) Option {
	return func(r *runner) {
		r.runID = runID
	}
}

// WithDetector injects detector. Caller keeps ownership and closes it.
func WithDetector(detector detection.Detector) Option {
	return func(r *runner) {
		r.detector = detector
	}
}

// WithTrackerFactory replaces the tracker built from configuration
func WithTrackerFactory(factory TrackerFactory) Option {
	return func(r *runner) {
		r.trackerFactory = factory
	}
}

// WithLogger sets logger of the run
func WithLogger(logger *log.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// WithoutVideo skips annotated video
func WithoutVideo() Option {
	return func(r *runner) {
		r.noVideo = true
	}
}

// TrackerFromConfig returns factory of mot based trackers configured by cfg
func TrackerFromConfig(cfg *config.File) TrackerFactory {
	return func() (tracking.Tracker, error) {
		opts := tracking.DefaultMOTOptions(cfg.GetConfidenceThreshold())
		opts.Kind = cfg.GetTracker()
		opts.MaxDisappeared = cfg.GetMaxDisappeared()
		opts.HitsToConfirm = cfg.GetHitsToConfirm()
		opts.HighThresh = cfg.GetTrackHighThresh()
		return tracking.NewMOTTracker(opts)
	}
}

// Run analyzes video (or still image) and writes report artifacts into outDir.
// It either returns complete bundle or a single error.
func Run(ctx context.Context, videoPath string, calib config.Calibration, outDir string, opts ...Option) (*Bundle, error) {
	r := &runner{
		cfg: config.Empty(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.trackerFactory == nil {
		r.trackerFactory = TrackerFromConfig(r.cfg)
	}

	warnings := calib.Warnings()
	for _, w := range warnings {
		r.logger.Printf("[config] warning: %s", w)
	}

	detections, frames, err := r.detect(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	tracker, err := r.trackerFactory()
	if err != nil {
		return nil, errors.Wrap(err, "Can't create tracker")
	}
	trajs, err := tracking.Ingest(ctx, tracker, detections)
	if err != nil {
		return nil, errors.Wrap(err, "Can't reconstruct trajectories")
	}
	r.logger.Printf("[tracking] %d trajectories, %d points", len(trajs), trajs.PointCount())

	metrics := motility.ComputeAll(trajs, calib.FPS, calib.MicronsPerPixel)
	occupancy := motility.OccupancyCounts(trajs)
	concentration := motility.EstimateConcentration(occupancy, calib.ReferenceVolumeUL)

	doc := report.NewDocument(r.runID, metrics, occupancy, concentration, frames, report.Params{
		Weights:             r.cfg.GetWeights(),
		ConfidenceThreshold: r.cfg.GetConfidenceThreshold(),
		MicronsPerPixel:     calib.MicronsPerPixel,
		FPS:                 calib.FPS,
		ReferenceVolumeUL:   calib.ReferenceVolumeUL,
		Tracker:             r.cfg.GetTracker(),
		MaxFrames:           r.cfg.GetMaxFrames(),
		SkipFrames:          r.cfg.GetSkipFrames(),
		Warnings:            warnings,
	})

	composer := report.NewComposer()
	composer.HistogramBins = r.cfg.GetHistogramBins()
	composer.MarkdownRows = r.cfg.GetMarkdownRows()
	composer.Logger = r.logger
	artifacts, err := composer.Compose(ctx, doc, outDir)
	if err != nil {
		return nil, errors.Wrap(err, "Can't compose report")
	}

	bundle := &Bundle{
		RunID:     r.runID,
		Dir:       outDir,
		Artifacts: artifacts,
		Document:  doc,
	}
	if r.cfg.GetAnnotateVideo() && !r.noVideo {
		out := filepath.Join(outDir, AnnotatedVideoName)
		annotator := &annotate.Annotator{Logger: r.logger}
		if err := annotator.AnnotateFile(ctx, videoPath, trajs, out); err != nil {
			return nil, errors.Wrap(err, "Can't annotate video")
		}
		bundle.AnnotatedVideo = out
	}
	return bundle, nil
}

func (r *runner) detect(ctx context.Context, videoPath string) ([]tracking.Detection, int, error) {
	src, err := video.Open(videoPath)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()

	detector := r.detector
	if detector == nil {
		yolo, err := detection.NewYOLODetector(r.cfg.GetWeights(), r.cfg.GetConfidenceThreshold())
		if err != nil {
			return nil, 0, err
		}
		defer yolo.Close()
		detector = yolo
	}
	detections, frames, err := detection.ScanVideo(ctx, src, detector, detection.ScanOptions{
		MaxFrames:  r.cfg.GetMaxFrames(),
		SkipFrames: r.cfg.GetSkipFrames(),
		Logger:     r.logger,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "Can't scan video")
	}
	return detections, frames, nil
}
