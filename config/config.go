// Package config holds run configuration: detector, tracker, calibration and
// report settings loaded from a JSON file, with defaults for omitted fields.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/LdDl/motility-go/tracking"
	"github.com/pkg/errors"
)

var (
	// ErrInvalid marks structurally invalid configuration values
	ErrInvalid = errors.New("invalid configuration")
)

// Defaults used when configuration omits a field
const (
	DefaultWeights             = "models/yolo/yolov8n.onnx"
	DefaultConfidenceThreshold = 0.25
	DefaultMicronsPerPixel     = 0.5
	DefaultFPS                 = 25.0
	DefaultReferenceVolumeUL   = 2.0
	DefaultTracker             = tracking.KindByteTrack
	DefaultMaxDisappeared      = 30
	DefaultHitsToConfirm       = 1
	DefaultHistogramBins       = 30
	DefaultMarkdownRows        = 50
)

const maxFileSize = 1 * 1024 * 1024

// File is the on-disk run configuration. Every field is optional.
type File struct {
	// Detector
	Weights             *string  `json:"weights,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	MaxFrames           *int     `json:"max_frames,omitempty"` // 0 means whole video
	SkipFrames          *int     `json:"skip_frames,omitempty"`

	// Calibration
	MicronsPerPixel   *float64 `json:"microns_per_pixel,omitempty"`
	FPS               *float64 `json:"fps,omitempty"`
	ReferenceVolumeUL *float64 `json:"reference_volume_ul,omitempty"`

	// Tracker
	Tracker         *string  `json:"tracker,omitempty"` // "bytetrack" or "iou"
	MaxDisappeared  *int     `json:"max_disappeared,omitempty"`
	HitsToConfirm   *int     `json:"hits_to_confirm,omitempty"`
	// Score a detection needs to start a new ByteTrack track. Defaults to
	// confidence_threshold so every accepted detection can start one.
	TrackHighThresh *float64 `json:"track_high_thresh,omitempty"`

	// Report
	HistogramBins *int  `json:"histogram_bins,omitempty"`
	MarkdownRows  *int  `json:"markdown_rows,omitempty"`
	AnnotateVideo *bool `json:"annotate_video,omitempty"`
}

// Empty returns configuration with every field unset
func Empty() *File {
	return &File{}
}

// Load reads configuration from JSON file. Omitted fields keep their defaults.
func Load(path string) (*File, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	if fileInfo.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no run can work with. Non-positive calibration is
// not rejected here, see Calibration.Warnings.
func (c *File) Validate() error {
	if c.ConfidenceThreshold != nil {
		if *c.ConfidenceThreshold < 0 || *c.ConfidenceThreshold > 1 {
			return errors.Wrapf(ErrInvalid, "confidence_threshold must be between 0 and 1, got %f", *c.ConfidenceThreshold)
		}
	}
	if c.Weights != nil && *c.Weights == "" {
		return errors.Wrap(ErrInvalid, "weights must not be empty")
	}
	if c.MaxFrames != nil && *c.MaxFrames < 0 {
		return errors.Wrapf(ErrInvalid, "max_frames must be non-negative, got %d", *c.MaxFrames)
	}
	if c.SkipFrames != nil && *c.SkipFrames < 0 {
		return errors.Wrapf(ErrInvalid, "skip_frames must be non-negative, got %d", *c.SkipFrames)
	}
	if c.Tracker != nil {
		switch *c.Tracker {
		case tracking.KindByteTrack, tracking.KindIoU:
		default:
			return errors.Wrapf(ErrInvalid, "unknown tracker '%s'", *c.Tracker)
		}
	}
	if c.TrackHighThresh != nil {
		if *c.TrackHighThresh < 0 || *c.TrackHighThresh > 1 {
			return errors.Wrapf(ErrInvalid, "track_high_thresh must be between 0 and 1, got %f", *c.TrackHighThresh)
		}
	}
	if c.MaxDisappeared != nil && *c.MaxDisappeared < 1 {
		return errors.Wrapf(ErrInvalid, "max_disappeared must be positive, got %d", *c.MaxDisappeared)
	}
	if c.HitsToConfirm != nil && *c.HitsToConfirm < 1 {
		return errors.Wrapf(ErrInvalid, "hits_to_confirm must be positive, got %d", *c.HitsToConfirm)
	}
	if c.HistogramBins != nil && *c.HistogramBins < 1 {
		return errors.Wrapf(ErrInvalid, "histogram_bins must be positive, got %d", *c.HistogramBins)
	}
	if c.MarkdownRows != nil && *c.MarkdownRows < 0 {
		return errors.Wrapf(ErrInvalid, "markdown_rows must be non-negative, got %d", *c.MarkdownRows)
	}
	return nil
}

// GetWeights returns path to detector weights or the default.
func (c *File) GetWeights() string {
	if c.Weights == nil {
		return DefaultWeights
	}
	return *c.Weights
}

// GetConfidenceThreshold returns detector confidence threshold or the default.
func (c *File) GetConfidenceThreshold() float64 {
	if c.ConfidenceThreshold == nil {
		return DefaultConfidenceThreshold
	}
	return *c.ConfidenceThreshold
}

// GetMaxFrames returns frame cap, 0 for none.
func (c *File) GetMaxFrames() int {
	if c.MaxFrames == nil {
		return 0
	}
	return *c.MaxFrames
}

// GetSkipFrames returns number of frames skipped between detector calls.
func (c *File) GetSkipFrames() int {
	if c.SkipFrames == nil {
		return 0
	}
	return *c.SkipFrames
}

// GetMicronsPerPixel returns spatial calibration or the default.
func (c *File) GetMicronsPerPixel() float64 {
	if c.MicronsPerPixel == nil {
		return DefaultMicronsPerPixel
	}
	return *c.MicronsPerPixel
}

// GetFPS returns temporal calibration or the default.
func (c *File) GetFPS() float64 {
	if c.FPS == nil {
		return DefaultFPS
	}
	return *c.FPS
}

// GetReferenceVolumeUL returns reference volume in microlitres or the default.
func (c *File) GetReferenceVolumeUL() float64 {
	if c.ReferenceVolumeUL == nil {
		return DefaultReferenceVolumeUL
	}
	return *c.ReferenceVolumeUL
}

// GetTracker returns tracker kind or the default.
func (c *File) GetTracker() string {
	if c.Tracker == nil {
		return DefaultTracker
	}
	return *c.Tracker
}

// GetTrackHighThresh returns ByteTrack high confidence threshold, the detector
// confidence threshold when unset.
func (c *File) GetTrackHighThresh() float64 {
	if c.TrackHighThresh == nil {
		return c.GetConfidenceThreshold()
	}
	return *c.TrackHighThresh
}

// GetMaxDisappeared returns frames a track survives unmatched.
func (c *File) GetMaxDisappeared() int {
	if c.MaxDisappeared == nil {
		return DefaultMaxDisappeared
	}
	return *c.MaxDisappeared
}

// GetHitsToConfirm returns hits required for confirmation.
func (c *File) GetHitsToConfirm() int {
	if c.HitsToConfirm == nil {
		return DefaultHitsToConfirm
	}
	return *c.HitsToConfirm
}

// GetHistogramBins returns velocity histogram bin count.
func (c *File) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return DefaultHistogramBins
	}
	return *c.HistogramBins
}

// GetMarkdownRows returns number of track rows rendered in narrative report.
func (c *File) GetMarkdownRows() int {
	if c.MarkdownRows == nil {
		return DefaultMarkdownRows
	}
	return *c.MarkdownRows
}

// GetAnnotateVideo reports whether annotated video is produced.
func (c *File) GetAnnotateVideo() bool {
	if c.AnnotateVideo == nil {
		return true
	}
	return *c.AnnotateVideo
}

// Calibration returns calibration part of configuration
func (c *File) Calibration() Calibration {
	return Calibration{
		MicronsPerPixel:   c.GetMicronsPerPixel(),
		FPS:               c.GetFPS(),
		ReferenceVolumeUL: c.GetReferenceVolumeUL(),
	}
}
