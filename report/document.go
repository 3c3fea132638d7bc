package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/LdDl/motility-go/motility"
	"github.com/pkg/errors"
)

// Params are input parameters of a run, reported as given.
type Params struct {
	Weights             string   `json:"weights"`
	ConfidenceThreshold float64  `json:"conf"`
	MicronsPerPixel     float64  `json:"microns_per_pixel"`
	FPS                 float64  `json:"fps"`
	ReferenceVolumeUL   float64  `json:"drop_volume_ul"`
	Tracker             string   `json:"tracker"`
	MaxFrames           int      `json:"max_frames"`
	SkipFrames          int      `json:"skip_frames"`
	Warnings            []string `json:"warnings,omitempty"`
}

// Document is the structured report of a run.
type Document struct {
	RunID              string                  `json:"run_id"`
	GeneratedAt        time.Time               `json:"generated_at"`
	Summary            Summary                 `json:"summary"`
	Tracks             []motility.TrackMetrics `json:"tracks"`
	ConcentrationPerML float64                 `json:"concentration"`
	OccupancyCounts    []int                   `json:"occupancy_counts"`
	FramesProcessed    int                     `json:"frames_processed"`
	Params             Params                  `json:"params"`
}

// NewDocument builds document from per-track metrics. Summary is derived here
// so it always agrees with Tracks.
func NewDocument(runID string, tracks []motility.TrackMetrics, occupancy []int, concentration float64, framesProcessed int, params Params) Document {
	if tracks == nil {
		tracks = []motility.TrackMetrics{}
	}
	if occupancy == nil {
		occupancy = []int{}
	}
	return Document{
		RunID:              runID,
		GeneratedAt:        time.Now().UTC(),
		Summary:            Summarize(tracks),
		Tracks:             tracks,
		ConcentrationPerML: concentration,
		OccupancyCounts:    occupancy,
		FramesProcessed:    framesProcessed,
		Params:             params,
	}
}

// Velocities returns velocity of every track, in track order
func (doc Document) Velocities() []float64 {
	velocities := make([]float64, len(doc.Tracks))
	for i, t := range doc.Tracks {
		velocities[i] = t.VelocityUmPerS
	}
	return velocities
}

// WriteJSON stores document as indented JSON
func WriteJSON(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "Can't encode report document")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "Can't write report document '%s'", path)
	}
	return nil
}

// ReadDocument loads document previously stored by WriteJSON
func ReadDocument(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, errors.Wrapf(err, "Can't read report document '%s'", path)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, errors.Wrapf(err, "Can't decode report document '%s'", path)
	}
	return doc, nil
}
