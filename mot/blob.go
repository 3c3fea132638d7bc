package mot

import "github.com/google/uuid"

// Blob is the interface for tracked objects.
// Self is the concrete type implementing this interface (e.g., *BlobBBox).
// This enables type-safe generic trackers.
type Blob[Self any] interface {
	// Identity. UUID is assigned on creation, integer track ID is assigned
	// by tracker when blob is registered as a new track.
	GetID() uuid.UUID
	SetID(newID uuid.UUID)
	GetTrackID() int64
	SetTrackID(trackID int64)

	// Geometry
	GetCenter() Point
	GetBBox() Rectangle
	GetPredictedBBox() Rectangle

	// Lifecycle. Active means "observed on the last processed frame"
	Activate()
	Deactivate()
	IsActive() bool

	// Match tracking
	GetHits() int
	GetNoMatchTimes() int
	IncNoMatch()
	ResetNoMatch()

	// Kalman operations
	PredictNextPosition()
	Update(measurement Self) error
}

// MultiObjectTracker is implemented by every tracker in this package.
type MultiObjectTracker[B Blob[B]] interface {
	// Track consumes detections of a single frame.
	// Trackers which do not use confidences may ignore them.
	Track(detections []B, confidences []float64) error
	// ObservedTracks returns tracks matched or created on the last frame.
	ObservedTracks() []B
	// IsConfirmed reports whether track has been seen enough times to be trusted.
	IsConfirmed(track B) bool
}
