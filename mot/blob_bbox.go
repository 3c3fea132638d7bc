package mot

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// BlobBBox is a tracked object using 8-D Kalman filter for full bounding box dynamics.
// State vector: [cx, cy, w, h, vx, vy, vw, vh] - center position, size, and velocities.
// It implements Blob[*BlobBBox] interface.
type BlobBBox struct {
	id            uuid.UUID
	trackID       int64
	currentBBox   Rectangle
	predictedBBox Rectangle
	active        bool
	hits          int
	noMatchTimes  int
	tracker       *kalman_filter.KalmanBBox
}

// NewBlobBBoxWithTime creates a new BlobBBox with specified time step.
func NewBlobBBoxWithTime(currentBbox Rectangle, dt float64) *BlobBBox {
	center := currentBbox.Center()

	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	kf := kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, currentBbox.Width, currentBbox.Height),
	)

	return &BlobBBox{
		id:            uuid.New(),
		currentBBox:   currentBbox,
		predictedBBox: currentBbox,
		active:        false,
		hits:          1,
		noMatchTimes:  0,
		tracker:       kf,
	}
}

// NewBlobBBox creates a new BlobBBox with default time step of 1.0.
func NewBlobBBox(currentBbox Rectangle) *BlobBBox {
	return NewBlobBBoxWithTime(currentBbox, 1.0)
}

// Activate activates blob
func (blob *BlobBBox) Activate() {
	blob.active = true
}

// Deactivate deactivates blob
func (blob *BlobBBox) Deactivate() {
	blob.active = false
}

// IsActive returns whether blob has been observed on the last frame
func (blob *BlobBBox) IsActive() bool {
	return blob.active
}

// GetID returns blob's identifier
func (blob *BlobBBox) GetID() uuid.UUID {
	return blob.id
}

// SetID sets blob's identifier
func (blob *BlobBBox) SetID(newID uuid.UUID) {
	blob.id = newID
}

// GetTrackID returns integer track identifier (zero until registered by tracker)
func (blob *BlobBBox) GetTrackID() int64 {
	return blob.trackID
}

// SetTrackID sets integer track identifier
func (blob *BlobBBox) SetTrackID(trackID int64) {
	blob.trackID = trackID
}

// GetCenter returns blob's current center
func (blob *BlobBBox) GetCenter() Point {
	return blob.currentBBox.Center()
}

// GetBBox returns blob's current bounding box
func (blob *BlobBBox) GetBBox() Rectangle {
	return blob.currentBBox
}

// GetPredictedBBox returns predicted bounding box from Kalman filter
func (blob *BlobBBox) GetPredictedBBox() Rectangle {
	return blob.predictedBBox
}

// GetHits returns number of frames blob has been matched on (including the first one)
func (blob *BlobBBox) GetHits() int {
	return blob.hits
}

// GetNoMatchTimes returns blob's no match times
func (blob *BlobBBox) GetNoMatchTimes() int {
	return blob.noMatchTimes
}

// IncNoMatch increases blob's no match times
func (blob *BlobBBox) IncNoMatch() {
	blob.noMatchTimes++
}

// ResetNoMatch resets blob's no match times
func (blob *BlobBBox) ResetNoMatch() {
	blob.noMatchTimes = 0
}

// PredictNextPosition executes Kalman filter prediction step
func (blob *BlobBBox) PredictNextPosition() {
	blob.tracker.Predict()
	cx, cy, w, h := blob.tracker.GetState()
	blob.predictedBBox = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
}

// Update updates blob's bounding box and executes Kalman filter update step
func (blob *BlobBBox) Update(newBlob *BlobBBox) error {
	measured := newBlob.currentBBox
	center := measured.Center()

	err := blob.tracker.Update(center.X, center.Y, measured.Width, measured.Height)
	if err != nil {
		return errors.Wrap(err, "Can't update object tracker")
	}

	// Smoothed state from Kalman filter
	cx, cy, w, h := blob.tracker.GetState()
	blob.currentBBox = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}

	blob.active = true
	blob.hits++
	blob.noMatchTimes = 0
	return nil
}

// GetVelocity returns current velocity estimates (vx, vy, vw, vh) from Kalman filter
func (blob *BlobBBox) GetVelocity() (float64, float64, float64, float64) {
	return blob.tracker.GetVelocity()
}
