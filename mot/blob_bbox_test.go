package mot

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewBlobBBox(t *testing.T) {
	bbox := Rectangle{X: 10, Y: 20, Width: 30, Height: 40}
	blob := NewBlobBBox(bbox)

	if blob == nil {
		t.Fatal("NewBlobBBox returned nil")
	}
	if blob.GetID() == uuid.Nil {
		t.Error("Blob ID should not be nil")
	}
	if blob.GetTrackID() != 0 {
		t.Errorf("Track ID should be zero before registration, got %d", blob.GetTrackID())
	}
	if blob.GetBBox() != bbox {
		t.Errorf("Expected bbox %v, got %v", bbox, blob.GetBBox())
	}
	expectedCenter := Point{X: 25, Y: 40}
	if center := blob.GetCenter(); center != expectedCenter {
		t.Errorf("Expected center %v, got %v", expectedCenter, center)
	}
	if blob.GetHits() != 1 {
		t.Errorf("New blob should count as a single hit, got %d", blob.GetHits())
	}
}

func TestBlobBBoxActivateDeactivate(t *testing.T) {
	blob := NewBlobBBox(Rectangle{X: 0, Y: 0, Width: 10, Height: 10})

	if blob.IsActive() {
		t.Error("Blob should be inactive by default")
	}
	blob.Activate()
	if !blob.IsActive() {
		t.Error("Blob should be active after Activate()")
	}
	blob.Deactivate()
	if blob.IsActive() {
		t.Error("Blob should be inactive after Deactivate()")
	}
}

func TestBlobBBoxNoMatchTimes(t *testing.T) {
	blob := NewBlobBBox(Rectangle{X: 0, Y: 0, Width: 10, Height: 10})

	if blob.GetNoMatchTimes() != 0 {
		t.Error("NoMatchTimes should be 0 initially")
	}
	blob.IncNoMatch()
	blob.IncNoMatch()
	if blob.GetNoMatchTimes() != 2 {
		t.Errorf("Expected NoMatchTimes 2, got %d", blob.GetNoMatchTimes())
	}
	blob.ResetNoMatch()
	if blob.GetNoMatchTimes() != 0 {
		t.Error("NoMatchTimes should be 0 after reset")
	}
}

func TestBlobBBoxPredictNextPosition(t *testing.T) {
	blob := NewBlobBBox(Rectangle{X: 10, Y: 20, Width: 30, Height: 40})
	blob.PredictNextPosition()
	predictedBBox := blob.GetPredictedBBox()
	if predictedBBox.Width <= 0 || predictedBBox.Height <= 0 {
		t.Error("Predicted bbox should have positive dimensions")
	}
}

func TestBlobBBoxUpdate(t *testing.T) {
	blob := NewBlobBBox(Rectangle{X: 10, Y: 20, Width: 30, Height: 40})
	newBlob := NewBlobBBox(Rectangle{X: 15, Y: 25, Width: 32, Height: 42})

	blob.PredictNextPosition()
	err := blob.Update(newBlob)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !blob.IsActive() {
		t.Error("Blob should be active after update")
	}
	if blob.GetHits() != 2 {
		t.Errorf("Expected 2 hits after update, got %d", blob.GetHits())
	}
	if blob.GetNoMatchTimes() != 0 {
		t.Errorf("Expected NoMatchTimes 0 after update, got %d", blob.GetNoMatchTimes())
	}
}

func TestBlobBBoxSizeTracking(t *testing.T) {
	blob := NewBlobBBox(Rectangle{X: 0, Y: 0, Width: 100, Height: 100})
	blob.Activate()

	// Simulate object growing over several frames
	sizes := []struct{ w, h float64 }{
		{102, 102},
		{104, 104},
		{106, 106},
		{108, 108},
	}
	for _, size := range sizes {
		blob.PredictNextPosition()
		newBlob := NewBlobBBox(Rectangle{X: 0, Y: 0, Width: size.w, Height: size.h})
		err := blob.Update(newBlob)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	_, _, vw, vh := blob.GetVelocity()
	if vw <= 0 {
		t.Errorf("Width velocity should be positive for growing object, got %f", vw)
	}
	if vh <= 0 {
		t.Errorf("Height velocity should be positive for growing object, got %f", vh)
	}
}

func TestBlobBBoxSetID(t *testing.T) {
	blob := NewBlobBBox(Rectangle{X: 0, Y: 0, Width: 10, Height: 10})
	newID := uuid.New()
	blob.SetID(newID)
	if blob.GetID() != newID {
		t.Errorf("Expected ID %v, got %v", newID, blob.GetID())
	}
	blob.SetTrackID(42)
	if blob.GetTrackID() != 42 {
		t.Errorf("Expected track ID 42, got %d", blob.GetTrackID())
	}
}
