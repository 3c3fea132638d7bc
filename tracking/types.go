// Package tracking turns per-frame detections into identity-stable
// trajectories by driving a multi-object tracker frame by frame.
package tracking

import (
	"github.com/LdDl/motility-go/mot"
)

// BBox is an axis-aligned box in pixel coordinates, left-top-right-bottom.
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns X2-X1
func (b BBox) Width() float64 {
	return b.X2 - b.X1
}

// Height returns Y2-Y1
func (b BBox) Height() float64 {
	return b.Y2 - b.Y1
}

// Center returns midpoint of the box
func (b BBox) Center() (float64, float64) {
	return (b.X1 + b.X2) / 2.0, (b.Y1 + b.Y2) / 2.0
}

// XYWH converts box into left-top corner plus size representation
func (b BBox) XYWH() mot.Rectangle {
	return mot.NewRectLTRB(b.X1, b.Y1, b.X2, b.Y2)
}

// BBoxFromRect converts tracker rectangle back into left-top-right-bottom box
func BBoxFromRect(r mot.Rectangle) BBox {
	l, t, rr, b := r.LTRB()
	return BBox{X1: l, Y1: t, X2: rr, Y2: b}
}

// Detection is a single object found by detector on a single frame.
type Detection struct {
	FrameID int     `json:"frame_id"`
	BBox    BBox    `json:"bbox"`
	Score   float64 `json:"score"`
}

// FramedBox is detection in the form tracker consumes it.
type FramedBox struct {
	Box     mot.Rectangle
	Score   float64
	FrameID int
}

// Framed converts detection into tracker input
func (d Detection) Framed() FramedBox {
	return FramedBox{
		Box:     d.BBox.XYWH(),
		Score:   d.Score,
		FrameID: d.FrameID,
	}
}

// TrackOutput is tracker's result for one track on one frame.
type TrackOutput struct {
	TrackID   int64
	BBox      BBox
	FrameID   int
	Confirmed bool
}
