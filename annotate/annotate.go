// Package annotate renders reconstructed trajectories over the source video.
package annotate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand"
	"sort"

	"github.com/LdDl/motility-go/motility"
	"github.com/LdDl/motility-go/video"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// FallbackFPS is used when source does not report its frame rate
	FallbackFPS  = 25.0
	DefaultCodec = "mp4v"

	trailThickness = 2
	markerRadius   = 4
	labelScale     = 0.4
)

// ColorForTrack returns stable pseudo-random color of a track. Channels are
// in [50, 255] so trails stay visible on dark footage.
func ColorForTrack(trackID int64) color.RGBA {
	rnd := rand.New(rand.NewSource(trackID))
	return color.RGBA{
		R: uint8(50 + rnd.Intn(206)),
		G: uint8(50 + rnd.Intn(206)),
		B: uint8(50 + rnd.Intn(206)),
		A: 255,
	}
}

type trackPoint struct {
	trackID int64
	pt      image.Point
}

// frameIndex maps frame identifier to track positions observed on it
func frameIndex(trajs motility.Trajectories) map[int][]trackPoint {
	index := make(map[int][]trackPoint)
	for _, id := range trajs.IDs() {
		for _, p := range trajs[id] {
			index[p.FrameID] = append(index[p.FrameID], trackPoint{
				trackID: id,
				pt:      image.Pt(int(p.X), int(p.Y)),
			})
		}
	}
	return index
}

// trails accumulates positions of every track seen so far
type trails struct {
	index  map[int][]trackPoint
	points map[int64][]image.Point
	ids    []int64
}

func newTrails(trajs motility.Trajectories) *trails {
	return &trails{
		index:  frameIndex(trajs),
		points: make(map[int64][]image.Point),
	}
}

// advance appends positions observed on the frame
func (tr *trails) advance(frameID int) {
	for _, tp := range tr.index[frameID] {
		if _, ok := tr.points[tp.trackID]; !ok {
			tr.ids = append(tr.ids, tp.trackID)
			sort.Slice(tr.ids, func(i, j int) bool { return tr.ids[i] < tr.ids[j] })
		}
		tr.points[tp.trackID] = append(tr.points[tp.trackID], tp.pt)
	}
}

// draw renders every trail: polyline, marker at latest point and label
func (tr *trails) draw(img *gocv.Mat) {
	for _, id := range tr.ids {
		points := tr.points[id]
		if len(points) == 0 {
			continue
		}
		c := ColorForTrack(id)
		for i := 1; i < len(points); i++ {
			gocv.Line(img, points[i-1], points[i], c, trailThickness)
		}
		last := points[len(points)-1]
		gocv.Circle(img, last, markerRadius, c, -1)
		gocv.PutText(img, fmt.Sprintf("ID:%d", id), image.Pt(last.X+5, last.Y-5), gocv.FontHersheySimplex, labelScale, c, 1)
	}
}

// Annotator writes overlay video. Zero value is usable.
type Annotator struct {
	Codec  string
	Logger *log.Logger
}

// AnnotateFile opens source video and writes annotated copy to outPath
func (a *Annotator) AnnotateFile(ctx context.Context, videoPath string, trajs motility.Trajectories, outPath string) error {
	src, err := video.Open(videoPath)
	if err != nil {
		return errors.Wrap(err, "Can't open video for annotation")
	}
	defer src.Close()
	return a.Annotate(ctx, src, trajs, outPath)
}

// Annotate replays source frame by frame and draws trails accumulated up to
// every frame. Output keeps source resolution and frame count.
func (a *Annotator) Annotate(ctx context.Context, src video.Source, trajs motility.Trajectories, outPath string) error {
	codec := a.Codec
	if codec == "" {
		codec = DefaultCodec
	}
	fps := src.FPS()
	if fps <= 0 {
		fps = FallbackFPS
	}
	width, height := src.Size()
	writer, err := gocv.VideoWriterFile(outPath, codec, fps, width, height, true)
	if err != nil {
		return errors.Wrapf(err, "Can't create video writer '%s'", outPath)
	}
	defer writer.Close()

	tr := newTrails(trajs)
	frame := gocv.NewMat()
	defer frame.Close()

	frameID := 0
	for src.Read(&frame) {
		if err := ctx.Err(); err != nil {
			return err
		}
		tr.advance(frameID)
		tr.draw(&frame)
		if err := writer.Write(frame); err != nil {
			return errors.Wrapf(err, "Can't write frame %d", frameID)
		}
		frameID++
	}
	logger := a.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[annotate] %d frames, %d tracks written to %s", frameID, len(tr.ids), outPath)
	return nil
}
