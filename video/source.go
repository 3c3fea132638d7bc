// Package video opens frame sources for analysis: video containers read
// through OpenCV and still images treated as single frame videos.
package video

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var (
	// ErrOpen is returned when source can not be opened or decoded
	ErrOpen = errors.New("can't open video source")
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// Source yields frames in playback order.
type Source interface {
	// Read decodes next frame into given Mat. False at the end of stream.
	Read(frame *gocv.Mat) bool
	// FPS reported by container, 0 when unknown
	FPS() float64
	// Size returns frame width and height
	Size() (int, int)
	Close() error
}

// IsImage reports whether path names a still image
func IsImage(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Open opens video file or still image
func Open(path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(ErrOpen, "'%s': %v", path, err)
	}
	if IsImage(path) {
		return openImage(path)
	}
	return openCapture(path)
}

type captureSource struct {
	capture *gocv.VideoCapture
}

func openCapture(path string) (*captureSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "'%s': %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(ErrOpen, "'%s': not a readable video", path)
	}
	return &captureSource{capture: capture}, nil
}

func (src *captureSource) Read(frame *gocv.Mat) bool {
	if ok := src.capture.Read(frame); !ok || frame.Empty() {
		return false
	}
	return true
}

func (src *captureSource) FPS() float64 {
	return src.capture.Get(gocv.VideoCaptureFPS)
}

func (src *captureSource) Size() (int, int) {
	return int(src.capture.Get(gocv.VideoCaptureFrameWidth)), int(src.capture.Get(gocv.VideoCaptureFrameHeight))
}

func (src *captureSource) Close() error {
	return src.capture.Close()
}

// imageSource replays one decoded image as a single frame
type imageSource struct {
	img  gocv.Mat
	done bool
}

func openImage(path string) (*imageSource, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, errors.Wrapf(ErrOpen, "'%s': can't decode image", path)
	}
	return &imageSource{img: img}, nil
}

func (src *imageSource) Read(frame *gocv.Mat) bool {
	if src.done {
		return false
	}
	src.done = true
	src.img.CopyTo(frame)
	return true
}

func (src *imageSource) FPS() float64 {
	return 0
}

func (src *imageSource) Size() (int, int) {
	return src.img.Cols(), src.img.Rows()
}

func (src *imageSource) Close() error {
	return src.img.Close()
}
