package detection

import (
	"image"
	"sync"

	"github.com/LdDl/motility-go/tracking"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var (
	// ErrModel is returned when network can not be loaded or its output is not understood
	ErrModel = errors.New("detector model error")
)

const (
	yoloInputSize = 640
	nmsThreshold  = 0.45
)

// YOLODetector runs YOLOv8 network exported to ONNX through OpenCV DNN on CPU.
type YOLODetector struct {
	net       gocv.Net
	conf      float64
	inputSize int
	mu        sync.Mutex
}

// NewYOLODetector loads network weights. Candidates scoring below conf are dropped.
func NewYOLODetector(weightsPath string, conf float64) (*YOLODetector, error) {
	net := gocv.ReadNet(weightsPath, "")
	if net.Empty() {
		net.Close()
		return nil, errors.Wrapf(ErrModel, "failed to load network from '%s'", weightsPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)
	return &YOLODetector{
		net:       net,
		conf:      conf,
		inputSize: yoloInputSize,
	}, nil
}

// Detect implements Detector
func (yd *YOLODetector) Detect(frame gocv.Mat) ([]Candidate, error) {
	yd.mu.Lock()
	defer yd.mu.Unlock()

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(yd.inputSize, yd.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	yd.net.SetInput(blob, "")
	output := yd.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(ErrModel, err.Error())
	}
	width := float64(frame.Cols())
	height := float64(frame.Rows())
	candidates, err := decodeYOLOv8(data, output.Size(), decodeOptions{
		conf:   yd.conf,
		scaleX: width / float64(yd.inputSize),
		scaleY: height / float64(yd.inputSize),
	})
	if err != nil {
		return nil, err
	}
	kept := NonMaxSuppression(candidates, nmsThreshold)
	for i := range kept {
		kept[i].BBox = clampBBox(kept[i].BBox, width, height)
	}
	return kept, nil
}

// Close implements Detector
func (yd *YOLODetector) Close() error {
	return yd.net.Close()
}

type decodeOptions struct {
	conf   float64
	scaleX float64
	scaleY float64
}

// decodeYOLOv8 parses raw network output of shape [1, 4+classes, anchors].
// Exports with transposed [1, anchors, 4+classes] layout are accepted too.
// Each anchor holds box center, size and per-class scores in input pixels.
func decodeYOLOv8(data []float32, dims []int, opts decodeOptions) ([]Candidate, error) {
	if len(dims) != 3 || dims[0] != 1 {
		return nil, errors.Wrapf(ErrModel, "unexpected output shape %v", dims)
	}
	attrs, anchors := dims[1], dims[2]
	transposed := false
	if attrs > anchors {
		attrs, anchors = anchors, attrs
		transposed = true
	}
	if attrs < 5 {
		return nil, errors.Wrapf(ErrModel, "output has %d attributes, need at least 5", attrs)
	}
	if len(data) < attrs*anchors {
		return nil, errors.Wrapf(ErrModel, "output holds %d values, shape %v needs %d", len(data), dims, attrs*anchors)
	}
	at := func(attr, anchor int) float64 {
		if transposed {
			return float64(data[anchor*attrs+attr])
		}
		return float64(data[attr*anchors+anchor])
	}

	candidates := make([]Candidate, 0)
	for i := 0; i < anchors; i++ {
		classID := 0
		score := at(4, i)
		for c := 5; c < attrs; c++ {
			if s := at(c, i); s > score {
				score = s
				classID = c - 4
			}
		}
		if score < opts.conf {
			continue
		}
		cx, cy, w, h := at(0, i), at(1, i), at(2, i), at(3, i)
		candidates = append(candidates, Candidate{
			BBox: tracking.BBox{
				X1: (cx - w/2.0) * opts.scaleX,
				Y1: (cy - h/2.0) * opts.scaleY,
				X2: (cx + w/2.0) * opts.scaleX,
				Y2: (cy + h/2.0) * opts.scaleY,
			},
			Score:   score,
			ClassID: classID,
		})
	}
	return candidates, nil
}
