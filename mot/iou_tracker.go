package mot

import (
	"container/heap"

	"github.com/google/uuid"
)

// IoUTracker is a naive implementation of Multi-object tracker (MOT) with IoU matching.
// Uses hybrid IoU + distance matching for better recovery when IoU is zero.
type IoUTracker[B Blob[B]] struct {
	// Max no match (max number of frames when object could not be found again)
	maxNoMatch int
	// IoU threshold for matching
	iouThreshold float64
	// Number of hits required before track is reported as confirmed
	hitsToConfirm int
	// Last assigned integer track identifier
	lastTrackID int64
	// Storage for tracked objects
	Objects map[uuid.UUID]B
}

// NewDefaultIoUTracker creates a default instance of IoUTracker.
// Default values: maxNoMatch=30, iouThreshold=0.0, hitsToConfirm=1
func NewDefaultIoUTracker[B Blob[B]]() *IoUTracker[B] {
	return NewIoUTracker[B](30, 0.0, 1)
}

// NewIoUTracker creates a new instance of IoUTracker with specified parameters.
func NewIoUTracker[B Blob[B]](maxNoMatch int, iouThreshold float64, hitsToConfirm int) *IoUTracker[B] {
	if hitsToConfirm < 1 {
		hitsToConfirm = 1
	}
	return &IoUTracker[B]{
		maxNoMatch:    maxNoMatch,
		iouThreshold:  iouThreshold,
		hitsToConfirm: hitsToConfirm,
		Objects:       make(map[uuid.UUID]B),
	}
}

// iouDistanceBlob holds a blob with its match score and target ID for priority queue
type iouDistanceBlob[B Blob[B]] struct {
	score float64
	maxID uuid.UUID
	blob  B
	order int
	index int
}

// iouHeap implements heap.Interface for max-heap by score
type iouHeap[B Blob[B]] []*iouDistanceBlob[B]

func (h iouHeap[B]) Len() int { return len(h) }

// Less returns true if i has higher score (max-heap). Ties keep detection order
func (h iouHeap[B]) Less(i, j int) bool {
	if h[i].score == h[j].score {
		return h[i].order < h[j].order
	}
	return h[i].score > h[j].score
}

func (h iouHeap[B]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *iouHeap[B]) Push(x any) {
	n := len(*h)
	item := x.(*iouDistanceBlob[B])
	item.index = n
	*h = append(*h, item)
}

func (h *iouHeap[B]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// Track implements MultiObjectTracker. Confidences are not used by this tracker
func (tracker *IoUTracker[B]) Track(detections []B, _ []float64) error {
	return tracker.MatchObjects(detections)
}

// ObservedTracks implements MultiObjectTracker
func (tracker *IoUTracker[B]) ObservedTracks() []B {
	return observedTracks(tracker.Objects)
}

// IsConfirmed implements MultiObjectTracker
func (tracker *IoUTracker[B]) IsConfirmed(track B) bool {
	return track.GetHits() >= tracker.hitsToConfirm
}

// matchScore combines IoU and center distance into 0-1 similarity.
// IoU is favored when available, pure distance matching gets lower weight.
func matchScore(detection, predicted Rectangle) float64 {
	iouValue := IoU(detection, predicted)
	distance := euclideanDistance(predicted.Center(), detection.Center())
	distanceScore := 1.0 / (1.0 + distance*0.01)
	if iouValue > 0.05 {
		return iouValue*0.8 + distanceScore*0.2
	}
	return distanceScore * 0.5
}

// MatchObjects matches new detections to existing tracked objects using hybrid IoU + distance.
func (tracker *IoUTracker[B]) MatchObjects(newObjects []B) error {
	for _, object := range tracker.Objects {
		object.Deactivate()
	}

	pq := &iouHeap[B]{}
	heap.Init(pq)
	for i, newObj := range newObjects {
		var maxID uuid.UUID
		maxScore := 0.0
		for objID, object := range tracker.Objects {
			score := matchScore(newObj.GetBBox(), object.GetPredictedBBox())
			if score > maxScore {
				maxScore = score
				maxID = objID
			}
		}
		heap.Push(pq, &iouDistanceBlob[B]{
			score: maxScore,
			maxID: maxID,
			blob:  newObj,
			order: i,
		})
	}

	// Prevent double update of objects
	reservedObjects := make(map[uuid.UUID]struct{})
	blobsToRegister := make([]B, 0)

	// Process matches from highest score to lowest
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*iouDistanceBlob[B])
		if _, reserved := reservedObjects[item.maxID]; reserved || item.score <= tracker.iouThreshold {
			blobsToRegister = append(blobsToRegister, item.blob)
			continue
		}
		existingObj, ok := tracker.Objects[item.maxID]
		if !ok {
			blobsToRegister = append(blobsToRegister, item.blob)
			continue
		}
		// Advance time and update in correct order
		existingObj.PredictNextPosition()
		if err := existingObj.Update(item.blob); err != nil {
			return err
		}
		existingObj.ResetNoMatch()
		item.blob.SetID(item.maxID)
		reservedObjects[item.maxID] = struct{}{}
	}

	// Handle unmatched objects (predict forward for track maintenance)
	for id, object := range tracker.Objects {
		if _, reserved := reservedObjects[id]; reserved {
			continue
		}
		object.PredictNextPosition()
		object.IncNoMatch()
		if object.GetNoMatchTimes() > tracker.maxNoMatch {
			delete(tracker.Objects, id)
		}
	}

	for _, blob := range blobsToRegister {
		tracker.lastTrackID++
		blob.SetTrackID(tracker.lastTrackID)
		blob.Activate()
		tracker.Objects[blob.GetID()] = blob
	}
	return nil
}
