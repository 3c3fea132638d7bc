package mot

import (
	"fmt"
	"log"

	"github.com/arthurkushman/go-hungarian"
	"github.com/google/uuid"
)

// MatchingAlgorithm is for algorithm type for matching detections to tracks
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for optimal assignment
	MatchingAlgorithmHungarian MatchingAlgorithm = iota
	// MatchingAlgorithmGreedy uses a greedy algorithm for faster but potentially suboptimal assignment
	MatchingAlgorithmGreedy
)

// ByteTracker is implementation of Multi-object tracker (MOT) called ByteTrack.
// B is the blob type implementing Blob[B] interface.
type ByteTracker[B Blob[B]] struct {
	// Maximum number of frames an object can be missing before it is removed
	maxDisappeared int
	// Minimum IoU between predicted track and detection to be considered the same object
	minIoU float64
	// High detection confidence threshold
	highThresh float64
	// Low detection confidence threshold
	lowThresh float64
	// Number of hits required before track is reported as confirmed
	hitsToConfirm int
	// Algorithm to use for matching
	algorithm MatchingAlgorithm
	// Last assigned integer track identifier
	lastTrackID int64
	// Main storage
	Objects map[uuid.UUID]B
}

// DefaultByteTracker creates a ByteTracker with default parameters.
func DefaultByteTracker[B Blob[B]]() *ByteTracker[B] {
	return NewByteTracker[B](30, 0.3, 0.5, 0.25, 1, MatchingAlgorithmHungarian)
}

// NewByteTracker creates a new instance of ByteTracker with specified parameters.
func NewByteTracker[B Blob[B]](maxDisappeared int, minIoU, highThresh, lowThresh float64, hitsToConfirm int, algorithm MatchingAlgorithm) *ByteTracker[B] {
	if hitsToConfirm < 1 {
		hitsToConfirm = 1
	}
	return &ByteTracker[B]{
		maxDisappeared: maxDisappeared,
		minIoU:         minIoU,
		highThresh:     highThresh,
		lowThresh:      lowThresh,
		hitsToConfirm:  hitsToConfirm,
		algorithm:      algorithm,
		Objects:        make(map[uuid.UUID]B),
	}
}

// bboxPair is a helper struct to pair track ID with its bounding box.
type bboxPair struct {
	ID   uuid.UUID
	BBox Rectangle
}

// Track implements MultiObjectTracker
func (bt *ByteTracker[B]) Track(detections []B, confidences []float64) error {
	return bt.MatchObjects(detections, confidences)
}

// ObservedTracks implements MultiObjectTracker
func (bt *ByteTracker[B]) ObservedTracks() []B {
	return observedTracks(bt.Objects)
}

// IsConfirmed implements MultiObjectTracker
func (bt *ByteTracker[B]) IsConfirmed(track B) bool {
	return track.GetHits() >= bt.hitsToConfirm
}

// MatchObjects matches objects in the current frame with existing tracks.
// Detections are []B and confidences are []float64.
func (bt *ByteTracker[B]) MatchObjects(detections []B, confidences []float64) error {
	if len(detections) != len(confidences) {
		return fmt.Errorf("detections and confidences arrays must have the same length. Conf array size: %d. Detections array size: %d",
			len(confidences), len(detections))
	}

	// Predict next positions for all existing tracks via Kalman filter.
	// Every track is considered unobserved until matched on this frame.
	for _, track := range bt.Objects {
		track.Deactivate()
		track.PredictNextPosition()
	}

	// Get active tracks
	activeTrackIDs := make([]uuid.UUID, 0, len(bt.Objects))
	activeTrackBBoxes := make([]bboxPair, 0, len(bt.Objects))
	for id, track := range bt.Objects {
		if track.GetNoMatchTimes() < bt.maxDisappeared {
			activeTrackIDs = append(activeTrackIDs, id)
			activeTrackBBoxes = append(activeTrackBBoxes, bboxPair{
				ID:   id,
				BBox: track.GetPredictedBBox(),
			})
		}
	}

	matchedTracks := make(map[uuid.UUID]struct{})
	matchedDetections := make(map[int]struct{})

	// 1. First stage: Match high confidence detections
	highDetectionIndices := make([]int, 0, len(detections))
	for i, conf := range confidences {
		if conf >= bt.highThresh {
			highDetectionIndices = append(highDetectionIndices, i)
		}
	}
	if len(activeTrackBBoxes) > 0 && len(highDetectionIndices) > 0 {
		iouMatrix := bt.createIoUMatrix(activeTrackBBoxes, highDetectionIndices, detections)
		matches := bt.performMatching(iouMatrix, activeTrackBBoxes, highDetectionIndices)
		err := bt.processMatches(matches, activeTrackBBoxes, highDetectionIndices, iouMatrix, detections, matchedTracks, matchedDetections)
		if err != nil {
			return fmt.Errorf("error processing matches in stage 1: %w", err)
		}
	}

	// 2. Second stage: Match low confidence detections with remaining tracks
	unmatchedTrackBBoxes := make([]bboxPair, 0)
	for _, id := range activeTrackIDs {
		if _, found := matchedTracks[id]; found {
			continue
		}
		if track, ok := bt.Objects[id]; ok {
			unmatchedTrackBBoxes = append(unmatchedTrackBBoxes, bboxPair{
				ID:   id,
				BBox: track.GetPredictedBBox(),
			})
		}
	}
	lowDetectionIndices := make([]int, 0)
	for i, conf := range confidences {
		if _, found := matchedDetections[i]; !found {
			if conf < bt.highThresh && conf >= bt.lowThresh {
				lowDetectionIndices = append(lowDetectionIndices, i)
			}
		}
	}
	if len(unmatchedTrackBBoxes) > 0 && len(lowDetectionIndices) > 0 {
		iouMatrix := bt.createIoUMatrix(unmatchedTrackBBoxes, lowDetectionIndices, detections)
		matches := bt.performMatching(iouMatrix, unmatchedTrackBBoxes, lowDetectionIndices)
		err := bt.processMatches(matches, unmatchedTrackBBoxes, lowDetectionIndices, iouMatrix, detections, matchedTracks, matchedDetections)
		if err != nil {
			return fmt.Errorf("error processing matches in stage 2: %w", err)
		}
	}

	// 3. Add new tracks for unmatched high confidence detections
	for _, detIdx := range highDetectionIndices {
		if _, found := matchedDetections[detIdx]; !found {
			bt.register(detections[detIdx])
			matchedTracks[detections[detIdx].GetID()] = struct{}{}
		}
	}

	// 4. Increment no_match_times for unmatched tracks and drop the ones gone for too long
	for id, track := range bt.Objects {
		if _, found := matchedTracks[id]; !found {
			track.IncNoMatch()
		}
		if track.GetNoMatchTimes() >= bt.maxDisappeared {
			delete(bt.Objects, id)
		}
	}

	return nil
}

// register stores blob as a brand new track
func (bt *ByteTracker[B]) register(newBlob B) {
	bt.lastTrackID++
	newBlob.SetTrackID(bt.lastTrackID)
	newBlob.Activate()
	bt.Objects[newBlob.GetID()] = newBlob
}

// createIoUMatrix is helper function to create IoU matrix.
// Rows are tracks of the current stage, columns are detections referenced by detectionIndices.
func (bt *ByteTracker[B]) createIoUMatrix(
	trackBBoxes []bboxPair,
	detectionIndices []int,
	allDetections []B,
) [][]float64 {
	iouMatrix := make([][]float64, len(trackBBoxes))
	for i, trkBox := range trackBBoxes {
		row := make([]float64, len(detectionIndices))
		for j, detIdx := range detectionIndices {
			row[j] = IoU(trkBox.BBox, allDetections[detIdx].GetBBox())
		}
		iouMatrix[i] = row
	}
	return iouMatrix
}

// performMatching is helper function to perform matching using Hungarian or Greedy algorithm.
// Returns: a slice of [2]int, where each element is {trackIndexInTrackBBoxes, detectionIndexInDetectionIndices}.
func (bt *ByteTracker[B]) performMatching(
	iouMatrix [][]float64,
	trackBBoxes []bboxPair,
	detectionIndices []int,
) [][2]int {
	switch bt.algorithm {
	case MatchingAlgorithmHungarian:
		return bt.performHungarianMatching(iouMatrix, trackBBoxes, detectionIndices)
	default:
		return bt.performGreedyMatching(iouMatrix, trackBBoxes, detectionIndices)
	}
}

// performHungarianMatching solves assignment maximizing total IoU.
// Rectangular matrices are padded with zero IoU to make them square.
func (bt *ByteTracker[B]) performHungarianMatching(
	iouMatrix [][]float64,
	trackBBoxes []bboxPair,
	detectionIndices []int,
) [][2]int {
	numTracks := len(trackBBoxes)
	numDetections := len(detectionIndices)
	if numTracks == 0 || numDetections == 0 {
		return [][2]int{}
	}

	paddedMatrix := iouMatrix
	if numTracks != numDetections {
		paddedSize := maxInt(numTracks, numDetections)
		paddedMatrix = make([][]float64, paddedSize)
		for i := 0; i < paddedSize; i++ {
			paddedMatrix[i] = make([]float64, paddedSize)
			if i < numTracks {
				copy(paddedMatrix[i], iouMatrix[i])
			}
		}
	}

	assignmentsMap := hungarian.SolveMax(paddedMatrix)
	matches := make([][2]int, 0, numTracks)
	for trackIndex, rowMap := range assignmentsMap {
		for detectionIndex := range rowMap {
			if trackIndex >= len(paddedMatrix) || detectionIndex >= len(paddedMatrix) {
				log.Printf("[mot] warning: hungarian assignment out of bounds. TrackIdx: %d, DetIdx: %d\n", trackIndex, detectionIndex)
				break
			}
			// Assignments to padding rows/columns are dummies
			if trackIndex < numTracks && detectionIndex < numDetections {
				matches = append(matches, [2]int{trackIndex, detectionIndex})
			}
			break
		}
	}
	return matches
}

// performGreedyMatching is helper function for greedy matching.
func (bt *ByteTracker[B]) performGreedyMatching(
	iouMatrix [][]float64,
	trackBBoxes []bboxPair,
	detectionIndices []int,
) [][2]int {
	matches := make([][2]int, 0)
	matchedDetIndicesInStage := make(map[int]struct{})
	numTracksInStage := len(trackBBoxes)
	numDetectionsInStage := len(detectionIndices)
	if numTracksInStage == 0 || numDetectionsInStage == 0 {
		return matches
	}
	for i := 0; i < numTracksInStage; i++ {
		bestIoU := -1.0
		bestDetIdxInStage := -1
		for j := 0; j < numDetectionsInStage; j++ {
			if _, found := matchedDetIndicesInStage[j]; found {
				continue
			}
			currentIoU := iouMatrix[i][j]
			if currentIoU > bestIoU && currentIoU >= bt.minIoU {
				bestIoU = currentIoU
				bestDetIdxInStage = j
			}
		}
		if bestDetIdxInStage != -1 {
			matches = append(matches, [2]int{i, bestDetIdxInStage})
			matchedDetIndicesInStage[bestDetIdxInStage] = struct{}{}
		}
	}
	return matches
}

// processMatches updates tracks and marks matched entities.
// Matches below minIoU are ignored: Hungarian solver assigns every row, even zero-overlap ones.
func (bt *ByteTracker[B]) processMatches(
	matches [][2]int,
	trackBBoxes []bboxPair,
	detectionIndices []int,
	iouMatrix [][]float64,
	allDetections []B,
	matchedTracks map[uuid.UUID]struct{},
	matchedDetections map[int]struct{},
) error {
	for _, match := range matches {
		trackIdxInStage := match[0]
		detIdxInStage := match[1]
		if iouMatrix[trackIdxInStage][detIdxInStage] < bt.minIoU {
			continue
		}
		trackID := trackBBoxes[trackIdxInStage].ID
		originalDetIdx := detectionIndices[detIdxInStage]
		track, ok := bt.Objects[trackID]
		if !ok {
			continue
		}
		err := track.Update(allDetections[originalDetIdx])
		if err != nil {
			return fmt.Errorf("failed to update track %s: %w", trackID, err)
		}
		track.ResetNoMatch()
		matchedTracks[trackID] = struct{}{}
		matchedDetections[originalDetIdx] = struct{}{}
	}
	return nil
}
