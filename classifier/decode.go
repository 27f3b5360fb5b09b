package classifier

import (
	"math"
	"sort"

	"github.com/krau/scenelens/labels"
)

// DecodeThresholded keeps every class whose score x 100 is at least minPercent, highest
// first. Equal scores keep ascending class order. NaN scores never qualify.
func DecodeThresholded(scores []float32, table labels.Table, minPercent float32) Result {
	res := Result{Policy: PolicyThreshold}
	for i, s := range scores {
		if isNaN(s) {
			continue
		}
		confidence := s * 100
		if confidence >= minPercent {
			res.Detections = append(res.Detections, Detection{
				Label:      table.Label(i),
				Class:      i,
				Confidence: confidence,
			})
		}
	}
	sort.SliceStable(res.Detections, func(i, j int) bool {
		return res.Detections[i].Confidence > res.Detections[j].Confidence
	})
	return res
}

// DecodeArgmax picks the highest score scanning from class 0; on ties the lowest class
// wins, the same rule DecodeThresholded uses for ordering. An empty distribution yields
// an Unknown caption with class -1.
func DecodeArgmax(scores []float32, table labels.Table) Result {
	best := -1
	for i, s := range scores {
		if isNaN(s) {
			continue
		}
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	caption := Detection{Label: table.Label(best), Class: best}
	if best >= 0 {
		caption.Confidence = scores[best] * 100
	}
	return Result{Policy: PolicyArgmax, Caption: &caption}
}

func isNaN(f float32) bool {
	return math.IsNaN(float64(f))
}
