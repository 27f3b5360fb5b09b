package classifier

import (
	"fmt"
	"strings"
)

// NoDetections is the text of a thresholded result with no entries.
const NoDetections = "No objects detected with sufficient confidence"

// Detection is one class and its confidence in percent.
type Detection struct {
	Label      string  `json:"label"`
	Class      int     `json:"class"`
	Confidence float32 `json:"confidence"`
}

func (d Detection) String() string {
	return fmt.Sprintf("%s (%.1f%%)", d.Label, d.Confidence)
}

// Result is the decoded output of one frame. Thresholded results fill Detections,
// arg-max results fill Caption.
type Result struct {
	Policy     string      `json:"policy"`
	Detections []Detection `json:"detections,omitempty"`
	Caption    *Detection  `json:"caption,omitempty"`
}

// Empty reports a thresholded result where nothing met the threshold.
func (r Result) Empty() bool {
	return r.Caption == nil && len(r.Detections) == 0
}

func (r Result) String() string {
	if r.Caption != nil {
		return r.Caption.Label
	}
	if len(r.Detections) == 0 {
		return NoDetections
	}
	lines := make([]string, len(r.Detections))
	for i, d := range r.Detections {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
