package classifier

import (
	"fmt"
	"math"

	"github.com/krau/scenelens/labels"
)

const (
	PolicyThreshold = "threshold"
	PolicyArgmax    = "argmax"
)

// DefaultThreshold is the minimum confidence, in percent, of a thresholded result.
const DefaultThreshold float32 = 70

// Policy selects how a score vector becomes a Result. It is either Thresholded or Argmax.
type Policy interface {
	Name() string
	Decode(scores []float32, table labels.Table) Result
}

// Thresholded reports every class at or above MinPercent, ranked by confidence.
type Thresholded struct {
	MinPercent float32
}

func (Thresholded) Name() string { return PolicyThreshold }

func (p Thresholded) Decode(scores []float32, table labels.Table) Result {
	return DecodeThresholded(scores, table, p.MinPercent)
}

// Argmax reports the single best class as a caption.
type Argmax struct{}

func (Argmax) Name() string { return PolicyArgmax }

func (Argmax) Decode(scores []float32, table labels.Table) Result {
	return DecodeArgmax(scores, table)
}

// ParsePolicy builds a policy from its name; minPercent only applies to threshold.
func ParsePolicy(name string, minPercent float32) (Policy, error) {
	switch name {
	case "", PolicyThreshold:
		if math.IsNaN(float64(minPercent)) || minPercent < 0 || minPercent > 100 {
			return nil, fmt.Errorf("threshold %v outside [0, 100]", minPercent)
		}
		return Thresholded{MinPercent: minPercent}, nil
	case PolicyArgmax:
		return Argmax{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}
