package classifier

import (
	"fmt"
	"math"
)

// Activation maps raw model outputs to confidences in place. MobileNet-style models
// already end in a softmax and need none; models exported without their final layer
// emit logits.
type Activation func(scores []float32)

// Softmax normalizes scores into a probability distribution.
func Softmax(scores []float32) {
	if len(scores) == 0 {
		return
	}
	maxLogit := float32(math.Inf(-1))
	for _, s := range scores {
		if s > maxLogit {
			maxLogit = s
		}
	}

	var sum float32
	for i, s := range scores {
		e := float32(math.Exp(float64(s - maxLogit)))
		scores[i] = e
		sum += e
	}
	for i := range scores {
		scores[i] /= sum
	}
}

// Sigmoid squashes each score independently, for multi-label heads.
func Sigmoid(scores []float32) {
	for i, x := range scores {
		if x > 50 {
			x = 50
		} else if x < -50 {
			x = -50
		}
		scores[i] = 1 / (1 + float32(math.Exp(float64(-x))))
	}
}

// ActivationByName maps the config names none, softmax and sigmoid. none yields nil.
func ActivationByName(name string) (Activation, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "softmax":
		return Softmax, nil
	case "sigmoid":
		return Sigmoid, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}
