package classifier

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/krau/scenelens/labels"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestDecodeThresholded(t *testing.T) {
	res := DecodeThresholded([]float32{0.9, 0.5, 0.71}, labels.Table{"cat", "dog", "bird"}, 70)

	if len(res.Detections) != 2 {
		t.Fatalf("Expected 2 detections, got %d: %+v", len(res.Detections), res.Detections)
	}
	if res.Detections[0].Label != "cat" || !near(res.Detections[0].Confidence, 90) {
		t.Errorf("Expected cat 90, got %+v", res.Detections[0])
	}
	if res.Detections[1].Label != "bird" || !near(res.Detections[1].Confidence, 71) {
		t.Errorf("Expected bird 71, got %+v", res.Detections[1])
	}
	if res.Policy != PolicyThreshold {
		t.Errorf("Expected policy %s, got %s", PolicyThreshold, res.Policy)
	}
	if got := res.String(); got != "cat (90.0%)\nbird (71.0%)" {
		t.Errorf("Unexpected rendering %q", got)
	}
}

func TestDecodeThresholdedTies(t *testing.T) {
	res := DecodeThresholded([]float32{0.8, 0.9, 0.8, 0.8}, labels.Table{"a", "b", "c", "d"}, 0)
	want := []int{1, 0, 2, 3}
	for i, d := range res.Detections {
		if d.Class != want[i] {
			t.Errorf("position %d: expected class %d, got %d", i, want[i], d.Class)
		}
	}
}

func TestDecodeThresholdedEmpty(t *testing.T) {
	res := DecodeThresholded([]float32{0.1, 0.2}, labels.Table{"a", "b"}, 70)
	if !res.Empty() {
		t.Errorf("Expected empty result, got %+v", res.Detections)
	}
	if res.String() != NoDetections {
		t.Errorf("Expected %q, got %q", NoDetections, res.String())
	}
}

func TestDecodeThresholdedUnknown(t *testing.T) {
	res := DecodeThresholded([]float32{0.99, 0.98, 0.97}, labels.Table{"only"}, 50)
	want := []string{"only", labels.Unknown, labels.Unknown}
	if len(res.Detections) != len(want) {
		t.Fatalf("Expected %d detections, got %d", len(want), len(res.Detections))
	}
	for i, d := range res.Detections {
		if d.Label != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], d.Label)
		}
	}
}

func TestDecodeThresholdedSkipsNaN(t *testing.T) {
	nan := float32(math.NaN())
	res := DecodeThresholded([]float32{nan, 0.8, nan}, labels.Table{"a", "b", "c"}, 0)
	if len(res.Detections) != 1 || res.Detections[0].Class != 1 {
		t.Errorf("Expected only class 1, got %+v", res.Detections)
	}
}

func TestDecodeThresholdedProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	scores := make([]float32, 1001)
	for i := range scores {
		scores[i] = rng.Float32()
	}
	// force some exact ties
	scores[10], scores[20], scores[30] = 0.75, 0.75, 0.75

	prev := len(scores) + 1
	for threshold := float32(0); threshold <= 100; threshold += 5 {
		res := DecodeThresholded(scores, nil, threshold)
		if len(res.Detections) > prev {
			t.Errorf("threshold %v: count grew from %d to %d", threshold, prev, len(res.Detections))
		}
		prev = len(res.Detections)

		for i, d := range res.Detections {
			if d.Confidence < threshold {
				t.Errorf("threshold %v: %+v below threshold", threshold, d)
			}
			if i == 0 {
				continue
			}
			before := res.Detections[i-1]
			if before.Confidence < d.Confidence {
				t.Errorf("threshold %v: not descending at %d", threshold, i)
			}
			if before.Confidence == d.Confidence && before.Class > d.Class {
				t.Errorf("threshold %v: tie at %d not in ascending class order", threshold, i)
			}
		}
	}
}

func TestDecodeArgmax(t *testing.T) {
	tests := []struct {
		name   string
		scores []float32
		table  labels.Table
		label  string
		class  int
	}{
		{"max", []float32{0.2, 0.2, 0.9}, labels.Table{"a", "b", "c"}, "c", 2},
		{"tie lowest index", []float32{0.5, 0.5}, labels.Table{"a", "b"}, "a", 0},
		{"tie after max", []float32{0.1, 0.7, 0.3, 0.7}, labels.Table{"a", "b", "c", "d"}, "b", 1},
		{"out of range", []float32{0.1, 0.9}, labels.Table{"a"}, labels.Unknown, 1},
		{"nan leading", []float32{float32(math.NaN()), 0.1}, labels.Table{"a", "b"}, "b", 1},
		{"empty", nil, labels.Table{"a"}, labels.Unknown, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := DecodeArgmax(tt.scores, tt.table)
			if res.Caption == nil {
				t.Fatal("Expected caption")
			}
			if res.Caption.Label != tt.label || res.Caption.Class != tt.class {
				t.Errorf("Expected %s/%d, got %s/%d", tt.label, tt.class, res.Caption.Label, res.Caption.Class)
			}
			if res.String() != tt.label {
				t.Errorf("Expected caption text %q, got %q", tt.label, res.String())
			}
			if res.Empty() {
				t.Error("Caption result should not be empty")
			}
		})
	}
}

func TestPoliciesAgreeOnTies(t *testing.T) {
	scores := []float32{0.3, 0.95, 0.95, 0.1}
	table := labels.Table{"a", "b", "c", "d"}
	top := DecodeThresholded(scores, table, 0).Detections[0]
	caption := DecodeArgmax(scores, table).Caption
	if top.Class != caption.Class {
		t.Errorf("Thresholded top %d and argmax %d disagree", top.Class, caption.Class)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("threshold", 55)
	if err != nil {
		t.Fatalf("ParsePolicy failed: %v", err)
	}
	if th, ok := p.(Thresholded); !ok || th.MinPercent != 55 {
		t.Errorf("Expected Thresholded{55}, got %#v", p)
	}
	if p, _ := ParsePolicy("", 70); p.Name() != PolicyThreshold {
		t.Errorf("Empty name should default to threshold, got %s", p.Name())
	}
	if p, _ := ParsePolicy("argmax", 0); p.Name() != PolicyArgmax {
		t.Errorf("Expected argmax, got %s", p.Name())
	}
	if _, err := ParsePolicy("vote", 0); err == nil {
		t.Error("Expected error for unknown policy")
	}
	if _, err := ParsePolicy("threshold", 120); err == nil {
		t.Error("Expected error for threshold above 100")
	}
	if _, err := ParsePolicy("threshold", float32(math.NaN())); err == nil {
		t.Error("Expected error for NaN threshold")
	}
}
