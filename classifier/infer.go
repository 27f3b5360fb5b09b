package classifier

import (
	"fmt"

	"github.com/krau/scenelens/engine"
)

// Infer runs h on input and returns a freshly allocated score vector.
func Infer(h engine.Handle, input []float32) ([]float32, error) {
	output := make([]float32, h.OutputShape().Size())
	if err := h.Run(input, output); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}
	return output, nil
}
