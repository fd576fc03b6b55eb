package features

import (
	"fmt"
	"math"
)

// StandardScaler holds per-field z-score parameters. The parameters are
// fixed when Fit runs at training time and must never be recomputed at
// inference time.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes mean and standard deviation per column.
func FitScaler(samples [][]float64) (*StandardScaler, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty sample set")
	}
	width := len(samples[0])
	mean := make([]float64, width)
	std := make([]float64, width)

	for _, sample := range samples {
		if len(sample) != width {
			return nil, fmt.Errorf("ragged sample: expected %d values, got %d", width, len(sample))
		}
		for j, value := range sample {
			mean[j] += value
		}
	}
	n := float64(len(samples))
	for j := range mean {
		mean[j] /= n
	}

	for _, sample := range samples {
		for j, value := range sample {
			diff := value - mean[j]
			std[j] += diff * diff
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
	}

	return &StandardScaler{Mean: mean, Std: std}, nil
}

// Transform applies the fitted z-score parameters. A constant column
// (std 0) maps to 0 instead of dividing by zero.
func (s *StandardScaler) Transform(sample []float64) ([]float64, error) {
	if len(sample) != len(s.Mean) {
		return nil, fmt.Errorf("sample length %d does not match scaler dimension %d", len(sample), len(s.Mean))
	}
	out := make([]float64, len(sample))
	for j, value := range sample {
		if s.Std[j] == 0 {
			out[j] = 0
			continue
		}
		out[j] = (value - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}
