package linear

import (
	"fmt"
	"math"
)

type Options struct {
	Epochs       int
	LearningRate float64
}

// Weights is a fitted logistic regression: one coefficient per feature in
// the order the training matrix used, plus a bias term.
type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

type Metrics struct {
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

// Train fits a logistic regression with batch gradient descent. Labels must
// be 0 or 1.
func Train(samples [][]float64, labels []float64, opts Options) (Weights, Metrics, error) {
	if len(samples) == 0 {
		return Weights{}, Metrics{}, fmt.Errorf("no training samples")
	}
	if len(samples) != len(labels) {
		return Weights{}, Metrics{}, fmt.Errorf("sample count %d does not match label count %d", len(samples), len(labels))
	}
	if opts.Epochs <= 0 {
		opts.Epochs = 200
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.01
	}

	n := len(samples)
	featureCount := len(samples[0])
	coefficients := make([]float64, featureCount)
	var bias float64

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		grad := make([]float64, featureCount)
		var biasGrad float64
		for i, sample := range samples {
			if len(sample) != featureCount {
				return Weights{}, Metrics{}, fmt.Errorf("ragged sample at row %d", i)
			}
			residual := sigmoid(dot(coefficients, sample)+bias) - labels[i]
			for j := 0; j < featureCount; j++ {
				grad[j] += residual * sample[j]
			}
			biasGrad += residual
		}
		for j := 0; j < featureCount; j++ {
			coefficients[j] -= opts.LearningRate * grad[j] / float64(n)
		}
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	weights := Weights{Bias: bias, Coefficients: coefficients}
	loss, accuracy := evaluate(weights, samples, labels)
	return weights, Metrics{Loss: loss, Accuracy: accuracy}, nil
}

// Score returns the predicted probability for one sample.
func (w Weights) Score(sample []float64) (float64, error) {
	if len(sample) != len(w.Coefficients) {
		return 0, fmt.Errorf("sample length %d does not match coefficient count %d", len(sample), len(w.Coefficients))
	}
	return sigmoid(dot(w.Coefficients, sample) + w.Bias), nil
}

func dot(coefficients []float64, sample []float64) float64 {
	var sum float64
	for i := range coefficients {
		sum += coefficients[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func evaluate(weights Weights, samples [][]float64, labels []float64) (float64, float64) {
	var loss float64
	var correct int
	for i, sample := range samples {
		p := sigmoid(dot(weights.Coefficients, sample) + weights.Bias)
		loss += -labels[i]*math.Log(p+1e-9) - (1-labels[i])*math.Log(1-p+1e-9)
		if (p >= 0.5 && labels[i] == 1) || (p < 0.5 && labels[i] == 0) {
			correct++
		}
	}
	loss /= float64(len(samples))
	accuracy := float64(correct) / float64(len(samples))
	return loss, accuracy
}
