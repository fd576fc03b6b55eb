package linear

import "testing"

func TestTrainSeparatesClasses(t *testing.T) {
	samples := [][]float64{
		{-2}, {-1.5}, {-1}, {-0.5},
		{0.5}, {1}, {1.5}, {2},
	}
	labels := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	weights, metrics, err := Train(samples, labels, Options{Epochs: 2000, LearningRate: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Accuracy < 1 {
		t.Fatalf("expected perfect accuracy on separable data, got %v", metrics.Accuracy)
	}

	low, err := weights.Score([]float64{-2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := weights.Score([]float64{2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low >= 0.5 {
		t.Fatalf("expected low probability for negative class, got %v", low)
	}
	if high <= 0.5 {
		t.Fatalf("expected high probability for positive class, got %v", high)
	}
}

func TestScoreStaysInUnitInterval(t *testing.T) {
	weights := Weights{Bias: 100, Coefficients: []float64{50}}
	p, err := weights.Score([]float64{1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p < 0 || p > 1 {
		t.Fatalf("probability %v outside [0,1]", p)
	}
}

func TestTrainRejectsBadInput(t *testing.T) {
	if _, _, err := Train(nil, nil, Options{}); err == nil {
		t.Fatal("expected error for empty samples")
	}
	if _, _, err := Train([][]float64{{1}}, []float64{0, 1}, Options{}); err == nil {
		t.Fatal("expected error for mismatched labels")
	}
}

func TestScoreRejectsWrongDimension(t *testing.T) {
	weights := Weights{Coefficients: []float64{1, 2}}
	if _, err := weights.Score([]float64{1}); err == nil {
		t.Fatal("expected dimension error")
	}
}
