package scoring

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cardiosense-ai/platform/pkg/ml/artifact"
	"github.com/cardiosense-ai/platform/pkg/ml/features"
	"github.com/cardiosense-ai/platform/pkg/ml/linear"
)

func testArtifact() *artifact.Artifact {
	mean := make([]float64, features.Count)
	std := make([]float64, features.Count)
	coeffs := make([]float64, features.Count)
	for i := range std {
		std[i] = 1
		coeffs[i] = 0.05
	}
	return &artifact.Artifact{
		Version:      "v1.0",
		Algorithm:    "logistic_regression",
		FeatureNames: features.CanonicalOrder[:],
		Weights:      linear.Weights{Bias: 0, Coefficients: coeffs},
		Scaler:       &features.StandardScaler{Mean: mean, Std: std},
		TrainedAt:    time.Now().UTC(),
	}
}

func TestClassifyThreshold(t *testing.T) {
	// Exactly 0.5 classifies as 0; only strictly greater is 1.
	if Classify(0.5) != 0 {
		t.Fatal("expected 0.5 to classify as 0")
	}
	if Classify(0.5001) != 1 {
		t.Fatal("expected 0.5001 to classify as 1")
	}
	if Classify(0.2) != 0 {
		t.Fatal("expected 0.2 to classify as 0")
	}
	if Classify(1) != 1 {
		t.Fatal("expected 1 to classify as 1")
	}
}

func TestScoreWithinUnitInterval(t *testing.T) {
	scorer, err := New(testArtifact())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vector := make([]float64, features.Count)
	for i := range vector {
		vector[i] = 100
	}
	p, err := scorer.Score(vector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p < 0 || p > 1 {
		t.Fatalf("probability %v outside [0,1]", p)
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := artifact.Save(path, testArtifact()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scorer, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scorer.Version() != "v1.0" {
		t.Fatalf("expected version v1.0, got %q", scorer.Version())
	}
	if scorer.Builder() == nil {
		t.Fatal("expected paired feature builder")
	}
}

func TestNewRejectsIncompleteArtifact(t *testing.T) {
	a := testArtifact()
	a.Scaler = nil
	if _, err := New(a); err == nil {
		t.Fatal("expected error for artifact without scaler")
	}
}
