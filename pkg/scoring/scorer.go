package scoring

import (
	"github.com/cardiosense-ai/platform/pkg/ml/artifact"
	"github.com/cardiosense-ai/platform/pkg/ml/features"
	"github.com/cardiosense-ai/platform/pkg/ml/linear"
)

// Threshold is the fixed classification cut-off. Probabilities strictly
// above it classify as 1; exactly 0.5 classifies as 0.
const Threshold = 0.5

// Scorer is a deterministic probability function loaded once from a
// persisted artifact. It holds no mutable state and is safe for concurrent
// use.
type Scorer struct {
	version string
	weights linear.Weights
	builder *features.Builder
}

// New builds a Scorer from a validated artifact.
func New(a *artifact.Artifact) (*Scorer, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	builder, err := features.NewBuilder(a.Scaler)
	if err != nil {
		return nil, err
	}
	return &Scorer{
		version: a.Version,
		weights: a.Weights,
		builder: builder,
	}, nil
}

// Load reads the artifact at path and builds a Scorer from it.
func Load(path string) (*Scorer, error) {
	a, err := artifact.Load(path)
	if err != nil {
		return nil, err
	}
	return New(a)
}

// Version is the model-version tag carried into prediction logs.
func (s *Scorer) Version() string {
	return s.version
}

// Builder exposes the feature builder paired with this scorer's fit-time
// normalization parameters.
func (s *Scorer) Builder() *features.Builder {
	return s.builder
}

// Score maps a normalized feature vector to a probability in [0,1].
func (s *Scorer) Score(vector []float64) (float64, error) {
	return s.weights.Score(vector)
}

// Classify applies the fixed threshold.
func Classify(probability float64) int {
	if probability > Threshold {
		return 1
	}
	return 0
}
