package trainer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/ml/artifact"
	"github.com/cardiosense-ai/platform/pkg/ml/dataset"
	"github.com/cardiosense-ai/platform/pkg/ml/features"
	"github.com/cardiosense-ai/platform/pkg/ml/linear"
)

// DefaultVersion tags every artifact produced by the bootstrap trainer.
const DefaultVersion = "v1.0"

// ModelUnavailableError means no usable scorer exists: there is no cached
// artifact and the reference dataset could not be obtained.
type ModelUnavailableError struct {
	Cause error
}

func (e ModelUnavailableError) Error() string {
	return fmt.Sprintf("model unavailable: %v", e.Cause)
}

func (e ModelUnavailableError) Unwrap() error {
	return e.Cause
}

type Options struct {
	Epochs       int
	LearningRate float64
	Version      string
}

// EnsureModel makes sure a valid artifact exists at path, training one from
// the reference dataset only when necessary. The operation is idempotent:
// with a valid persisted artifact it performs no fetch, no training, and
// leaves the file untouched.
func EnsureModel(ctx context.Context, path string, source dataset.Source, opts Options) (*artifact.Artifact, error) {
	existing, err := artifact.Load(path)
	if err == nil {
		logger.Log.WithField("path", path).Debug("model artifact present, skipping bootstrap")
		return existing, nil
	}
	if !os.IsNotExist(err) {
		logger.Log.WithError(err).WithField("path", path).Warn("persisted artifact unusable, retraining")
	}

	samples, err := source.Fetch(ctx)
	if err != nil {
		return nil, ModelUnavailableError{Cause: err}
	}

	trained, err := train(samples, opts)
	if err != nil {
		return nil, ModelUnavailableError{Cause: err}
	}

	if err := artifact.Save(path, trained); err != nil {
		return nil, fmt.Errorf("persist model: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"path":     path,
		"samples":  len(samples),
		"accuracy": trained.Metrics.Accuracy,
	}).Info("bootstrap model trained")
	return trained, nil
}

func train(samples []dataset.Sample, opts Options) (*artifact.Artifact, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no training samples")
	}

	raw := make([][]float64, 0, len(samples))
	labels := make([]float64, 0, len(samples))
	for _, sample := range samples {
		row := make([]float64, features.Count)
		for i, name := range features.CanonicalOrder {
			value, ok := sample.Features[name]
			if !ok {
				return nil, fmt.Errorf("training sample missing feature %q", name)
			}
			row[i] = value
		}
		raw = append(raw, row)
		labels = append(labels, sample.Label)
	}

	scaler, err := features.FitScaler(raw)
	if err != nil {
		return nil, err
	}

	scaled := make([][]float64, len(raw))
	for i, row := range raw {
		scaled[i], err = scaler.Transform(row)
		if err != nil {
			return nil, err
		}
	}

	weights, metrics, err := linear.Train(scaled, labels, linear.Options{
		Epochs:       opts.Epochs,
		LearningRate: opts.LearningRate,
	})
	if err != nil {
		return nil, err
	}

	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}

	return &artifact.Artifact{
		Version:      version,
		Algorithm:    "logistic_regression",
		FeatureNames: features.CanonicalOrder[:],
		Weights:      weights,
		Scaler:       scaler,
		Metrics:      metrics,
		TrainedAt:    time.Now().UTC(),
	}, nil
}
