package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cardiosense-ai/platform/pkg/ml/features"
	"github.com/cardiosense-ai/platform/pkg/ml/linear"
)

// ErrIncomplete marks an artifact missing one of its paired halves. The
// fitted weights and the scaler parameters are only valid together;
// loading either alone would corrupt predictions.
var ErrIncomplete = errors.New("incomplete model artifact")

// Artifact is the persisted model: logistic weights and the normalization
// parameters fitted alongside them, versioned as one blob.
type Artifact struct {
	Version      string                   `json:"version"`
	Algorithm    string                   `json:"algorithm"`
	FeatureNames []string                 `json:"feature_names"`
	Weights      linear.Weights           `json:"weights"`
	Scaler       *features.StandardScaler `json:"scaler"`
	Metrics      linear.Metrics           `json:"metrics"`
	TrainedAt    time.Time                `json:"trained_at"`
}

// Validate checks that both halves are present and agree with the
// canonical feature order.
func (a *Artifact) Validate() error {
	if len(a.Weights.Coefficients) == 0 {
		return fmt.Errorf("%w: missing weights", ErrIncomplete)
	}
	if a.Scaler == nil || len(a.Scaler.Mean) == 0 || len(a.Scaler.Std) == 0 {
		return fmt.Errorf("%w: missing scaler parameters", ErrIncomplete)
	}
	if len(a.Weights.Coefficients) != features.Count {
		return fmt.Errorf("%w: %d coefficients, expected %d", ErrIncomplete, len(a.Weights.Coefficients), features.Count)
	}
	if len(a.Scaler.Mean) != features.Count || len(a.Scaler.Std) != features.Count {
		return fmt.Errorf("%w: scaler dimension does not match feature count", ErrIncomplete)
	}
	if len(a.FeatureNames) != features.Count {
		return fmt.Errorf("%w: %d feature names, expected %d", ErrIncomplete, len(a.FeatureNames), features.Count)
	}
	for i, name := range features.CanonicalOrder {
		if a.FeatureNames[i] != name {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrIncomplete, i, a.FeatureNames[i], name)
		}
	}
	return nil
}

// Save writes the artifact atomically: temp file in the target directory,
// then rename.
func Save(path string, a *Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist artifact: %w", err)
	}
	return nil
}

// Load reads and validates a persisted artifact.
func Load(path string) (*Artifact, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(content, &a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
