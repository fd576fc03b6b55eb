package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/common/models"
	"github.com/cardiosense-ai/platform/pkg/ml/artifact"
	"github.com/cardiosense-ai/platform/pkg/ml/features"
	"github.com/cardiosense-ai/platform/pkg/ml/linear"
	"github.com/cardiosense-ai/platform/pkg/scoring"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testScorer(t *testing.T) *scoring.Scorer {
	t.Helper()
	mean := make([]float64, features.Count)
	std := make([]float64, features.Count)
	coeffs := make([]float64, features.Count)
	for i := range std {
		std[i] = 1
		coeffs[i] = 0.02
	}
	scorer, err := scoring.New(&artifact.Artifact{
		Version:      "v1.0",
		Algorithm:    "logistic_regression",
		FeatureNames: features.CanonicalOrder[:],
		Weights:      linear.Weights{Bias: -1, Coefficients: coeffs},
		Scaler:       &features.StandardScaler{Mean: mean, Std: std},
		TrainedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to build scorer: %v", err)
	}
	return scorer
}

func referencePatient(id int64) models.PatientRecord {
	return models.PatientRecord{
		PatientID: id,
		Age:       63, Sex: 1, CP: 3, Trestbps: 145, Chol: 233,
		FBS: 1, Restecg: 0, Thalach: 150, Exang: 0,
		Oldpeak: 2.3, Slope: 0, CA: 0, Thal: 1,
		CreatedAt: time.Now().UTC(),
	}
}

type fakeAPI struct {
	record models.PatientRecord
	getErr error
	logErr error
	logged []models.LogPredictionRequest
}

func (f *fakeAPI) GetLatest(ctx context.Context) (models.PatientRecord, error) {
	if f.getErr != nil {
		return models.PatientRecord{}, f.getErr
	}
	return f.record, nil
}

func (f *fakeAPI) LogPrediction(ctx context.Context, entry models.LogPredictionRequest) (models.PredictionLog, error) {
	if f.logErr != nil {
		return models.PredictionLog{}, f.logErr
	}
	f.logged = append(f.logged, entry)
	return models.PredictionLog{ID: 1, PatientID: *entry.PatientID}, nil
}

func TestRunCompletes(t *testing.T) {
	api := &fakeAPI{record: referencePatient(1)}
	runner := NewRunner(api, testScorer(t))

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stage != StageDone {
		t.Fatalf("expected stage done, got %s", result.Stage)
	}
	if !result.Scored || !result.Logged {
		t.Fatalf("expected scored and logged, got %+v", result)
	}
	if result.PatientID != 1 {
		t.Fatalf("expected patient 1, got %d", result.PatientID)
	}
	if result.Prediction != 0 && result.Prediction != 1 {
		t.Fatalf("classification %d not in {0,1}", result.Prediction)
	}
	if result.Probability < 0 || result.Probability > 1 {
		t.Fatalf("probability %v outside [0,1]", result.Probability)
	}
	if result.ModelVersion != "v1.0" {
		t.Fatalf("expected model version v1.0, got %q", result.ModelVersion)
	}

	if len(api.logged) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(api.logged))
	}
	entry := api.logged[0]
	if *entry.PatientID != 1 {
		t.Fatalf("log entry references patient %d, expected 1", *entry.PatientID)
	}
	if *entry.Prediction != result.Prediction {
		t.Fatalf("log entry prediction %d does not match result %d", *entry.Prediction, result.Prediction)
	}
}

func TestRunProbabilityRoundedForStorage(t *testing.T) {
	api := &fakeAPI{record: referencePatient(7)}
	runner := NewRunner(api, testScorer(t))

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Probability != math.Round(result.Probability*10000)/10000 {
		t.Fatalf("probability %v not rounded to 4 decimal places", result.Probability)
	}
}

func TestRunEmptyStore(t *testing.T) {
	api := &fakeAPI{getErr: ErrNoPatient}
	runner := NewRunner(api, testScorer(t))

	result, err := runner.Run(context.Background())
	if !errors.Is(err, ErrNoPatient) {
		t.Fatalf("expected ErrNoPatient, got %v", err)
	}
	if result.Stage != StageFailed {
		t.Fatalf("expected stage failed, got %s", result.Stage)
	}
	if result.Reason != ReasonNoPatient {
		t.Fatalf("expected reason no_patient, got %s", result.Reason)
	}
	if result.Scored || result.Logged {
		t.Fatalf("expected neither scored nor logged, got %+v", result)
	}
}

func TestRunStoreUnreachable(t *testing.T) {
	api := &fakeAPI{getErr: StoreUnavailableError{Op: "get latest patient", Cause: fmt.Errorf("connection refused")}}
	runner := NewRunner(api, testScorer(t))

	result, _ := runner.Run(context.Background())
	if result.Reason != ReasonFetchFailed {
		t.Fatalf("expected reason fetch_failed, got %s", result.Reason)
	}
}

func TestRunScoredButUnlogged(t *testing.T) {
	api := &fakeAPI{
		record: referencePatient(3),
		logErr: StoreUnavailableError{Op: "log prediction", Cause: fmt.Errorf("connection reset")},
	}
	runner := NewRunner(api, testScorer(t))

	result, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when logging fails")
	}
	if result.Reason != ReasonLogFailed {
		t.Fatalf("expected reason log_failed, got %s", result.Reason)
	}
	// The computed values survive even though persistence failed.
	if !result.Scored {
		t.Fatal("expected result marked scored")
	}
	if result.Logged {
		t.Fatal("expected result not marked logged")
	}
	if result.PatientID != 3 {
		t.Fatalf("expected patient 3, got %d", result.PatientID)
	}
	if result.Probability < 0 || result.Probability > 1 {
		t.Fatalf("probability %v outside [0,1]", result.Probability)
	}
}
