package pipeline

import (
	"context"
	"errors"
	"math"

	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/common/models"
	"github.com/cardiosense-ai/platform/pkg/scoring"
)

// Stage names the pipeline's states. A run walks fetching through done;
// failed is terminal and reachable from any state.
type Stage string

const (
	StageFetching         Stage = "fetching"
	StageBuildingFeatures Stage = "building_features"
	StageScoring          Stage = "scoring"
	StageLogging          Stage = "logging"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// FailureReason distinguishes which stage a run died in.
type FailureReason string

const (
	ReasonNone        FailureReason = ""
	ReasonNoPatient   FailureReason = "no_patient"
	ReasonFetchFailed FailureReason = "fetch_failed"
	ReasonBadRecord   FailureReason = "bad_record"
	ReasonLogFailed   FailureReason = "log_failed"
)

// Result reports one pipeline invocation. A run that scored but could not
// persist the log entry still carries the computed values: Scored true,
// Logged false, reason log_failed.
type Result struct {
	PatientID    int64         `json:"patient_id"`
	Prediction   int           `json:"prediction"`
	Probability  float64       `json:"probability"`
	ModelVersion string        `json:"model_version"`
	Stage        Stage         `json:"stage"`
	Reason       FailureReason `json:"reason,omitempty"`
	Scored       bool          `json:"scored"`
	Logged       bool          `json:"logged"`
}

// Fields shapes the result for structured logging.
func (r Result) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"stage":         string(r.Stage),
		"model_version": r.ModelVersion,
	}
	if r.Reason != ReasonNone {
		fields["reason"] = string(r.Reason)
	}
	if r.PatientID != 0 {
		fields["patient_id"] = r.PatientID
	}
	if r.Scored {
		fields["prediction"] = r.Prediction
		fields["probability"] = r.Probability
	}
	return fields
}

// Runner drives one synchronous fetch-score-log pass. It holds no state of
// its own beyond the read-only scorer, so concurrent runs are safe; two
// simultaneous runs may both log, which is accepted.
type Runner struct {
	api    PatientAPI
	scorer *scoring.Scorer
}

func NewRunner(api PatientAPI, scorer *scoring.Scorer) *Runner {
	return &Runner{api: api, scorer: scorer}
}

// Run executes the pipeline once. Every patient-service error is terminal
// for the invocation; re-running is the caller's decision.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	result := Result{ModelVersion: r.scorer.Version(), Stage: StageFetching}

	record, err := r.api.GetLatest(ctx)
	if err != nil {
		result.Stage = StageFailed
		if errors.Is(err, ErrNoPatient) {
			result.Reason = ReasonNoPatient
		} else {
			result.Reason = ReasonFetchFailed
		}
		return result, err
	}
	// The identifier captured here is the one the log entry will
	// reference, even if a newer record lands before logging completes.
	result.PatientID = record.PatientID

	result.Stage = StageBuildingFeatures
	vector, err := r.scorer.Builder().Vector(record.ClinicalFeatures())
	if err != nil {
		result.Stage = StageFailed
		result.Reason = ReasonBadRecord
		return result, err
	}

	result.Stage = StageScoring
	probability, err := r.scorer.Score(vector)
	if err != nil {
		result.Stage = StageFailed
		result.Reason = ReasonBadRecord
		return result, err
	}
	result.Scored = true
	result.Prediction = scoring.Classify(probability)
	result.Probability = math.Round(probability*10000) / 10000

	result.Stage = StageLogging
	entry := models.LogPredictionRequest{
		PatientID:    &result.PatientID,
		Prediction:   &result.Prediction,
		Probability:  &result.Probability,
		ModelVersion: result.ModelVersion,
	}
	if _, err := r.api.LogPrediction(ctx, entry); err != nil {
		result.Stage = StageFailed
		result.Reason = ReasonLogFailed
		return result, err
	}
	result.Logged = true
	result.Stage = StageDone

	logger.Log.WithFields(result.Fields()).Info("prediction pipeline completed")
	return result, nil
}
