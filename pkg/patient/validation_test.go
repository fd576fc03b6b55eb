package patient

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cardiosense-ai/platform/pkg/common/models"
)

func intPtr(v int) *int             { return &v }
func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func validFields() models.ClinicalFields {
	return models.ClinicalFields{
		Age: intPtr(63), Sex: intPtr(1), CP: intPtr(3), Trestbps: intPtr(145),
		Chol: intPtr(233), FBS: intPtr(1), Restecg: intPtr(0), Thalach: intPtr(150),
		Exang: intPtr(0), Oldpeak: float64Ptr(2.3), Slope: intPtr(0), CA: intPtr(0),
		Thal: intPtr(1),
	}
}

func TestValidateClinicalAccepts(t *testing.T) {
	v := NewValidator(DefaultBounds())
	if err := v.ValidateClinical(validFields()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateClinicalZeroIsLegitimate(t *testing.T) {
	v := NewValidator(DefaultBounds())
	fields := validFields()
	fields.Sex = intPtr(0)
	fields.CA = intPtr(0)
	if err := v.ValidateClinical(fields); err != nil {
		t.Fatalf("zero codes should validate: %v", err)
	}
}

func TestValidateClinicalMissingField(t *testing.T) {
	v := NewValidator(DefaultBounds())
	fields := validFields()
	fields.Chol = nil

	err := v.ValidateClinical(fields)
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "chol") {
		t.Fatalf("error should name the missing field: %v", err)
	}
}

func TestValidateClinicalOutOfRange(t *testing.T) {
	v := NewValidator(DefaultBounds())
	cases := []struct {
		name   string
		mutate func(*models.ClinicalFields)
	}{
		{"age too high", func(f *models.ClinicalFields) { f.Age = intPtr(200) }},
		{"age zero", func(f *models.ClinicalFields) { f.Age = intPtr(0) }},
		{"sex out of range", func(f *models.ClinicalFields) { f.Sex = intPtr(2) }},
		{"trestbps too low", func(f *models.ClinicalFields) { f.Trestbps = intPtr(10) }},
		{"oldpeak negative", func(f *models.ClinicalFields) { f.Oldpeak = float64Ptr(-0.5) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			tc.mutate(&fields)
			if err := v.ValidateClinical(fields); !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidatePredictionLog(t *testing.T) {
	v := NewValidator(DefaultBounds())

	valid := models.LogPredictionRequest{
		PatientID: int64Ptr(1), Prediction: intPtr(1), Probability: float64Ptr(0.8123), ModelVersion: "v1.0",
	}
	if err := v.ValidatePredictionLog(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boundary := valid
	boundary.Probability = float64Ptr(1.0)
	if err := v.ValidatePredictionLog(boundary); err != nil {
		t.Fatalf("probability 1.0 should validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*models.LogPredictionRequest)
	}{
		{"missing patient_id", func(r *models.LogPredictionRequest) { r.PatientID = nil }},
		{"missing prediction", func(r *models.LogPredictionRequest) { r.Prediction = nil }},
		{"prediction out of set", func(r *models.LogPredictionRequest) { r.Prediction = intPtr(2) }},
		{"missing probability", func(r *models.LogPredictionRequest) { r.Probability = nil }},
		{"probability above one", func(r *models.LogPredictionRequest) { r.Probability = float64Ptr(1.5) }},
		{"probability negative", func(r *models.LogPredictionRequest) { r.Probability = float64Ptr(-0.1) }},
		{"missing model_version", func(r *models.LogPredictionRequest) { r.ModelVersion = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			if err := v.ValidatePredictionLog(req); !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLoadBoundsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounds.yaml")
	content := "fields:\n  - name: age\n    min: 18\n    max: 90\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write bounds file: %v", err)
	}

	cfg, err := LoadBounds(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Fields) != 1 || cfg.Fields[0].Name != "age" || cfg.Fields[0].Max != 90 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	v := NewValidator(cfg)
	fields := validFields()
	fields.Age = intPtr(95)
	if err := v.ValidateClinical(fields); !IsValidationError(err) {
		t.Fatalf("expected custom bound to reject age 95, got %v", err)
	}
}

func TestLoadBoundsDefaults(t *testing.T) {
	cfg, err := LoadBounds("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Fields) != 13 {
		t.Fatalf("expected 13 default bounds, got %d", len(cfg.Fields))
	}
}

func TestLoadBoundsMissingFileFallsBack(t *testing.T) {
	cfg, err := LoadBounds(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(cfg.Fields) != 13 {
		t.Fatalf("expected default bounds on fallback, got %d", len(cfg.Fields))
	}
}
