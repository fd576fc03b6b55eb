package patient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cardiosense-ai/platform/pkg/common/models"
	"github.com/cardiosense-ai/platform/pkg/ml/features"
)

type FieldBound struct {
	Name string  `yaml:"name" json:"name"`
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
}

type BoundsConfig struct {
	Fields []FieldBound `yaml:"fields" json:"fields"`
}

// LoadBounds reads clinical validation bounds from a YAML file, falling
// back to the compiled-in defaults when no path is configured.
func LoadBounds(path string) (BoundsConfig, error) {
	if path == "" {
		return DefaultBounds(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultBounds(), err
	}

	var cfg BoundsConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return BoundsConfig{}, err
	}
	if len(cfg.Fields) == 0 {
		return BoundsConfig{}, errors.New("no validation bounds configured")
	}
	return cfg, nil
}

func DefaultBounds() BoundsConfig {
	return BoundsConfig{Fields: []FieldBound{
		{Name: "age", Min: 1, Max: 120},
		{Name: "sex", Min: 0, Max: 1},
		{Name: "cp", Min: 0, Max: 4},
		{Name: "trestbps", Min: 50, Max: 300},
		{Name: "chol", Min: 50, Max: 700},
		{Name: "fbs", Min: 0, Max: 1},
		{Name: "restecg", Min: 0, Max: 2},
		{Name: "thalach", Min: 40, Max: 250},
		{Name: "exang", Min: 0, Max: 1},
		{Name: "oldpeak", Min: 0, Max: 10},
		{Name: "slope", Min: 0, Max: 3},
		{Name: "ca", Min: 0, Max: 4},
		{Name: "thal", Min: 0, Max: 7},
	}}
}

type Validator struct {
	bounds map[string]FieldBound
}

func NewValidator(cfg BoundsConfig) *Validator {
	bounds := make(map[string]FieldBound, len(cfg.Fields))
	for _, b := range cfg.Fields {
		bounds[b.Name] = b
	}
	return &Validator{bounds: bounds}
}

// ValidateClinical requires all 13 canonical fields present and inside
// their configured bounds.
func (v *Validator) ValidateClinical(fields models.ClinicalFields) error {
	values := clinicalValues(fields)
	for _, name := range features.CanonicalOrder {
		value, ok := values[name]
		if !ok || value == nil {
			return newValidationError(fmt.Errorf("field %q is required", name))
		}
		if bound, ok := v.bounds[name]; ok {
			if *value < bound.Min || *value > bound.Max {
				return newValidationError(fmt.Errorf("field %q value %v outside [%v, %v]", name, *value, bound.Min, bound.Max))
			}
		}
	}
	return nil
}

// ValidatePredictionLog enforces the typed log-entry contract: prediction
// in {0,1}, probability in [0,1], non-empty version tag.
func (v *Validator) ValidatePredictionLog(req models.LogPredictionRequest) error {
	if req.PatientID == nil {
		return newValidationError(errors.New("patient_id is required"))
	}
	if req.Prediction == nil {
		return newValidationError(errors.New("prediction is required"))
	}
	if *req.Prediction != 0 && *req.Prediction != 1 {
		return newValidationError(fmt.Errorf("prediction %d is not 0 or 1", *req.Prediction))
	}
	if req.Probability == nil {
		return newValidationError(errors.New("probability is required"))
	}
	if *req.Probability < 0 || *req.Probability > 1 {
		return newValidationError(fmt.Errorf("probability %v outside [0, 1]", *req.Probability))
	}
	if req.ModelVersion == "" {
		return newValidationError(errors.New("model_version is required"))
	}
	return nil
}

func clinicalValues(f models.ClinicalFields) map[string]*float64 {
	values := make(map[string]*float64, features.Count)
	putInt := func(name string, v *int) {
		if v == nil {
			values[name] = nil
			return
		}
		fv := float64(*v)
		values[name] = &fv
	}
	putInt("age", f.Age)
	putInt("sex", f.Sex)
	putInt("cp", f.CP)
	putInt("trestbps", f.Trestbps)
	putInt("chol", f.Chol)
	putInt("fbs", f.FBS)
	putInt("restecg", f.Restecg)
	putInt("thalach", f.Thalach)
	putInt("exang", f.Exang)
	if f.Oldpeak == nil {
		values["oldpeak"] = nil
	} else {
		v := *f.Oldpeak
		values["oldpeak"] = &v
	}
	putInt("slope", f.Slope)
	putInt("ca", f.CA)
	putInt("thal", f.Thal)
	return values
}
