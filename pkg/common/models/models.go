package models

import "time"

// PatientRecord is the canonical 13-field clinical record. The identifier
// and creation timestamp are assigned by the store and never change after
// creation.
type PatientRecord struct {
	PatientID int64     `json:"patient_id"`
	Age       int       `json:"age"`
	Sex       int       `json:"sex"`
	CP        int       `json:"cp"`
	Trestbps  int       `json:"trestbps"`
	Chol      int       `json:"chol"`
	FBS       int       `json:"fbs"`
	Restecg   int       `json:"restecg"`
	Thalach   int       `json:"thalach"`
	Exang     int       `json:"exang"`
	Oldpeak   float64   `json:"oldpeak"`
	Slope     int       `json:"slope"`
	CA        int       `json:"ca"`
	Thal      int       `json:"thal"`
	CreatedAt time.Time `json:"created_at"`
}

// ClinicalFeatures maps the record to feature-name keyed values. Keys match
// the canonical feature order used at model-fit time.
func (p PatientRecord) ClinicalFeatures() map[string]float64 {
	return map[string]float64{
		"age":      float64(p.Age),
		"sex":      float64(p.Sex),
		"cp":       float64(p.CP),
		"trestbps": float64(p.Trestbps),
		"chol":     float64(p.Chol),
		"fbs":      float64(p.FBS),
		"restecg":  float64(p.Restecg),
		"thalach":  float64(p.Thalach),
		"exang":    float64(p.Exang),
		"oldpeak":  p.Oldpeak,
		"slope":    float64(p.Slope),
		"ca":       float64(p.CA),
		"thal":     float64(p.Thal),
	}
}

// ClinicalFields carries the 13 clinical measurements of a create or update
// request. Pointer fields distinguish absent values from legitimate zeros
// (sex, cp, and most flags use 0 as a real code).
type ClinicalFields struct {
	Age      *int     `json:"age"`
	Sex      *int     `json:"sex"`
	CP       *int     `json:"cp"`
	Trestbps *int     `json:"trestbps"`
	Chol     *int     `json:"chol"`
	FBS      *int     `json:"fbs"`
	Restecg  *int     `json:"restecg"`
	Thalach  *int     `json:"thalach"`
	Exang    *int     `json:"exang"`
	Oldpeak  *float64 `json:"oldpeak"`
	Slope    *int     `json:"slope"`
	CA       *int     `json:"ca"`
	Thal     *int     `json:"thal"`
}

// PredictionLog links a patient identifier to one scoring outcome. Rows are
// insert-only.
type PredictionLog struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"patient_id"`
	Prediction   int       `json:"prediction"`
	Probability  float64   `json:"probability"`
	ModelVersion string    `json:"model_version"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogPredictionRequest is the wire form of a prediction log entry.
type LogPredictionRequest struct {
	PatientID    *int64   `json:"patient_id"`
	Prediction   *int     `json:"prediction"`
	Probability  *float64 `json:"probability"`
	ModelVersion string   `json:"model_version"`
}

// AuditEntry records a mutation against the store.
type AuditEntry struct {
	ID        int64                  `json:"id"`
	Actor     string                 `json:"actor"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entity_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Event is the envelope published to the event bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}
