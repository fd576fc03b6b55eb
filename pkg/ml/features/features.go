package features

import (
	"fmt"
	"sort"
)

// CanonicalOrder is the fixed feature order shared by training and
// inference. The scorer's coefficients are positional; changing this list
// without retraining silently corrupts every prediction.
var CanonicalOrder = [...]string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// Count is the canonical vector length.
const Count = len(CanonicalOrder)

// InvalidRecordError reports a record that cannot be turned into a feature
// vector.
type InvalidRecordError struct {
	Field  string
	Reason string
}

func (e InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: field %q %s", e.Field, e.Reason)
}

// Builder maps raw clinical records into normalized feature vectors using
// scaler parameters fixed at fit time.
type Builder struct {
	scaler *StandardScaler
}

func NewBuilder(scaler *StandardScaler) (*Builder, error) {
	if scaler == nil {
		return nil, fmt.Errorf("builder requires a fitted scaler")
	}
	if len(scaler.Mean) != Count || len(scaler.Std) != Count {
		return nil, fmt.Errorf("scaler dimension %d does not match feature count %d", len(scaler.Mean), Count)
	}
	return &Builder{scaler: scaler}, nil
}

// Vector builds the normalized vector for a single record. With only one
// row there is no batch to impute medians from, so every canonical field
// must be present.
func (b *Builder) Vector(record map[string]float64) ([]float64, error) {
	raw := make([]float64, Count)
	for i, name := range CanonicalOrder {
		value, ok := record[name]
		if !ok {
			return nil, InvalidRecordError{Field: name, Reason: "missing and cannot be imputed from a single record"}
		}
		raw[i] = value
	}
	return b.scaler.Transform(raw)
}

// Matrix builds normalized vectors for a batch. Missing values are filled
// with the per-field median computed over the batch itself; a field absent
// from every record cannot be imputed.
func (b *Builder) Matrix(records []map[string]float64) ([][]float64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	medians, err := fieldMedians(records)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, 0, len(records))
	for _, record := range records {
		raw := make([]float64, Count)
		for i, name := range CanonicalOrder {
			if value, ok := record[name]; ok {
				raw[i] = value
			} else {
				raw[i] = medians[name]
			}
		}
		vector, err := b.scaler.Transform(raw)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func fieldMedians(records []map[string]float64) (map[string]float64, error) {
	medians := make(map[string]float64, Count)
	for _, name := range CanonicalOrder {
		var values []float64
		for _, record := range records {
			if value, ok := record[name]; ok {
				values = append(values, value)
			}
		}
		if len(values) == 0 {
			return nil, InvalidRecordError{Field: name, Reason: "missing from every record in the batch"}
		}
		medians[name] = median(values)
	}
	return medians, nil
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
