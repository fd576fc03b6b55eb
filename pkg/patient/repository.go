package patient

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cardiosense-ai/platform/pkg/common/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type patientModel struct {
	PatientID int64     `gorm:"primaryKey;autoIncrement;column:patient_id"`
	Age       int       `gorm:"column:age"`
	Sex       int       `gorm:"column:sex"`
	CP        int       `gorm:"column:cp"`
	Trestbps  int       `gorm:"column:trestbps"`
	Chol      int       `gorm:"column:chol"`
	FBS       int       `gorm:"column:fbs"`
	Restecg   int       `gorm:"column:restecg"`
	Thalach   int       `gorm:"column:thalach"`
	Exang     int       `gorm:"column:exang"`
	Oldpeak   float64   `gorm:"column:oldpeak"`
	Slope     int       `gorm:"column:slope"`
	CA        int       `gorm:"column:ca"`
	Thal      int       `gorm:"column:thal"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (patientModel) TableName() string { return "patients" }

type predictionModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PatientID    int64     `gorm:"column:patient_id;index"`
	Prediction   int       `gorm:"column:prediction"`
	Probability  float64   `gorm:"column:probability"`
	ModelVersion string    `gorm:"column:model_version"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (predictionModel) TableName() string { return "predictions" }

type auditLogModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Actor     string         `gorm:"column:actor"`
	Action    string         `gorm:"column:action"`
	Entity    string         `gorm:"column:entity"`
	EntityID  string         `gorm:"column:entity_id"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	CreatedAt time.Time      `gorm:"column:created_at"`
}

func (auditLogModel) TableName() string { return "audit_logs" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&patientModel{},
		&predictionModel{},
		&auditLogModel{},
	)
}

func (r *Repository) CreatePatient(ctx context.Context, fields models.ClinicalFields) (models.PatientRecord, error) {
	row := &patientModel{CreatedAt: time.Now().UTC()}
	applyClinicalFields(row, fields)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return models.PatientRecord{}, err
	}
	return toRecord(row), nil
}

// GetLatest returns the newest record; ties on created_at break toward the
// highest identifier so the choice is deterministic.
func (r *Repository) GetLatest(ctx context.Context) (models.PatientRecord, error) {
	var row patientModel
	err := r.db.WithContext(ctx).Order("created_at DESC, patient_id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PatientRecord{}, ErrPatientNotFound
	}
	if err != nil {
		return models.PatientRecord{}, err
	}
	return toRecord(&row), nil
}

func (r *Repository) GetPatient(ctx context.Context, id int64) (models.PatientRecord, error) {
	var row patientModel
	err := r.db.WithContext(ctx).First(&row, "patient_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PatientRecord{}, ErrPatientNotFound
	}
	if err != nil {
		return models.PatientRecord{}, err
	}
	return toRecord(&row), nil
}

// UpdatePatient overwrites the clinical columns. patient_id and created_at
// are never touched.
func (r *Repository) UpdatePatient(ctx context.Context, id int64, fields models.ClinicalFields) (models.PatientRecord, error) {
	var row patientModel
	err := r.db.WithContext(ctx).First(&row, "patient_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PatientRecord{}, ErrPatientNotFound
	}
	if err != nil {
		return models.PatientRecord{}, err
	}

	applyClinicalFields(&row, fields)
	if err := r.db.WithContext(ctx).Model(&patientModel{}).Where("patient_id = ?", id).Updates(map[string]interface{}{
		"age": row.Age, "sex": row.Sex, "cp": row.CP, "trestbps": row.Trestbps,
		"chol": row.Chol, "fbs": row.FBS, "restecg": row.Restecg, "thalach": row.Thalach,
		"exang": row.Exang, "oldpeak": row.Oldpeak, "slope": row.Slope, "ca": row.CA, "thal": row.Thal,
	}).Error; err != nil {
		return models.PatientRecord{}, err
	}
	return toRecord(&row), nil
}

func (r *Repository) DeletePatient(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&patientModel{}, "patient_id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// CreatePrediction inserts a log entry after confirming the referenced
// patient exists. A failed insert leaves no entry behind.
func (r *Repository) CreatePrediction(ctx context.Context, entry models.PredictionLog) (models.PredictionLog, error) {
	var exists patientModel
	err := r.db.WithContext(ctx).Select("patient_id").First(&exists, "patient_id = ?", entry.PatientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PredictionLog{}, ErrPatientNotFound
	}
	if err != nil {
		return models.PredictionLog{}, err
	}

	row := &predictionModel{
		PatientID:    entry.PatientID,
		Prediction:   entry.Prediction,
		Probability:  entry.Probability,
		ModelVersion: entry.ModelVersion,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return models.PredictionLog{}, err
	}
	entry.ID = row.ID
	entry.CreatedAt = row.CreatedAt
	return entry, nil
}

func (r *Repository) ListPredictions(ctx context.Context, patientID int64, limit int) ([]models.PredictionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []predictionModel
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]models.PredictionLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, models.PredictionLog{
			ID:           row.ID,
			PatientID:    row.PatientID,
			Prediction:   row.Prediction,
			Probability:  row.Probability,
			ModelVersion: row.ModelVersion,
			CreatedAt:    row.CreatedAt,
		})
	}
	return logs, nil
}

func (r *Repository) AppendAudit(ctx context.Context, entry models.AuditEntry) error {
	payload, _ := json.Marshal(entry.Payload)
	row := &auditLogModel{
		Actor:     entry.Actor,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Payload:   datatypes.JSON(payload),
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []auditLogModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]models.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.AuditEntry{
			ID:        row.ID,
			Actor:     row.Actor,
			Action:    row.Action,
			Entity:    row.Entity,
			EntityID:  row.EntityID,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Payload) > 0 {
			var payload map[string]interface{}
			_ = json.Unmarshal(row.Payload, &payload)
			entry.Payload = payload
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func applyClinicalFields(row *patientModel, fields models.ClinicalFields) {
	if fields.Age != nil {
		row.Age = *fields.Age
	}
	if fields.Sex != nil {
		row.Sex = *fields.Sex
	}
	if fields.CP != nil {
		row.CP = *fields.CP
	}
	if fields.Trestbps != nil {
		row.Trestbps = *fields.Trestbps
	}
	if fields.Chol != nil {
		row.Chol = *fields.Chol
	}
	if fields.FBS != nil {
		row.FBS = *fields.FBS
	}
	if fields.Restecg != nil {
		row.Restecg = *fields.Restecg
	}
	if fields.Thalach != nil {
		row.Thalach = *fields.Thalach
	}
	if fields.Exang != nil {
		row.Exang = *fields.Exang
	}
	if fields.Oldpeak != nil {
		row.Oldpeak = *fields.Oldpeak
	}
	if fields.Slope != nil {
		row.Slope = *fields.Slope
	}
	if fields.CA != nil {
		row.CA = *fields.CA
	}
	if fields.Thal != nil {
		row.Thal = *fields.Thal
	}
}

func toRecord(row *patientModel) models.PatientRecord {
	return models.PatientRecord{
		PatientID: row.PatientID,
		Age:       row.Age,
		Sex:       row.Sex,
		CP:        row.CP,
		Trestbps:  row.Trestbps,
		Chol:      row.Chol,
		FBS:       row.FBS,
		Restecg:   row.Restecg,
		Thalach:   row.Thalach,
		Exang:     row.Exang,
		Oldpeak:   row.Oldpeak,
		Slope:     row.Slope,
		CA:        row.CA,
		Thal:      row.Thal,
		CreatedAt: row.CreatedAt,
	}
}
