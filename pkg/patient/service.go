package patient

import (
	"context"
	"fmt"
	"math"

	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/common/models"
	"github.com/cardiosense-ai/platform/pkg/observability/metrics"
)

// Store is the persistence surface the service depends on. Implemented by
// *Repository over Postgres; tests substitute an in-memory fake.
type Store interface {
	CreatePatient(ctx context.Context, fields models.ClinicalFields) (models.PatientRecord, error)
	GetLatest(ctx context.Context) (models.PatientRecord, error)
	GetPatient(ctx context.Context, id int64) (models.PatientRecord, error)
	UpdatePatient(ctx context.Context, id int64, fields models.ClinicalFields) (models.PatientRecord, error)
	DeletePatient(ctx context.Context, id int64) error
	CreatePrediction(ctx context.Context, entry models.PredictionLog) (models.PredictionLog, error)
	ListPredictions(ctx context.Context, patientID int64, limit int) ([]models.PredictionLog, error)
	AppendAudit(ctx context.Context, entry models.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// EventPublisher pushes domain events to the bus. Satisfied by
// kafka.Producer; nil disables publishing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

const eventSource = "patient-service"

type Service struct {
	store     Store
	validator *Validator
	cache     *LatestCache
	events    EventPublisher
}

func NewService(store Store, validator *Validator, cache *LatestCache, events EventPublisher) *Service {
	return &Service{store: store, validator: validator, cache: cache, events: events}
}

func (s *Service) CreatePatient(ctx context.Context, fields models.ClinicalFields) (models.PatientRecord, error) {
	if err := s.validator.ValidateClinical(fields); err != nil {
		return models.PatientRecord{}, err
	}
	record, err := s.store.CreatePatient(ctx, fields)
	if err != nil {
		return models.PatientRecord{}, err
	}
	s.cache.Invalidate(ctx)
	metrics.IncPatientCreated()

	s.audit(ctx, "patient_created", "patient", record.PatientID, map[string]interface{}{"age": record.Age, "sex": record.Sex})
	s.publish(ctx, "patient.created", map[string]interface{}{"patient_id": record.PatientID})
	return record, nil
}

func (s *Service) GetLatest(ctx context.Context) (models.PatientRecord, error) {
	if record, ok := s.cache.Get(ctx); ok {
		metrics.IncLatestCacheHit()
		return record, nil
	}
	metrics.IncLatestCacheMiss()

	record, err := s.store.GetLatest(ctx)
	if err != nil {
		return models.PatientRecord{}, err
	}
	s.cache.Set(ctx, record)
	return record, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (models.PatientRecord, error) {
	return s.store.GetPatient(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, fields models.ClinicalFields) (models.PatientRecord, error) {
	if err := s.validator.ValidateClinical(fields); err != nil {
		return models.PatientRecord{}, err
	}
	record, err := s.store.UpdatePatient(ctx, id, fields)
	if err != nil {
		return models.PatientRecord{}, err
	}
	s.cache.Invalidate(ctx)
	metrics.IncPatientUpdated()

	s.audit(ctx, "patient_updated", "patient", id, nil)
	return record, nil
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	if err := s.store.DeletePatient(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	metrics.IncPatientDeleted()

	s.audit(ctx, "patient_deleted", "patient", id, nil)
	return nil
}

// LogPrediction validates and persists one scoring outcome. The
// probability is stored rounded to 4 decimal places.
func (s *Service) LogPrediction(ctx context.Context, req models.LogPredictionRequest) (models.PredictionLog, error) {
	if err := s.validator.ValidatePredictionLog(req); err != nil {
		return models.PredictionLog{}, err
	}
	entry := models.PredictionLog{
		PatientID:    *req.PatientID,
		Prediction:   *req.Prediction,
		Probability:  math.Round(*req.Probability*10000) / 10000,
		ModelVersion: req.ModelVersion,
	}
	logged, err := s.store.CreatePrediction(ctx, entry)
	if err != nil {
		return models.PredictionLog{}, err
	}
	metrics.IncPredictionLogged()

	s.audit(ctx, "prediction_logged", "prediction", logged.ID, map[string]interface{}{
		"patient_id":    logged.PatientID,
		"prediction":    logged.Prediction,
		"probability":   logged.Probability,
		"model_version": logged.ModelVersion,
	})
	s.publish(ctx, "prediction.logged", map[string]interface{}{
		"patient_id":    logged.PatientID,
		"prediction":    logged.Prediction,
		"probability":   logged.Probability,
		"model_version": logged.ModelVersion,
	})
	return logged, nil
}

func (s *Service) ListPredictions(ctx context.Context, patientID int64, limit int) ([]models.PredictionLog, error) {
	return s.store.ListPredictions(ctx, patientID, limit)
}

func (s *Service) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	return s.store.ListAudit(ctx, limit)
}

func (s *Service) audit(ctx context.Context, action, entity string, entityID int64, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	err := s.store.AppendAudit(ctx, models.AuditEntry{
		Actor:    "system",
		Action:   action,
		Entity:   entity,
		EntityID: fmt.Sprintf("%d", entityID),
		Payload:  payload,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("action", action).Warn("failed to append audit entry")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish event")
	}
}
