package patient

import (
	"context"
	"testing"

	"github.com/cardiosense-ai/platform/pkg/common/models"
)

type capturingPublisher struct {
	types []string
}

func (p *capturingPublisher) PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error {
	p.types = append(p.types, eventType)
	return nil
}

func TestServicePublishesEvents(t *testing.T) {
	store := newFakeStore()
	events := &capturingPublisher{}
	service := NewService(store, NewValidator(DefaultBounds()), nil, events)
	ctx := context.Background()

	record, err := service.CreatePatient(ctx, validFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred, prob := 1, 0.7
	if _, err := service.LogPrediction(ctx, models.LogPredictionRequest{
		PatientID: &record.PatientID, Prediction: &pred, Probability: &prob, ModelVersion: "v1.0",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events.types) != 2 || events.types[0] != "patient.created" || events.types[1] != "prediction.logged" {
		t.Fatalf("unexpected events: %v", events.types)
	}
}

func TestServiceRejectsBeforeStore(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, NewValidator(DefaultBounds()), nil, nil)

	fields := validFields()
	fields.Age = nil
	if _, err := service.CreatePatient(context.Background(), fields); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("store must not be touched on validation failure")
	}
}
