package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cardiosense-ai/platform/pkg/common/models"
)

// ErrNoPatient means the store holds no patient records at all.
var ErrNoPatient = errors.New("no patient records in store")

// ErrUnknownPatient means the prediction log referenced an identifier the
// store does not know.
var ErrUnknownPatient = errors.New("prediction references unknown patient")

// StoreUnavailableError wraps a transport-level failure reaching the
// patient service.
type StoreUnavailableError struct {
	Op    string
	Cause error
}

func (e StoreUnavailableError) Error() string {
	return fmt.Sprintf("patient service unreachable during %s: %v", e.Op, e.Cause)
}

func (e StoreUnavailableError) Unwrap() error {
	return e.Cause
}

// PatientAPI is the slice of the patient service the pipeline consumes.
type PatientAPI interface {
	GetLatest(ctx context.Context) (models.PatientRecord, error)
	LogPrediction(ctx context.Context, entry models.LogPredictionRequest) (models.PredictionLog, error)
}

// Client reaches the patient service over HTTP. Each call is an
// independent request; there is no cross-call transaction and no retry.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

func (c *Client) GetLatest(ctx context.Context) (models.PatientRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/patients/latest", nil)
	if err != nil {
		return models.PatientRecord{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.PatientRecord{}, StoreUnavailableError{Op: "get latest patient", Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var record models.PatientRecord
		if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
			return models.PatientRecord{}, fmt.Errorf("decode latest patient: %w", err)
		}
		return record, nil
	case http.StatusNotFound:
		return models.PatientRecord{}, ErrNoPatient
	default:
		return models.PatientRecord{}, fmt.Errorf("get latest patient: %s", readError(resp))
	}
}

func (c *Client) LogPrediction(ctx context.Context, entry models.LogPredictionRequest) (models.PredictionLog, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return models.PredictionLog{}, fmt.Errorf("marshal prediction log: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(payload))
	if err != nil {
		return models.PredictionLog{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.PredictionLog{}, StoreUnavailableError{Op: "log prediction", Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		var logged models.PredictionLog
		if err := json.NewDecoder(resp.Body).Decode(&logged); err != nil {
			return models.PredictionLog{}, fmt.Errorf("decode prediction log: %w", err)
		}
		return logged, nil
	case http.StatusNotFound:
		return models.PredictionLog{}, ErrUnknownPatient
	default:
		return models.PredictionLog{}, fmt.Errorf("log prediction: %s", readError(resp))
	}
}

func readError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}
