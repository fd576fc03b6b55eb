package patient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/common/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/patients", h.handleCreatePatient).Methods(http.MethodPost)
	r.HandleFunc("/patients/latest", h.handleGetLatest).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id:[0-9]+}", h.handleGetPatient).Methods(http.MethodGet)
	r.HandleFunc("/patients/{id:[0-9]+}", h.handleUpdatePatient).Methods(http.MethodPut)
	r.HandleFunc("/patients/{id:[0-9]+}", h.handleDeletePatient).Methods(http.MethodDelete)
	r.HandleFunc("/patients/{id:[0-9]+}/predictions", h.handleListPredictions).Methods(http.MethodGet)
	r.HandleFunc("/predictions", h.handleLogPrediction).Methods(http.MethodPost)
	r.HandleFunc("/audit", h.handleListAudit).Methods(http.MethodGet)
}

func (h *Handler) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var fields models.ClinicalFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	record, err := h.service.CreatePatient(r.Context(), fields)
	if err != nil {
		h.writeError(w, err, "failed to create patient")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetLatest(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to get latest patient")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	record, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to get patient")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	var fields models.ClinicalFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	record, err := h.service.UpdatePatient(r.Context(), id, fields)
	if err != nil {
		h.writeError(w, err, "failed to update patient")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	if err := h.service.DeletePatient(r.Context(), id); err != nil {
		h.writeError(w, err, "failed to delete patient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogPrediction(w http.ResponseWriter, r *http.Request) {
	var req models.LogPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	entry, err := h.service.LogPrediction(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "failed to log prediction")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	logs, err := h.service.ListPredictions(r.Context(), id, parseLimit(r, 50))
	if err != nil {
		h.writeError(w, err, "failed to list predictions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": logs})
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListAudit(r.Context(), parseLimit(r, 100))
	if err != nil {
		h.writeError(w, err, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		http.Error(w, ErrPatientNotFound.Error(), http.StatusNotFound)
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Log.WithError(err).Error(message)
		http.Error(w, message, http.StatusInternalServerError)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
