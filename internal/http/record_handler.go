package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/training-dashboard/internal/application"
)

type recordService interface {
	ListRecords(ctx context.Context, token string) ([]application.Record, error)
	CreateRecord(ctx context.Context, token string, input application.RecordInput) (application.Record, error)
	UpdateRecord(ctx context.Context, token string, id uint32, input application.RecordInput) (application.Record, error)
	DeleteRecord(ctx context.Context, token string, id uint32) error
}

type RecordHandler struct {
	service   recordService
	responder responder
	logger    *slog.Logger
}

func NewRecordHandler(service recordService, logger *slog.Logger) *RecordHandler {
	base := defaultLogger(logger)
	return &RecordHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RecordHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RecordHandler", operation, attrs...)
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	records, err := h.service.ListRecords(r.Context(), extractTokenFromRequest(r))
	if err != nil {
		logger.ErrorContext(r.Context(), "record list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(records)).InfoContext(r.Context(), "records listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRecordDTOs(records))
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode record request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")
	record, err := h.service.CreateRecord(r.Context(), extractTokenFromRequest(r), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "record creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("record_id", record.ID).InfoContext(r.Context(), "record created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRecordDTO(record))
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := recordIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid record id for update", "raw_id", chi.URLParam(r, "id"))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "record_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode record update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "record_id", id)
	record, err := h.service.UpdateRecord(r.Context(), extractTokenFromRequest(r), id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "record update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "record updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRecordDTO(record))
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := recordIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid record id for delete", "raw_id", chi.URLParam(r, "id"))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	logger := h.log(r.Context(), "Delete", "record_id", id)
	if err := h.service.DeleteRecord(r.Context(), extractTokenFromRequest(r), id); err != nil {
		logger.ErrorContext(r.Context(), "record delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "record deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func recordIDFromRequest(r *http.Request) (uint32, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint32(id), true
}

type recordRequest struct {
	Name     string `json:"name"`
	Training string `json:"training"`
	DueDate  string `json:"duedate"`
	Status   string `json:"status"`
}

func (r recordRequest) toInput() application.RecordInput {
	return application.RecordInput{
		SubjectName:  r.Name,
		TrainingName: r.Training,
		DueDate:      r.DueDate,
		Status:       r.Status,
	}
}

type recordDTO struct {
	ID        uint32 `json:"id"`
	Name      string `json:"name"`
	Training  string `json:"training"`
	DueDate   string `json:"duedate"`
	Status    string `json:"status"`
	CreatedBy string `json:"created_by"`
}

func toRecordDTO(record application.Record) recordDTO {
	return recordDTO{
		ID:        record.ID,
		Name:      record.SubjectName,
		Training:  record.TrainingName,
		DueDate:   record.DueDate,
		Status:    string(record.Status),
		CreatedBy: record.CreatedBy,
	}
}

func toRecordDTOs(records []application.Record) []recordDTO {
	out := make([]recordDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordDTO(record))
	}
	return out
}
