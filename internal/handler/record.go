package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/recordbox/recordbox/internal/handler/dto"
	"github.com/recordbox/recordbox/internal/repository"
)

// Pagination defaults and bounds for record listing.
const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// RecordHandler handles record CRUD. All routes behind RequireUser.
type RecordHandler struct {
	logger *slog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(logger *slog.Logger) *RecordHandler {
	return &RecordHandler{logger: logger}
}

// List handles GET /api/v1/records/?skip=&limit=.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	skip := 0
	if s := query.Get("skip"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			skip = parsed
		}
	}

	limit := defaultListLimit
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxListLimit {
			limit = parsed
		}
	}

	sess := repository.SessionFromContext(r.Context())
	records, err := sess.ListRecords(r.Context(), skip, limit)
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecordListResponse(records))
}

// Create handles POST /api/v1/records/.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if err := h.validateRecord(w, req); err != nil {
		return
	}

	sess := repository.SessionFromContext(r.Context())
	record, err := sess.CreateRecord(r.Context(), req.Title, req.Img)
	if err != nil {
		h.logger.Error("failed to create record", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("record_created", "record_id", record.ID)

	writeJSON(w, http.StatusCreated, dto.ToRecordResponse(record))
}

// Get handles GET /api/v1/records/{recordID}/.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	sess := repository.SessionFromContext(r.Context())
	record, err := sess.GetRecord(r.Context(), id)
	if err != nil {
		h.handleRepositoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(record))
}

// Update handles PUT /api/v1/records/{recordID}/.
// Full replacement: every editable field must be present and valid.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var req dto.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if err := h.validateRecord(w, req); err != nil {
		return
	}

	sess := repository.SessionFromContext(r.Context())
	record, err := sess.UpdateRecord(r.Context(), id, req.Title, req.Img)
	if err != nil {
		h.handleRepositoryError(w, err)
		return
	}

	h.logger.Info("record_updated", "record_id", record.ID)

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(record))
}

// Patch handles PATCH /api/v1/records/{recordID}/.
// Applies only the fields present in the body.
func (h *RecordHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var req dto.RecordPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	if req.Title != nil && *req.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Title is required")
		return
	}
	if req.Img != nil {
		if err := validateImg(*req.Img); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid img value")
			return
		}
	}

	sess := repository.SessionFromContext(r.Context())
	record, err := sess.PatchRecord(r.Context(), id, req.Title, req.Img)
	if err != nil {
		h.handleRepositoryError(w, err)
		return
	}

	h.logger.Info("record_updated", "record_id", record.ID)

	writeJSON(w, http.StatusOK, dto.ToRecordResponse(record))
}

// Delete handles DELETE /api/v1/records/{recordID}/.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	sess := repository.SessionFromContext(r.Context())
	if err := sess.DeleteRecord(r.Context(), id); err != nil {
		h.handleRepositoryError(w, err)
		return
	}

	h.logger.Info("record_deleted", "record_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// recordID parses the path identifier, writing a 422 when it is not numeric.
func (h *RecordHandler) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid record id")
		return 0, false
	}
	return id, true
}

// validateRecord enforces the create/replace policy: title present, img
// present and shaped like an absolute URL.
func (h *RecordHandler) validateRecord(w http.ResponseWriter, req dto.RecordRequest) error {
	if req.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Title is required")
		return ErrMissingTitle
	}
	if err := validateImg(req.Img); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid img value")
		return err
	}
	return nil
}

// handleRepositoryError maps repository errors to HTTP responses.
func (h *RecordHandler) handleRepositoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrRecordNotFound) {
		writeDetail(w, http.StatusNotFound, "Record not found")
		return
	}
	h.logger.Error("internal_error", "error", err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}
