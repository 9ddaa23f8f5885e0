package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/eventstore"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/server/responses"
)

// History is the read model the handlers serve. Satisfied by
// *eventstore.AcquisitionHistoryProjection.
type History interface {
	GetHistory() []*eventstore.AcquisitionSummary
	GetAcquisition(acquisitionID string) (*eventstore.AcquisitionSummary, bool)
}

// HistoryHandlers serves the acquisition history endpoints.
type HistoryHandlers struct {
	history      History
	errorAdapter *errors.HTTPErrorAdapter
}

// NewHistoryHandlers creates history handlers around a projection.
func NewHistoryHandlers(history History) *HistoryHandlers {
	return &HistoryHandlers{
		history:      history,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleList serves GET /api/v1/acquisitions (newest first, bounded).
func (h *HistoryHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			Build())
		return
	}

	summaries := h.history.GetHistory()
	payload := &responses.AcquisitionListResponse{
		Acquisitions: summaries,
		Count:        len(summaries),
		Timestamp:    time.Now().UTC(),
	}
	if err := writeJSON(w, http.StatusOK, payload); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to write history response").Build())
	}
}

// HandleGet serves GET /api/v1/acquisitions/{id}.
func (h *HistoryHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			Build())
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/acquisitions/")
	if id == "" || strings.Contains(id, "/") {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("missing acquisition id").
			Build())
		return
	}

	summary, ok := h.history.GetAcquisition(id)
	if !ok {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("acquisition not found").
			WithContext("acquisition_id", id).
			Build())
		return
	}

	if err := writeJSON(w, http.StatusOK, summary); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to write acquisition response").Build())
	}
}
