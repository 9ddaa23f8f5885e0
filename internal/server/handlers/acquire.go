package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/acquire"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/server/responses"
)

// Acquirer runs one acquisition. Satisfied by *acquire.Service; narrowed to
// an interface so handler tests can fake the pipeline.
type Acquirer interface {
	Acquire(ctx context.Context, req acquire.Request) (*acquire.Result, error)
}

// AcquireHandlers serves acquisition-triggering endpoints.
type AcquireHandlers struct {
	service      Acquirer
	timeout      time.Duration
	errorAdapter *errors.HTTPErrorAdapter
}

// NewAcquireHandlers creates acquisition handlers. The timeout bounds one
// acquisition triggered over HTTP.
func NewAcquireHandlers(service Acquirer, timeout time.Duration) *AcquireHandlers {
	return &AcquireHandlers{
		service:      service,
		timeout:      timeout,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// bundleRequest is the POST /api/v1/bundles payload. The token is request
// scoped: it is handed to the pipeline and forgotten, never stored or logged.
type bundleRequest struct {
	Locator string `json:"locator"`
	Token   string `json:"token,omitempty"`
}

// HandleCreateBundle runs one acquisition and returns the assembled bundle.
func (h *AcquireHandlers) HandleCreateBundle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "POST").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	var req bundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid request body").
			WithCause(err).
			Build())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.service.Acquire(ctx, acquire.Request{Locator: req.Locator, Token: req.Token})
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	payload := &responses.BundleResponse{
		AcquisitionID: res.AcquisitionID,
		Kind:          string(res.Kind),
		Repository:    res.Repository,
		Files:         res.Files,
		Bytes:         res.Bytes,
		Truncated:     res.Truncated,
		TreeTruncated: res.TreeTruncated,
		Bundle:        res.Bundle,
	}
	if err := writeJSON(w, http.StatusOK, payload); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to write bundle response").Build())
	}
}
