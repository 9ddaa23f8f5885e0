package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sourcebundle/internal/acquire"
	"git.home.luguber.info/inful/sourcebundle/internal/eventstore"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/locator"
	"git.home.luguber.info/inful/sourcebundle/internal/server/responses"
)

type fakeAcquirer struct {
	res       *acquire.Result
	err       error
	gotToken  string
	gotString string
}

func (f *fakeAcquirer) Acquire(_ context.Context, req acquire.Request) (*acquire.Result, error) {
	f.gotString = req.Locator
	f.gotToken = req.Token
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func TestHandleCreateBundle(t *testing.T) {
	fake := &fakeAcquirer{res: &acquire.Result{
		AcquisitionID: "id-1",
		Kind:          locator.KindRepository,
		Repository:    "acme/widgets",
		Files:         3,
		Bytes:         1234,
		Bundle:        "// Repository: acme/widgets\n...",
	}}
	h := NewAcquireHandlers(fake, time.Minute)

	body := `{"locator":"https://github.com/acme/widgets","token":"tok"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bundles", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCreateBundle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://github.com/acme/widgets", fake.gotString)
	assert.Equal(t, "tok", fake.gotToken)

	var resp responses.BundleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "id-1", resp.AcquisitionID)
	assert.Equal(t, 3, resp.Files)
	assert.Contains(t, resp.Bundle, "acme/widgets")
}

func TestHandleCreateBundleErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid locator", errors.LocatorError("locator is empty").Build(), http.StatusBadRequest},
		{"rate limited", errors.RateLimitError("rate limit exceeded").Build(), http.StatusTooManyRequests},
		{"not found", errors.NotFoundError("repository not found").Build(), http.StatusNotFound},
		{"remote failure", errors.RemoteAPIError("bad gateway upstream").Build(), http.StatusBadGateway},
		{"no content", errors.NoContentError("nothing retrieved").Build(), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAcquireHandlers(&fakeAcquirer{err: tt.err}, time.Minute)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bundles",
				strings.NewReader(`{"locator":"x"}`))
			rec := httptest.NewRecorder()
			h.HandleCreateBundle(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHandleCreateBundleRejectsGet(t *testing.T) {
	h := NewAcquireHandlers(&fakeAcquirer{}, time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bundles", nil)
	rec := httptest.NewRecorder()
	h.HandleCreateBundle(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateBundleBadBody(t *testing.T) {
	h := NewAcquireHandlers(&fakeAcquirer{}, time.Minute)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bundles", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.HandleCreateBundle(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeHistory struct {
	summaries []*eventstore.AcquisitionSummary
}

func (f *fakeHistory) GetHistory() []*eventstore.AcquisitionSummary { return f.summaries }
func (f *fakeHistory) GetAcquisition(id string) (*eventstore.AcquisitionSummary, bool) {
	for _, s := range f.summaries {
		if s.AcquisitionID == id {
			return s, true
		}
	}
	return nil, false
}

func TestHandleHistoryList(t *testing.T) {
	h := NewHistoryHandlers(&fakeHistory{summaries: []*eventstore.AcquisitionSummary{
		{AcquisitionID: "b", Status: "completed"},
		{AcquisitionID: "a", Status: "failed"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/acquisitions", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp responses.AcquisitionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "b", resp.Acquisitions[0].AcquisitionID)
}

func TestHandleHistoryGet(t *testing.T) {
	h := NewHistoryHandlers(&fakeHistory{summaries: []*eventstore.AcquisitionSummary{
		{AcquisitionID: "abc", Repository: "acme/widgets", Status: "completed"},
	}})

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/acquisitions/abc", nil)
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var summary eventstore.AcquisitionSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, "acme/widgets", summary.Repository)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/acquisitions/nope", nil)
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

type fakeRuntime struct {
	start time.Time
}

func (f *fakeRuntime) GetStatus() string       { return "running" }
func (f *fakeRuntime) GetStartTime() time.Time { return f.start }
func (f *fakeRuntime) Counts() (int, int)      { return 7, 2 }

func TestHandleStatus(t *testing.T) {
	h := NewMonitoringHandlers(&fakeRuntime{start: time.Now().Add(-time.Minute)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp responses.DaemonStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp.Status)
	assert.Equal(t, 7, resp.AcquisitionsComplete)
	assert.Equal(t, 2, resp.AcquisitionsFailed)
	assert.Greater(t, resp.Uptime, 0.0)
}

func TestHandleHealth(t *testing.T) {
	h := NewMonitoringHandlers(&fakeRuntime{start: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp responses.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}
