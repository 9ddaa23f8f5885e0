package acquire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"git.home.luguber.info/inful/sourcebundle/internal/eventstore"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/locator"
)

// fakeGitHub is a minimal stand-in for the REST API plus the raw-content
// host, both served from one httptest server.
type fakeGitHub struct {
	t       *testing.T
	repo    map[string]any
	entries []map[string]any
	trunc   bool
	files   map[string]string // path -> body, served raw and via contents
}

func (f *fakeGitHub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, f.repo)
	})
	mux.HandleFunc("/repos/acme/widgets/git/trees/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, map[string]any{"sha": "abc", "tree": f.entries, "truncated": f.trunc})
	})
	mux.HandleFunc("/repos/acme/widgets/contents/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/repos/acme/widgets/contents/")
		body, ok := f.files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(f.t, w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(body)),
		})
	})
	// raw-content host form: /{owner}/{repo}/{branch}/{path}
	mux.HandleFunc("/acme/widgets/main/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/acme/widgets/main/")
		body, ok := f.files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding fake response: %v", err)
	}
}

func blobEntry(path string, size int) map[string]any {
	e := map[string]any{"path": path, "type": "blob"}
	if size >= 0 {
		e["size"] = size
	}
	return e
}

func newTestService(srv *httptest.Server, opts Options) *Service {
	opts.APIBaseURL = srv.URL
	opts.RawBaseURL = srv.URL
	return NewService(opts)
}

func TestAcquireRepository(t *testing.T) {
	fake := &fakeGitHub{
		t:    t,
		repo: map[string]any{"name": "widgets", "default_branch": "main", "private": false},
		entries: []map[string]any{
			blobEntry("main.go", 100),
			blobEntry("src/app.py", -1), // size unknown
			blobEntry("logo.png", 50),
			blobEntry("node_modules/dep/index.js", 80),
			{"path": "src", "type": "tree"},
		},
		files: map[string]string{
			"main.go":    strings.Repeat("package main\n", 10),
			"src/app.py": strings.Repeat("import os\n", 10),
			// Present remotely but must never be requested:
			"logo.png":                  "binary",
			"node_modules/dep/index.js": "junk",
		},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	svc := newTestService(srv, Options{})
	res, err := svc.Acquire(t.Context(), Request{Locator: "https://github.com/acme/widgets"})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if res.Kind != locator.KindRepository {
		t.Errorf("Kind = %v, want repository", res.Kind)
	}
	if res.Files != 2 {
		t.Errorf("Files = %d, want 2", res.Files)
	}
	if !strings.HasPrefix(res.Bundle, "// Repository: acme/widgets\n// Analyzed Files: 2\n// Truncated: No\n") {
		t.Errorf("unexpected header:\n%s", res.Bundle[:min(len(res.Bundle), 120)])
	}
	if got := strings.Count(res.Bundle, "--- START OF FILE:"); got != res.Files {
		t.Errorf("marker count = %d, want Analyzed Files %d", got, res.Files)
	}
	if strings.Contains(res.Bundle, "logo.png") || strings.Contains(res.Bundle, "node_modules") {
		t.Error("denylisted paths leaked into the bundle")
	}
	// Enumeration order preserved.
	if strings.Index(res.Bundle, "main.go") > strings.Index(res.Bundle, "src/app.py") {
		t.Error("bundle files out of tree order")
	}
}

func TestAcquireRepositoryAuthenticatedUsesContentsAPI(t *testing.T) {
	var contentsCalls, rawCalls int
	fake := &fakeGitHub{
		t:    t,
		repo: map[string]any{"name": "widgets", "default_branch": "main", "private": true},
		entries: []map[string]any{
			blobEntry("main.go", -1),
			blobEntry("util.go", -1),
		},
		files: map[string]string{
			"main.go": strings.Repeat("package main\n", 10),
			"util.go": strings.Repeat("package util\n", 10),
		},
	}
	inner := fake.handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/contents/"):
			contentsCalls++
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				t.Errorf("contents call missing bearer credential")
			}
		case strings.HasPrefix(r.URL.Path, "/acme/widgets/main/"):
			rawCalls++
		}
		inner.ServeHTTP(w, r)
	}))
	defer srv.Close()

	svc := newTestService(srv, Options{})
	res, err := svc.Acquire(t.Context(), Request{
		Locator: "https://github.com/acme/widgets",
		Token:   "ghp_secret",
	})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if contentsCalls != 2 || rawCalls != 0 {
		t.Errorf("contents=%d raw=%d, want all fetches on the authenticated path", contentsCalls, rawCalls)
	}
	if !strings.Contains(res.Bundle, "// Repository: acme/widgets (Private)\n") {
		t.Error("private repository not flagged in header")
	}
}

func TestAcquireRepositoryNoSuitableFiles(t *testing.T) {
	fake := &fakeGitHub{
		t:    t,
		repo: map[string]any{"name": "widgets", "default_branch": "main"},
		entries: []map[string]any{
			blobEntry("logo.png", 50),
			blobEntry("README.md", 200),
		},
		files: map[string]string{},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	svc := newTestService(srv, Options{})
	_, err := svc.Acquire(t.Context(), Request{Locator: "github.com/acme/widgets"})
	requireCategory(t, err, errors.CategoryNoCandidates)
}

func TestAcquireRepositoryAllFetchesFail(t *testing.T) {
	fake := &fakeGitHub{
		t:       t,
		repo:    map[string]any{"name": "widgets", "default_branch": "main"},
		entries: []map[string]any{blobEntry("gone.go", -1)},
		files:   map[string]string{},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	svc := newTestService(srv, Options{})
	_, err := svc.Acquire(t.Context(), Request{Locator: "acme/widgets"})
	requireCategory(t, err, errors.CategoryNoContent)
}

func TestAcquireRepositoryNotFoundHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	t.Run("anonymous", func(t *testing.T) {
		svc := newTestService(srv, Options{})
		_, err := svc.Acquire(t.Context(), Request{Locator: "acme/widgets"})
		classified := requireCategory(t, err, errors.CategoryNotFound)
		if !strings.Contains(classified.Message(), "private") {
			t.Errorf("message %q lacks private-repository hint", classified.Message())
		}
	})

	t.Run("with credential", func(t *testing.T) {
		svc := newTestService(srv, Options{})
		_, err := svc.Acquire(t.Context(), Request{Locator: "acme/widgets", Token: "tok"})
		classified := requireCategory(t, err, errors.CategoryNotFound)
		if strings.Contains(classified.Message(), "private") {
			t.Errorf("message %q carries private hint despite credential", classified.Message())
		}
	})
}

func TestAcquireBlobPassthrough(t *testing.T) {
	const body = "raw blob body\nwith bytes < 100 and no wrapping"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/widgets/main/src/app.go" {
			t.Errorf("unexpected raw path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	// The classifier drops the /blob/ segment, yielding a URL back on the
	// fake server, which the pipeline fetches directly.
	svc := newTestService(srv, Options{})
	res, err := svc.Acquire(t.Context(), Request{
		Locator: srv.URL + "/acme/widgets/blob/main/src/app.go",
	})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if res.Kind != locator.KindBlob {
		t.Errorf("Kind = %v, want blob", res.Kind)
	}
	if res.Bundle != body {
		t.Errorf("Bundle = %q, want verbatim body (round-trip identity)", res.Bundle)
	}
	if strings.Contains(res.Bundle, "--- START OF FILE") || strings.Contains(res.Bundle, "// Repository:") {
		t.Error("blob output must carry no header and no markers")
	}
}

func TestAcquireEmitsHistoryEvents(t *testing.T) {
	fake := &fakeGitHub{
		t:       t,
		repo:    map[string]any{"name": "widgets", "default_branch": "main"},
		entries: []map[string]any{blobEntry("main.go", -1)},
		files:   map[string]string{"main.go": strings.Repeat("package main\n", 20)},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	store, err := eventstore.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	svc := newTestService(srv, Options{Store: store})
	res, err := svc.Acquire(t.Context(), Request{Locator: "acme/widgets"})
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	evs, err := store.GetByAcquisitionID(t.Context(), res.AcquisitionID)
	if err != nil {
		t.Fatalf("GetByAcquisitionID() error = %v", err)
	}
	var types []string
	for _, ev := range evs {
		types = append(types, ev.Type())
	}
	want := []string{"AcquisitionStarted", "TreeEnumerated", "AcquisitionCompleted"}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("event types = %v, want %v", types, want)
	}
}

func requireCategory(t *testing.T, err error, want errors.ErrorCategory) *errors.ClassifiedError {
	t.Helper()
	if err == nil {
		t.Fatal("error = nil, want classified error")
	}
	classified, ok := errors.AsClassified(err)
	if !ok {
		t.Fatalf("error %v is not classified", err)
	}
	if classified.Category() != want {
		t.Fatalf("category = %v, want %v", classified.Category(), want)
	}
	return classified
}
