// Package acquire runs the acquisition pipeline: classify a locator, resolve
// repository metadata, enumerate and filter the tree, fetch candidate files
// under budget, and assemble the bounded text bundle. One Acquire call is one
// independent pipeline pass; concurrent calls share no budget or rate-limit
// state.
package acquire

import (
	"context"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sourcebundle/internal/bundle"
	"git.home.luguber.info/inful/sourcebundle/internal/events"
	"git.home.luguber.info/inful/sourcebundle/internal/eventstore"
	"git.home.luguber.info/inful/sourcebundle/internal/filter"
	"git.home.luguber.info/inful/sourcebundle/internal/forge"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/locator"
	"git.home.luguber.info/inful/sourcebundle/internal/logfields"
	"git.home.luguber.info/inful/sourcebundle/internal/metrics"
	"git.home.luguber.info/inful/sourcebundle/internal/observability"
)

// Pipeline stage names used in logs, metrics and failure events.
const (
	StageClassify = "classify"
	StageMetadata = "metadata"
	StageTree     = "tree"
	StageFetch    = "fetch"
	StageAssemble = "assemble"
)

// Request is one acquisition call.
type Request struct {
	// Locator is the user-supplied string naming the remote resource.
	Locator string

	// Token is an optional bearer credential. It is used for every remote
	// call of this acquisition or none of them, and is never persisted or
	// logged.
	Token string
}

// Result is a successful acquisition.
type Result struct {
	AcquisitionID string
	Kind          locator.Kind
	Repository    string
	Files         int
	Bytes         int
	Truncated     bool
	TreeTruncated bool
	Bundle        string
}

// Options wires the service's collaborators. Everything is optional: the
// zero value yields a service with no-op metrics, no history and no
// eventing, talking to the public GitHub endpoints.
type Options struct {
	Recorder  metrics.Recorder
	Store     eventstore.Store
	Publisher events.Publisher

	// Endpoint overrides, mainly for tests against local fakes.
	APIBaseURL string
	RawBaseURL string
}

// Service is the single entry point of the acquisition pipeline.
type Service struct {
	recorder   metrics.Recorder
	store      eventstore.Store
	publisher  events.Publisher
	apiBaseURL string
	rawBaseURL string
}

// NewService creates an acquisition service.
func NewService(opts Options) *Service {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Service{
		recorder:   opts.Recorder,
		store:      opts.Store,
		publisher:  opts.Publisher,
		apiBaseURL: opts.APIBaseURL,
		rawBaseURL: opts.RawBaseURL,
	}
}

// Acquire runs one full pipeline pass and returns the assembled bundle or a
// classified failure. Blob and gist locators bypass enumeration entirely and
// return the raw body verbatim.
func (s *Service) Acquire(ctx context.Context, req Request) (res *Result, err error) {
	id := uuid.NewString()
	ctx = observability.WithAcquisitionID(ctx, id)
	ctx, span := observability.StartSpan(ctx, "acquisition")
	defer func() {
		span.RecordError(err)
		span.End(ctx)
	}()
	start := time.Now()

	var loc *locator.Locator
	if err := s.stage(ctx, StageClassify, func(context.Context) error {
		var cerr error
		loc, cerr = locator.Classify(req.Locator)
		return cerr
	}); err != nil {
		return nil, s.fail(ctx, id, StageClassify, "", "", start, err)
	}
	span.SetAttribute("locator.kind", string(loc.Kind))

	observability.InfoContext(ctx, "acquisition started",
		logfields.Locator(loc.Raw),
		logfields.LocatorKind(string(loc.Kind)))
	if ev, err := eventstore.NewAcquisitionStarted(id, eventstore.AcquisitionStartedMeta{
		Kind:          string(loc.Kind),
		Repository:    loc.Repository(),
		Authenticated: req.Token != "",
	}); err == nil {
		s.append(ctx, ev)
	}

	client, err := forge.NewGitHubClient(forge.Options{
		Token:      req.Token,
		APIBaseURL: s.apiBaseURL,
		RawBaseURL: s.rawBaseURL,
	})
	if err != nil {
		return nil, s.fail(ctx, id, StageClassify, loc.Kind, loc.Repository(), start, err)
	}

	if loc.Kind == locator.KindRepository {
		res, err = s.acquireRepository(ctx, id, client, loc, start)
	} else {
		res, err = s.acquireSingleFile(ctx, id, client, loc, start)
	}
	if err != nil {
		return nil, err
	}

	s.complete(ctx, res, start)
	return res, nil
}

// stage runs one pipeline step inside a span, tags its log lines with the
// stage name and records the step's duration.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.StartStageSpan(ctx, name)
	start := time.Now()
	err := fn(ctx)
	s.recorder.ObserveStageDuration(name, time.Since(start))
	span.RecordError(err)
	span.End(ctx)
	return err
}

// acquireSingleFile fetches one blob or gist URL directly. The body is
// returned exactly as the host served it: no header, no markers, no
// normalization.
func (s *Service) acquireSingleFile(ctx context.Context, id string, client *forge.GitHubClient, loc *locator.Locator, start time.Time) (*Result, error) {
	var body string
	if err := s.stage(ctx, StageFetch, func(ctx context.Context) error {
		var ferr error
		body, ferr = client.FetchRaw(ctx, loc.RawURL)
		return ferr
	}); err != nil {
		return nil, s.fail(ctx, id, StageFetch, loc.Kind, loc.RawURL, start, err)
	}

	return &Result{
		AcquisitionID: id,
		Kind:          loc.Kind,
		Repository:    loc.RawURL,
		Files:         1,
		Bytes:         len(body),
		Bundle:        body,
	}, nil
}

// acquireRepository runs the full enumerate/filter/fetch/assemble pipeline.
func (s *Service) acquireRepository(ctx context.Context, id string, client *forge.GitHubClient, loc *locator.Locator, start time.Time) (*Result, error) {
	repo := loc.Repository()

	var info *forge.RepositoryInfo
	if err := s.stage(ctx, StageMetadata, func(ctx context.Context) error {
		var merr error
		info, merr = client.GetRepository(ctx, loc.Owner, loc.Repo)
		return merr
	}); err != nil {
		return nil, s.fail(ctx, id, StageMetadata, loc.Kind, repo, start, err)
	}

	var tree *forge.RepositoryTree
	if err := s.stage(ctx, StageTree, func(ctx context.Context) error {
		var terr error
		tree, terr = client.GetTree(ctx, info.Owner, info.Repo, info.DefaultBranch)
		return terr
	}); err != nil {
		return nil, s.fail(ctx, id, StageTree, loc.Kind, repo, start, err)
	}
	if tree.Truncated {
		observability.WarnContext(ctx, "repository tree truncated by server",
			logfields.Repository(repo),
			logfields.Branch(info.DefaultBranch))
	}

	candidates := filter.Candidates(tree.Nodes, MaxFileBytes)
	if ev, err := eventstore.NewTreeEnumerated(id, repo, len(tree.Nodes), len(candidates), tree.Truncated); err == nil {
		s.append(ctx, ev)
	}
	if len(candidates) == 0 {
		return nil, s.fail(ctx, id, StageTree, loc.Kind, repo, start,
			errors.NoCandidatesError("no suitable source files found in "+repo).
				WithContext("total_nodes", len(tree.Nodes)).
				Build())
	}

	var outcome *Outcome
	if err := s.stage(ctx, StageFetch, func(ctx context.Context) error {
		var ferr error
		outcome, ferr = fetchCandidates(ctx, NewContentFetcher(client, info), candidates, s.recorder)
		return ferr
	}); err != nil {
		return nil, s.fail(ctx, id, StageFetch, loc.Kind, repo, start, err)
	}

	var text string
	if err := s.stage(ctx, StageAssemble, func(context.Context) error {
		var aerr error
		text, aerr = bundle.Assemble(bundle.Assembly{
			Owner:         info.Owner,
			Repo:          info.Repo,
			Private:       info.Private,
			Files:         outcome.Files,
			CapHit:        outcome.CapHit,
			TreeTruncated: tree.Truncated,
		})
		return aerr
	}); err != nil {
		return nil, s.fail(ctx, id, StageAssemble, loc.Kind, repo, start, err)
	}

	return &Result{
		AcquisitionID: id,
		Kind:          loc.Kind,
		Repository:    repo,
		Files:         len(outcome.Files),
		Bytes:         outcome.Bytes,
		Truncated:     outcome.CapHit,
		TreeTruncated: tree.Truncated,
		Bundle:        text,
	}, nil
}

// complete records the success across metrics, history and eventing.
func (s *Service) complete(ctx context.Context, res *Result, start time.Time) {
	d := time.Since(start)
	kind := string(res.Kind)

	s.recorder.ObserveAcquisitionDuration(kind, d)
	s.recorder.IncAcquisitionOutcome(kind, metrics.OutcomeSuccess)
	s.recorder.ObserveBundleFiles(res.Files)
	s.recorder.ObserveBundleBytes(res.Bytes)

	if ev, err := eventstore.NewAcquisitionCompleted(res.AcquisitionID, kind, res.Repository, res.Files, res.Bytes, res.Truncated, d); err == nil {
		s.append(ctx, ev)
	}

	if s.publisher != nil {
		if err := s.publisher.AcquisitionCompleted(ctx, events.CompletedEvent{
			AcquisitionID: res.AcquisitionID,
			Kind:          kind,
			Repository:    res.Repository,
			Files:         res.Files,
			Bytes:         res.Bytes,
			Truncated:     res.Truncated,
			Timestamp:     time.Now().UTC(),
		}); err != nil {
			observability.WarnContext(ctx, "event publish failed", logfields.Error(err))
		}
	}

	observability.InfoContext(ctx, "acquisition completed",
		logfields.Repository(res.Repository),
		logfields.Files(res.Files),
		logfields.Bytes(res.Bytes),
		logfields.DurationMS(float64(d.Milliseconds())))
}

// fail records a terminal failure and returns the error unchanged so callers
// keep the classification.
func (s *Service) fail(ctx context.Context, id, stage string, kind locator.Kind, repo string, start time.Time, err error) error {
	d := time.Since(start)

	s.recorder.ObserveAcquisitionDuration(string(kind), d)
	s.recorder.IncAcquisitionOutcome(string(kind), metrics.OutcomeFailed)

	category := string(errors.CategoryInternal)
	if classified, ok := errors.AsClassified(err); ok {
		category = string(classified.Category())
	}

	if ev, everr := eventstore.NewAcquisitionFailed(id, stage, category, err.Error(), d); everr == nil {
		s.append(ctx, ev)
	}

	if s.publisher != nil {
		if perr := s.publisher.AcquisitionFailed(ctx, events.FailedEvent{
			AcquisitionID: id,
			Kind:          string(kind),
			Repository:    repo,
			Stage:         stage,
			Category:      category,
			Error:         err.Error(),
			Timestamp:     time.Now().UTC(),
		}); perr != nil {
			observability.WarnContext(ctx, "event publish failed", logfields.Error(perr))
		}
	}

	observability.ErrorContext(ctx, "acquisition failed",
		logfields.Stage(stage),
		logfields.Error(err),
		logfields.DurationMS(float64(d.Milliseconds())))
	return err
}

// append persists one history event; store failures degrade to a warning
// because history is an operational convenience, never pipeline-critical.
func (s *Service) append(ctx context.Context, ev eventstore.Event) {
	if s.store == nil {
		return
	}
	if err := s.store.Append(ctx, ev.AcquisitionID(), ev.Type(), ev.Payload(), ev.Metadata()); err != nil {
		observability.WarnContext(ctx, "history event append failed", logfields.Error(err))
	}
}
