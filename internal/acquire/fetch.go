package acquire

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/sourcebundle/internal/bundle"
	"git.home.luguber.info/inful/sourcebundle/internal/forge"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/logfields"
	"git.home.luguber.info/inful/sourcebundle/internal/metrics"
	"git.home.luguber.info/inful/sourcebundle/internal/observability"
	"git.home.luguber.info/inful/sourcebundle/internal/textnorm"
)

// fetchCandidates walks the filtered candidate list in tree order and fetches
// bodies one at a time until a budget cap stops it or the list runs out.
// Per-file failures are recorded as skips and never abort the pass; only
// context cancellation does.
func fetchCandidates(ctx context.Context, fetcher ContentFetcher, candidates []forge.TreeNode, recorder metrics.Recorder) (*Outcome, error) {
	out := &Outcome{}
	var b budget

	for _, node := range candidates {
		if b.exhausted() {
			out.CapHit = b.byteCapReached()
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.RuntimeError("acquisition cancelled").
				WithCause(err).
				WithContext("path", node.Path).
				Build()
		}

		body, err := fetcher.Fetch(ctx, node.Path)
		if err != nil {
			reason := SkipFetchFailed
			if stderrors.Is(err, forge.ErrContentDecode) {
				reason = SkipDecodeFailed
			}
			out.Results = append(out.Results, FetchResult{Path: node.Path, Reason: reason})
			recorder.IncFetchResult(reason.metricLabel())
			observability.DebugContext(ctx, "skipping file",
				logfields.Path(node.Path),
				logfields.SkipReason(string(reason)),
				logfields.Error(err))
			continue
		}

		// Bodies enter the bundle normalized, so budget accounting uses the
		// normalized length.
		body = textnorm.String(body)

		// The declared size may have been absent or understated; the actual
		// length is authoritative. Oversized bodies do not count against the
		// file budget.
		if len(body) >= MaxFileBytes {
			out.Results = append(out.Results, FetchResult{Path: node.Path, Reason: SkipOversize})
			recorder.IncFetchResult(metrics.FetchSkippedOversize)
			observability.DebugContext(ctx, "skipping oversized file",
				logfields.Path(node.Path),
				logfields.Bytes(len(body)))
			continue
		}

		if !b.fits(len(body)) {
			out.Results = append(out.Results, FetchResult{Path: node.Path, Reason: SkipBudget})
			recorder.IncFetchResult(metrics.FetchSkippedBudget)
			out.CapHit = true
			break
		}

		// Content points at a per-iteration copy, not into out.Files, so
		// later appends cannot leave earlier results aliasing a stale
		// backing array.
		content := bundle.FileContent{Path: node.Path, Body: body}
		b.admit(len(body))
		out.Files = append(out.Files, content)
		out.Results = append(out.Results, FetchResult{Path: node.Path, Content: &content})
		recorder.IncFetchResult(metrics.FetchIncluded)
	}

	out.Bytes = b.bytes
	return out, nil
}
