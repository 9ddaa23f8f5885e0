package acquire

import (
	"git.home.luguber.info/inful/sourcebundle/internal/bundle"
	"git.home.luguber.info/inful/sourcebundle/internal/metrics"
)

// SkipReason explains why a candidate was not included. The values double as
// metrics labels, so they are stable identifiers rather than prose.
type SkipReason string

const (
	// SkipFetchFailed marks a non-success response or transport error.
	SkipFetchFailed SkipReason = "fetch_failed"
	// SkipDecodeFailed marks an undecodable contents-endpoint envelope.
	SkipDecodeFailed SkipReason = "decode_failed"
	// SkipOversize marks a body whose actual length exceeded the per-file
	// cap after fetching (the declared size was absent or understated).
	SkipOversize SkipReason = "oversize"
	// SkipBudget marks a body that would have pushed the aggregate byte
	// total past its cap.
	SkipBudget SkipReason = "budget"
)

// FetchResult is the discriminated outcome for one candidate: either an
// included file content or a skip with its reason. Collecting these instead
// of toggling a flag keeps the accept/skip policy testable independently of
// the iteration loop.
type FetchResult struct {
	Path    string
	Content *bundle.FileContent // nil when skipped
	Reason  SkipReason          // empty when included
}

// Included reports whether the candidate made it into the bundle.
func (r FetchResult) Included() bool {
	return r.Content != nil
}

func (r SkipReason) metricLabel() metrics.FetchResultLabel {
	switch r {
	case SkipDecodeFailed:
		return metrics.FetchSkippedDecode
	case SkipOversize:
		return metrics.FetchSkippedOversize
	case SkipBudget:
		return metrics.FetchSkippedBudget
	default:
		return metrics.FetchSkippedStatus
	}
}

// Outcome aggregates one fetch pass over the candidate list.
type Outcome struct {
	// Results holds one entry per attempted candidate, in tree order.
	Results []FetchResult
	// Files are the included contents in fetch order, ready for assembly.
	Files []bundle.FileContent
	// Bytes is the sum of included body lengths.
	Bytes int
	// CapHit reports that the aggregate byte cap stopped fetching.
	// Exhausting the file-count budget alone does not set it.
	CapHit bool
}
