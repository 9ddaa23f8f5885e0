package acquire

// Fixed acquisition policy. A handful of very large files and a flood of
// tiny files are both failure modes, so the count and byte caps are
// independent; the per-file cap exists to exclude pathological minified or
// generated files that slipped past the suffix denylist.
const (
	// MaxFiles caps how many files one acquisition may include.
	MaxFiles = 20

	// MaxFileBytes caps a single file body. Checked against the declared
	// size before fetching when the tree carries one, and against the
	// actual length after fetching otherwise.
	MaxFileBytes = 150_000

	// MaxTotalBytes caps the sum of all included file bodies.
	MaxTotalBytes = 800_000
)

// budget tracks the running counters for one acquisition. Fetching is
// strictly sequential, so plain ints suffice.
type budget struct {
	files int
	bytes int
}

// exhausted reports whether either cap has been reached. Reaching a cap is a
// normal terminal condition for the fetch loop, not an error.
func (b *budget) exhausted() bool {
	return b.files >= MaxFiles || b.bytes >= MaxTotalBytes
}

// byteCapReached reports whether the aggregate byte cap specifically stopped
// fetching; only this cap marks the bundle as truncated.
func (b *budget) byteCapReached() bool {
	return b.bytes >= MaxTotalBytes
}

// fits reports whether a body of n bytes can be admitted without pushing the
// aggregate past its cap.
func (b *budget) fits(n int) bool {
	return b.bytes+n <= MaxTotalBytes
}

// admit records one included file of n bytes.
func (b *budget) admit(n int) {
	b.files++
	b.bytes += n
}
