// Package bundle renders retrieved file contents into the bounded text
// artifact: a three-line diagnostic header followed by path-delimited file
// sections in fetch order. The format is consumed by tooling downstream, so
// the header lines and markers are load-bearing, not cosmetic.
package bundle

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

// minContentBytes is the smallest sum of file-body bytes considered a usable
// bundle. Anything below it fails instead of returning a near-empty success.
const minContentBytes = 100

// FileContent is one successfully retrieved repository file.
type FileContent struct {
	Path string
	Body string
}

// Assembly carries the assembler inputs for one acquisition.
type Assembly struct {
	Owner   string
	Repo    string
	Private bool

	// Files in fetch order; order is preserved verbatim in the output.
	Files []FileContent

	// CapHit reports that the aggregate byte budget stopped fetching.
	// File-count exhaustion alone does not set it.
	CapHit bool

	// TreeTruncated reports the server-side incomplete-listing flag. It is
	// rendered as a separate note, never conflated with CapHit.
	TreeTruncated bool
}

// Assemble renders the bundle text or fails when the retrieved content is
// too small to be useful.
func Assemble(a Assembly) (string, error) {
	total := 0
	for _, f := range a.Files {
		total += len(f.Body)
	}
	if total < minContentBytes {
		if len(a.Files) == 0 {
			return "", errors.NoContentError(
				fmt.Sprintf("no file contents could be retrieved from %s/%s", a.Owner, a.Repo)).
				Build()
		}
		return "", errors.NoContentError(
			fmt.Sprintf("content retrieved from %s/%s is too small to be useful", a.Owner, a.Repo)).
			WithContext("bytes", total).
			Build()
	}

	var b strings.Builder
	b.WriteString("// Repository: " + a.Owner + "/" + a.Repo)
	if a.Private {
		b.WriteString(" (Private)")
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "// Analyzed Files: %d\n", len(a.Files))
	if a.CapHit {
		b.WriteString("// Truncated: Yes (Size Limit)\n")
	} else {
		b.WriteString("// Truncated: No\n")
	}
	if a.TreeTruncated {
		b.WriteString("// Note: repository tree was truncated by the server; listing is incomplete\n")
	}

	for _, f := range a.Files {
		fmt.Fprintf(&b, "\n\n--- START OF FILE: %s ---\n%s\n--- END OF FILE: %s ---\n", f.Path, f.Body, f.Path)
	}
	return b.String(), nil
}
