package forge

import "git.home.luguber.info/inful/sourcebundle/internal/foundation"

// NodeTypeBlob marks a tree entry that is a regular file. Other types
// (subtrees, submodule commits) are never fetched.
const NodeTypeBlob = "blob"

// RepositoryInfo is the metadata resolved once per acquisition and used to
// construct every subsequent URL.
type RepositoryInfo struct {
	Owner         string
	Repo          string
	DefaultBranch string
	Private       bool
}

// FullName returns the owner/repo form.
func (r *RepositoryInfo) FullName() string {
	return r.Owner + "/" + r.Repo
}

// TreeNode is one entry from the recursive listing. Size is the declared
// byte count when the listing carries one; absent means unknown until
// fetched, never zero.
type TreeNode struct {
	Path string
	Type string
	Size foundation.Option[int64]
}

// RepositoryTree is a decoded recursive listing. Truncated reports the
// server-side flag for oversized repositories; the listing is then
// incomplete but still usable.
type RepositoryTree struct {
	Nodes     []TreeNode
	Truncated bool
}
