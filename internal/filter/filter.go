// Package filter decides which repository paths are worth fetching. The
// policy favors plain human-authored source text: binary assets, generated
// bundles, lockfiles and declarative-data artifacts are rejected up front so
// the fetch budget is spent on code.
package filter

import (
	"strings"

	"git.home.luguber.info/inful/sourcebundle/internal/forge"
)

// deniedSuffixes rejects paths by case-insensitive suffix match. Grouped by
// artifact family; a path matching any entry is excluded.
var deniedSuffixes = []string{
	// images
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".svg", ".webp", ".tiff",
	// archives
	".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar", ".jar",
	// fonts
	".ttf", ".otf", ".woff", ".woff2", ".eot",
	// media
	".mp3", ".mp4", ".wav", ".ogg", ".avi", ".mov", ".mkv", ".webm", ".flac",
	// compiled and binary artifacts
	".exe", ".dll", ".so", ".dylib", ".a", ".o", ".class", ".pyc", ".wasm",
	".bin", ".dat", ".pdf",
	// generated and minified bundles
	".min.js", ".min.css", ".bundle.js", ".map",
	// lockfiles and dependency manifests
	".lock", "yarn.lock", "package-lock.json", "pnpm-lock.yaml", "go.sum",
	// declarative data and prose
	".json", ".md", ".css", ".csv",
}

// deniedDirectories excludes whole subtrees by path component. These hold
// dependencies, build output or VCS state rather than project source.
var deniedDirectories = []string{
	"node_modules",
	"vendor",
	"dist",
	"build",
	"out",
	"target",
	".git",
	".hg",
	".svn",
	".next",
	".cache",
	"__pycache__",
	".venv",
	"coverage",
}

// SourceLike reports whether a repo-relative path passes both the suffix and
// directory denylists.
func SourceLike(path string) bool {
	return allowedSuffix(path) && allowedDirectory(path)
}

func allowedSuffix(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range deniedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

func allowedDirectory(path string) bool {
	for _, part := range strings.Split(path, "/") {
		for _, denied := range deniedDirectories {
			if part == denied {
				return false
			}
		}
	}
	return true
}

// Candidates returns the tree's fetch-worthy file nodes in enumeration order.
// Non-blob nodes are dropped, both denylists apply, and nodes with a declared
// size at or above perFileCap are rejected before any fetch attempt. Nodes
// without a declared size pass through; their size is checked post-fetch.
func Candidates(nodes []forge.TreeNode, perFileCap int64) []forge.TreeNode {
	var kept []forge.TreeNode
	for _, node := range nodes {
		if node.Type != forge.NodeTypeBlob {
			continue
		}
		if !SourceLike(node.Path) {
			continue
		}
		if node.Size.IsSome() && node.Size.Unwrap() >= perFileCap {
			continue
		}
		kept = append(kept, node)
	}
	return kept
}
