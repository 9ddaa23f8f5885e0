package filter

import (
	"testing"

	"git.home.luguber.info/inful/sourcebundle/internal/forge"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation"
)

func TestSourceLike(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"src/lib/parser.py", true},
		{"cmd/tool/main.go", true},
		{"Makefile", true},
		{"internal/Server.TS", true},

		// suffix denylist, case-insensitive
		{"logo.png", false},
		{"assets/Logo.PNG", false},
		{"archive.tar.gz", false},
		{"fonts/site.woff2", false},
		{"media/intro.mp4", false},
		{"app.min.js", false},
		{"app.bundle.js", false},
		{"app.js.map", false},
		{"Cargo.lock", false},
		{"yarn.lock", false},
		{"package-lock.json", false},
		{"go.sum", false},
		{"config.json", false},
		{"README.md", false},
		{"style.css", false},

		// directory denylist as path component
		{"node_modules/react/index.js", false},
		{"vendor/pkg/lib.go", false},
		{"dist/app.js", false},
		{"build/output.js", false},
		{"deep/nested/node_modules/x/y.js", false},
		{".git/hooks/pre-commit", false},
		{"target/debug/main.rs", false},
		{"__pycache__/mod.py", false},

		// component match, not substring
		{"rebuild/tool.go", true},
		{"distillery/still.go", true},
		{"layout/page.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := SourceLike(tt.path); got != tt.want {
				t.Errorf("SourceLike(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	const perFileCap = int64(150_000)

	nodes := []forge.TreeNode{
		{Path: "main.go", Type: forge.NodeTypeBlob, Size: foundation.Some(int64(1200))},
		{Path: "src", Type: "tree"},
		{Path: "src/app.py", Type: forge.NodeTypeBlob, Size: foundation.None[int64]()},
		{Path: "logo.png", Type: forge.NodeTypeBlob, Size: foundation.Some(int64(90))},
		{Path: "big.go", Type: forge.NodeTypeBlob, Size: foundation.Some(perFileCap)},
		{Path: "almost.go", Type: forge.NodeTypeBlob, Size: foundation.Some(perFileCap - 1)},
		{Path: "node_modules/x.js", Type: forge.NodeTypeBlob, Size: foundation.Some(int64(10))},
	}

	kept := Candidates(nodes, perFileCap)

	want := []string{"main.go", "src/app.py", "almost.go"}
	if len(kept) != len(want) {
		t.Fatalf("Candidates() kept %d nodes, want %d: %v", len(kept), len(want), kept)
	}
	for i, path := range want {
		if kept[i].Path != path {
			t.Errorf("Candidates()[%d] = %q, want %q (order must follow enumeration)", i, kept[i].Path, path)
		}
	}
}

func TestCandidatesUnknownSizePasses(t *testing.T) {
	nodes := []forge.TreeNode{
		{Path: "unknown.go", Type: forge.NodeTypeBlob, Size: foundation.None[int64]()},
	}
	kept := Candidates(nodes, 150_000)
	if len(kept) != 1 {
		t.Fatalf("Candidates() kept %d, want 1: declared-unknown sizes are checked post-fetch", len(kept))
	}
}
