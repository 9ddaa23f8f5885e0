// Package locator classifies user-supplied source locators into acquisition
// strategies. Classification is purely syntactic; no network access happens
// here, so a well-formed locator for a nonexistent repository still classifies
// successfully and fails later at the remote.
package locator

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

// Kind discriminates how a locator is acquired downstream.
type Kind string

const (
	// KindRepository targets a whole GitHub repository and runs the full
	// enumerate/filter/fetch pipeline.
	KindRepository Kind = "repository"
	// KindBlob targets a single file addressed by a blob-style web URL.
	KindBlob Kind = "blob"
	// KindGist targets a gist and fetches its raw concatenated form.
	KindGist Kind = "gist"
)

const (
	gistHost    = "gist.github.com"
	rawHost     = "raw.githubusercontent.com"
	webHost     = "github.com"
	blobSegment = "/blob/"
)

// Locator is a classified acquisition target.
type Locator struct {
	// Raw is the input string exactly as supplied.
	Raw  string
	Kind Kind

	// Owner and Repo are set for KindRepository only.
	Owner string
	Repo  string

	// RawURL is the single canonical raw-content URL for KindBlob and
	// KindGist; empty for KindRepository.
	RawURL string
}

// Repository returns the owner/repo form, or the raw URL for single-file kinds.
func (l *Locator) Repository() string {
	if l.Kind == KindRepository {
		return l.Owner + "/" + l.Repo
	}
	return l.RawURL
}

// Classify inspects a locator string and derives the acquisition strategy.
//
// Single-file forms are recognized first: anything on the gist host gets a
// /raw suffix, and blob-style web URLs are rewritten to the raw content host
// with the blob path segment dropped. Everything else must name a repository;
// the first two path segments become owner and repo, with a trailing .git
// stripped from the repo name.
func Classify(raw string) (*Locator, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.LocatorError("locator is empty").Build()
	}

	if hostOf(trimmed) == gistHost {
		return &Locator{
			Raw:    raw,
			Kind:   KindGist,
			RawURL: strings.TrimSuffix(trimmed, "/") + "/raw",
		}, nil
	}

	if strings.Contains(trimmed, blobSegment) {
		rawURL := strings.Replace(trimmed, webHost, rawHost, 1)
		rawURL = strings.Replace(rawURL, blobSegment, "/", 1)
		return &Locator{
			Raw:    raw,
			Kind:   KindBlob,
			RawURL: rawURL,
		}, nil
	}

	owner, repo, err := splitRepositoryPath(trimmed)
	if err != nil {
		return nil, err
	}
	return &Locator{
		Raw:   raw,
		Kind:  KindRepository,
		Owner: owner,
		Repo:  repo,
	}, nil
}

// hostOf returns the host component of a locator, tolerating scheme-less
// input like "gist.github.com/user/id" where the host parses into Path.
func hostOf(trimmed string) string {
	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if u.Host != "" {
		return u.Host
	}
	host, _, _ := strings.Cut(u.Path, "/")
	return host
}

// splitRepositoryPath extracts owner and repo from a repository locator.
// Accepts full URLs (https://github.com/owner/repo), host-less paths
// (github.com/owner/repo) and the bare owner/repo shorthand.
func splitRepositoryPath(trimmed string) (string, string, error) {
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", "", errors.LocatorError("invalid repository URL: not parseable").
			WithCause(err).
			WithContext("locator", trimmed).
			Build()
	}

	path := u.Path
	// Scheme-less input like "github.com/owner/repo" parses entirely into
	// Path; drop the leading host component when it looks like one.
	if u.Host == "" {
		if rest, ok := strings.CutPrefix(path, webHost+"/"); ok {
			path = rest
		}
	}

	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	if len(segments) < 2 {
		return "", "", errors.LocatorError("invalid repository URL: expected owner/repo form").
			WithContext("locator", trimmed).
			Build()
	}

	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")
	if owner == "" || repo == "" {
		return "", "", errors.LocatorError("invalid repository URL: expected owner/repo form").
			WithContext("locator", trimmed).
			Build()
	}
	return owner, repo, nil
}
