// Package forge talks to the GitHub REST API for repository metadata,
// recursive tree listings and file contents. Remote failures come back as
// classified errors so callers can route them without inspecting status
// codes themselves.
package forge

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

const (
	defaultRawBaseURL = "https://raw.githubusercontent.com"
	requestTimeout    = 30 * time.Second
)

// ErrContentDecode marks a contents-endpoint response whose envelope could
// not be decoded to text. Callers treat it as a per-file skip, not a failure.
var ErrContentDecode = stderrors.New("undecodable content envelope")

// Options configures a GitHubClient. The zero value targets the public
// GitHub endpoints without authentication.
type Options struct {
	// Token is an optional bearer credential. It is attached to every
	// request the client makes and is never logged.
	Token string

	// APIBaseURL and RawBaseURL override the remote endpoints, mainly for
	// tests against local fakes.
	APIBaseURL string
	RawBaseURL string
}

// GitHubClient wraps the GitHub REST API for one acquisition.
type GitHubClient struct {
	gh         *gogithub.Client
	raw        *http.Client
	rawBaseURL string
	token      string
}

// NewGitHubClient creates a client. With a token, all API traffic goes
// through an oauth2 transport; without one, requests are anonymous.
func NewGitHubClient(opts Options) (*GitHubClient, error) {
	httpClient := &http.Client{Timeout: requestTimeout}
	if opts.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = requestTimeout
	}

	gh := gogithub.NewClient(httpClient)
	if opts.APIBaseURL != "" {
		// go-github requires the base URL to end in a slash
		u, err := url.Parse(strings.TrimSuffix(opts.APIBaseURL, "/") + "/")
		if err != nil {
			return nil, errors.ConfigError("invalid API base URL").
				WithCause(err).
				WithContext("url", opts.APIBaseURL).
				Build()
		}
		gh.BaseURL = u
	}

	rawBase := opts.RawBaseURL
	if rawBase == "" {
		rawBase = defaultRawBaseURL
	}

	return &GitHubClient{
		gh:         gh,
		raw:        &http.Client{Timeout: requestTimeout},
		rawBaseURL: strings.TrimSuffix(rawBase, "/"),
		token:      opts.Token,
	}, nil
}

// Authenticated reports whether the client carries a credential.
func (c *GitHubClient) Authenticated() bool {
	return c.token != ""
}

// GetRepository resolves repository metadata. The default branch falls back
// to "main" when the API omits it.
func (c *GitHubClient) GetRepository(ctx context.Context, owner, repo string) (*RepositoryInfo, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, c.classifyMetadataError(owner, repo, err)
	}

	branch := r.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	return &RepositoryInfo{
		Owner:         owner,
		Repo:          repo,
		DefaultBranch: branch,
		Private:       r.GetPrivate(),
	}, nil
}

// GetTree fetches the full recursive listing for a branch. Entries without a
// path or type are dropped during decode; a server-side truncation flag is
// carried through as a diagnostic, not an error.
func (c *GitHubClient) GetTree(ctx context.Context, owner, repo, branch string) (*RepositoryTree, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, branch, true)
	if err != nil {
		return nil, errors.TreeError(fmt.Sprintf("could not list files for %s/%s", owner, repo)).
			WithCause(err).
			WithContext("branch", branch).
			Build()
	}

	nodes := make([]TreeNode, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetPath() == "" || entry.GetType() == "" {
			continue
		}
		size := foundation.None[int64]()
		if entry.Size != nil {
			size = foundation.Some(int64(*entry.Size))
		}
		nodes = append(nodes, TreeNode{
			Path: entry.GetPath(),
			Type: entry.GetType(),
			Size: size,
		})
	}

	return &RepositoryTree{
		Nodes:     nodes,
		Truncated: tree.GetTruncated(),
	}, nil
}

// GetFileContents fetches one file through the authenticated contents
// endpoint and decodes its base64 envelope. Decode failures wrap
// ErrContentDecode so the fetch loop can classify the skip.
func (c *GitHubClient) GetFileContents(ctx context.Context, owner, repo, path, ref string) (string, error) {
	opts := &gogithub.RepositoryContentGetOptions{Ref: ref}
	fc, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return "", fmt.Errorf("contents %s: %w", path, err)
	}
	if fc == nil {
		return "", fmt.Errorf("%w: %s is not a file", ErrContentDecode, path)
	}

	body, err := fc.GetContent()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrContentDecode, path, err)
	}
	return body, nil
}

// classifyMetadataError maps metadata-call failures onto the acquisition
// taxonomy. Rate limiting is distinguished from generic failure so callers
// can suggest supplying a credential; the private-repository hint on 404 is
// only useful when no credential was sent.
func (c *GitHubClient) classifyMetadataError(owner, repo string, err error) error {
	var rateErr *gogithub.RateLimitError
	var abuseErr *gogithub.AbuseRateLimitError
	if stderrors.As(err, &rateErr) || stderrors.As(err, &abuseErr) {
		return c.rateLimited(err)
	}

	var respErr *gogithub.ErrorResponse
	if stderrors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			msg := fmt.Sprintf("repository %s/%s not found", owner, repo)
			if !c.Authenticated() {
				msg += "; if it is private, supply an access token"
			}
			return errors.NotFoundError(msg).WithCause(err).Build()
		case http.StatusForbidden, http.StatusTooManyRequests:
			return c.rateLimited(err)
		default:
			return errors.RemoteAPIError(fmt.Sprintf("GitHub API returned %s", respErr.Response.Status)).
				WithCause(err).
				WithContext("repository", owner+"/"+repo).
				Build()
		}
	}

	return errors.NetworkError(fmt.Sprintf("GitHub API request for %s/%s failed", owner, repo)).
		WithCause(err).
		Build()
}

func (c *GitHubClient) rateLimited(err error) error {
	msg := "GitHub API rate limit exceeded"
	if !c.Authenticated() {
		msg += "; supply an access token for a higher limit"
	}
	return errors.RateLimitError(msg).WithCause(err).Build()
}
