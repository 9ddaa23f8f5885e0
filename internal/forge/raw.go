package forge

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

// RawFileURL builds the unauthenticated raw-content URL for one repository
// file. The raw host serves bodies verbatim with no JSON envelope.
func (c *GitHubClient) RawFileURL(owner, repo, branch, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBaseURL, owner, repo, branch, path)
}

// FetchRaw retrieves a URL from the raw-content host as plain text. The
// credential, when present, is attached here too: one acquisition uses its
// credential for every remote call or none of them.
func (c *GitHubClient) FetchRaw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.InternalError("could not build raw fetch request").
			WithCause(err).
			WithContext("url", rawURL).
			Build()
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.raw.Do(req)
	if err != nil {
		return "", errors.NetworkError("raw content fetch failed").
			WithCause(err).
			WithContext("url", rawURL).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		msg := fmt.Sprintf("file not found at %s", rawURL)
		if !c.Authenticated() {
			msg += "; if the repository is private, supply an access token"
		}
		return "", errors.NotFoundError(msg).Build()
	case http.StatusForbidden, http.StatusTooManyRequests:
		return "", c.rateLimited(fmt.Errorf("raw host returned %s", resp.Status))
	default:
		return "", errors.RemoteAPIError(fmt.Sprintf("raw host returned %s", resp.Status)).
			WithContext("url", rawURL).
			Build()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NetworkError("could not read raw content body").
			WithCause(err).
			WithContext("url", rawURL).
			Build()
	}
	return string(body), nil
}
