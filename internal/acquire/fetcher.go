package acquire

import (
	"context"

	"git.home.luguber.info/inful/sourcebundle/internal/forge"
)

// ContentFetcher retrieves one candidate file body. Two implementations
// exist: the authenticated contents endpoint and the anonymous raw-content
// host. The implementation is chosen once per acquisition from credential
// presence, never inline in the fetch loop.
type ContentFetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// NewContentFetcher selects the transport for one acquisition. A client
// carrying a credential uses the contents API (which honors the token for
// private repositories); an anonymous client hits the raw host directly.
func NewContentFetcher(client *forge.GitHubClient, info *forge.RepositoryInfo) ContentFetcher {
	if client.Authenticated() {
		return &contentsFetcher{client: client, info: info}
	}
	return &rawFetcher{client: client, info: info}
}

// contentsFetcher fetches through the authenticated contents endpoint and
// decodes the base64 envelope.
type contentsFetcher struct {
	client *forge.GitHubClient
	info   *forge.RepositoryInfo
}

func (f *contentsFetcher) Fetch(ctx context.Context, path string) (string, error) {
	return f.client.GetFileContents(ctx, f.info.Owner, f.info.Repo, path, f.info.DefaultBranch)
}

// rawFetcher fetches file bodies verbatim from the raw-content host.
type rawFetcher struct {
	client *forge.GitHubClient
	info   *forge.RepositoryInfo
}

func (f *rawFetcher) Fetch(ctx context.Context, path string) (string, error) {
	url := f.client.RawFileURL(f.info.Owner, f.info.Repo, f.info.DefaultBranch, path)
	return f.client.FetchRaw(ctx, url)
}
