package releasediff

import (
	"context"
	"fmt"

	"github.com/google/go-github/v61/github"
)

// Lister fetches the full release list for a repository.
type Lister interface {
	ListReleases(ctx context.Context, org, repo string) ([]Release, error)
}

// GitHubLister fetches releases from the GitHub API, following pagination
// until the list is exhausted. An auth token raises rate limits only.
type GitHubLister struct {
	client *github.Client
}

// NewGitHubLister builds a lister. token may be empty for anonymous access.
func NewGitHubLister(token string) *GitHubLister {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubLister{client: client}
}

// WithBaseURL points the lister at a different API endpoint, for tests.
func (g *GitHubLister) WithBaseURL(baseURL string) (*GitHubLister, error) {
	client, err := g.client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, err
	}
	return &GitHubLister{client: client}, nil
}

// ListReleases returns every release of org/repo.
func (g *GitHubLister) ListReleases(ctx context.Context, org, repo string) ([]Release, error) {
	opts := &github.ListOptions{PerPage: 100}

	var out []Release
	for {
		page, resp, err := g.client.Repositories.ListReleases(ctx, org, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", org, repo, err)
		}
		for _, r := range page {
			out = append(out, Release{
				Tag:       r.GetTagName(),
				Body:      r.GetBody(),
				CreatedAt: r.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}
