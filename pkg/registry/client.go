// Package registry resolves (vendor, name) provider pairs against the
// public Terraform registry to find the upstream source repository.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/terralag/terralag/pkg/hclscan"
)

// DefaultBaseURL is the public Terraform registry endpoint.
const DefaultBaseURL = "https://registry.terraform.io"

// ResolvedProvider is a ProviderRef whose upstream repository is known.
type ResolvedProvider struct {
	hclscan.ProviderRef
	RepoOrg  string `json:"repo_org" yaml:"repo_org"`
	RepoName string `json:"repo_name" yaml:"repo_name"`
}

// Client looks up providers on a Terraform registry.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient builds a registry client with pooled transport and bounded
// retries. Transient transport failures are retried; anything else is a
// per-provider skip for the caller.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.RetryMax = 2
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = nil

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: rc}
}

type providerResponse struct {
	Source string `json:"source"`
}

// Resolve queries the registry for a provider and extracts the source
// repository org and name from the response's source URL.
func (c *Client) Resolve(ctx context.Context, ref hclscan.ProviderRef) (ResolvedProvider, error) {
	endpoint := fmt.Sprintf("%s/v1/providers/%s/%s", c.baseURL, url.PathEscape(ref.Vendor), url.PathEscape(ref.Name))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ResolvedProvider{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ResolvedProvider{}, fmt.Errorf("registry request for %s/%s: %w", ref.Vendor, ref.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return ResolvedProvider{}, fmt.Errorf("registry returned %d for %s/%s", resp.StatusCode, ref.Vendor, ref.Name)
	}

	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return ResolvedProvider{}, fmt.Errorf("decoding registry response for %s/%s: %w", ref.Vendor, ref.Name, err)
	}

	org, repo, err := splitSourceURL(pr.Source)
	if err != nil {
		return ResolvedProvider{}, fmt.Errorf("provider %s/%s: %w", ref.Vendor, ref.Name, err)
	}

	slog.Debug("Resolved provider source", "provider", ref.String(), "org", org, "repo", repo)
	return ResolvedProvider{ProviderRef: ref, RepoOrg: org, RepoName: repo}, nil
}

// splitSourceURL extracts (org, repo) from an absolute source URL such as
// https://github.com/hashicorp/terraform-provider-azurerm.
func splitSourceURL(source string) (string, string, error) {
	u, err := url.Parse(source)
	if err != nil || !u.IsAbs() {
		return "", "", fmt.Errorf("source URL %q is not an absolute URL", source)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("source URL %q does not encode org/repo", source)
	}
	return parts[0], parts[1], nil
}
