package engine

import (
	"time"

	"github.com/terralag/terralag/pkg/hclscan"
	"github.com/terralag/terralag/pkg/highlight"
)

// SkipReason classifies why a provider produced no release diff.
type SkipReason string

const (
	SkipResolveFailed    SkipReason = "resolve_failed"
	SkipFetchFailed      SkipReason = "fetch_failed"
	SkipBadPinnedVersion SkipReason = "bad_pinned_version"
)

// Skip carries the classification and the underlying detail for display.
type Skip struct {
	Reason SkipReason `json:"reason" yaml:"reason"`
	Detail string     `json:"detail" yaml:"detail"`
}

// AnnotatedRelease is one applicable release with its note lines tagged.
type AnnotatedRelease struct {
	Tag       string           `json:"tag" yaml:"tag"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	Lines     []highlight.Line `json:"lines" yaml:"lines"`
}

// ProviderResult is the full outcome for one provider: either a sequence
// of applicable releases (possibly empty, meaning up to date) or a Skip.
type ProviderResult struct {
	Provider hclscan.ProviderRef `json:"provider" yaml:"provider"`
	RepoOrg  string              `json:"repo_org,omitempty" yaml:"repo_org,omitempty"`
	RepoName string              `json:"repo_name,omitempty" yaml:"repo_name,omitempty"`
	Releases []AnnotatedRelease  `json:"releases" yaml:"releases"`
	Skip     *Skip               `json:"skip,omitempty" yaml:"skip,omitempty"`
}

// UpToDate reports whether the provider was checked and has no newer release.
func (r ProviderResult) UpToDate() bool {
	return r.Skip == nil && len(r.Releases) == 0
}

// Latest returns the newest applicable tag, or empty when up to date.
func (r ProviderResult) Latest() string {
	if len(r.Releases) == 0 {
		return ""
	}
	return r.Releases[len(r.Releases)-1].Tag
}

// Result merges every provider's outcome for presentation.
type Result struct {
	TrackedTypes []string            `json:"tracked_types" yaml:"tracked_types"`
	FileErrors   []hclscan.FileError `json:"-" yaml:"-"`
	Providers    []ProviderResult    `json:"providers" yaml:"providers"`
}
