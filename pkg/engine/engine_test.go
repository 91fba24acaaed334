package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terralag/terralag/pkg/hclscan"
	"github.com/terralag/terralag/pkg/registry"
	"github.com/terralag/terralag/pkg/releasediff"
)

type fakeResolver struct {
	fail map[string]bool
}

func (f *fakeResolver) Resolve(_ context.Context, ref hclscan.ProviderRef) (registry.ResolvedProvider, error) {
	if f.fail[ref.Name] {
		return registry.ResolvedProvider{}, errors.New("registry unavailable")
	}
	return registry.ResolvedProvider{
		ProviderRef: ref,
		RepoOrg:     ref.Vendor,
		RepoName:    "terraform-provider-" + ref.Name,
	}, nil
}

type fakeLister struct {
	releases map[string][]releasediff.Release
	err      error
}

func (f *fakeLister) ListReleases(_ context.Context, org, repo string) ([]releasediff.Release, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.releases[repo], nil
}

func writeProject(t *testing.T, lock string, tf string) (dir, lockPath string) {
	t.Helper()
	dir = t.TempDir()
	lockPath = filepath.Join(dir, ".terraform.lock.hcl")
	require.NoError(t, os.WriteFile(lockPath, []byte(lock), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte(tf), 0644))
	return dir, lockPath
}

const twoProviderLock = `
provider "registry.terraform.io/hashicorp/azurerm" {
  version = "3.0.0"
}

provider "registry.terraform.io/hashicorp/random" {
  version = "3.4.3"
}
`

const mainTF = `
resource "azurerm_storage_account" "main" {}
data "azurerm_client_config" "current" {}
`

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg)
}

func TestRunHappyPath(t *testing.T) {
	dir, lock := writeProject(t, twoProviderLock, mainTF)

	e := newTestEngine(t, Config{
		Dir:      dir,
		LockPath: lock,
		Resolver: &fakeResolver{},
		Lister: &fakeLister{releases: map[string][]releasediff.Release{
			"terraform-provider-azurerm": {
				{Tag: "v3.1.0", Body: "improve azurerm_storage_account retries\nother fix"},
				{Tag: "v2.9.0", Body: "old"},
			},
			"terraform-provider-random": {
				{Tag: "v3.4.3", Body: "current"},
			},
		}},
	})

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Providers, 2)

	azurerm := res.Providers[0]
	require.Nil(t, azurerm.Skip)
	require.Len(t, azurerm.Releases, 1)
	assert.Equal(t, "v3.1.0", azurerm.Releases[0].Tag)
	assert.True(t, azurerm.Releases[0].Lines[0].Relevant)
	assert.False(t, azurerm.Releases[0].Lines[1].Relevant)

	random := res.Providers[1]
	assert.True(t, random.UpToDate())

	assert.Equal(t, []string{"azurerm_client_config", "azurerm_storage_account"}, res.TrackedTypes)
}

func TestRunOneFailureDoesNotStopOthers(t *testing.T) {
	dir, lock := writeProject(t, twoProviderLock, mainTF)

	e := newTestEngine(t, Config{
		Dir:      dir,
		LockPath: lock,
		Resolver: &fakeResolver{fail: map[string]bool{"azurerm": true}},
		Lister: &fakeLister{releases: map[string][]releasediff.Release{
			"terraform-provider-random": {{Tag: "v3.5.0", Body: "newer"}},
		}},
	})

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, res.Providers[0].Skip)
	assert.Equal(t, SkipResolveFailed, res.Providers[0].Skip.Reason)

	require.Nil(t, res.Providers[1].Skip)
	assert.Equal(t, "v3.5.0", res.Providers[1].Latest())
}

func TestRunBadPinnedVersionIsSkip(t *testing.T) {
	dir, lock := writeProject(t, `
provider "registry.terraform.io/hashicorp/azurerm" {
  version = "not-a-version"
}
`, mainTF)

	e := newTestEngine(t, Config{
		Dir:      dir,
		LockPath: lock,
		Resolver: &fakeResolver{},
		Lister:   &fakeLister{releases: map[string][]releasediff.Release{}},
	})

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Providers[0].Skip)
	assert.Equal(t, SkipBadPinnedVersion, res.Providers[0].Skip.Reason)
}

func TestRunFetchFailureIsSkip(t *testing.T) {
	dir, lock := writeProject(t, twoProviderLock, mainTF)

	e := newTestEngine(t, Config{
		Dir:      dir,
		LockPath: lock,
		Resolver: &fakeResolver{},
		Lister:   &fakeLister{err: errors.New("rate limited")},
	})

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	for _, p := range res.Providers {
		require.NotNil(t, p.Skip)
		assert.Equal(t, SkipFetchFailed, p.Skip.Reason)
	}
}

func TestRunMissingLockFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte(mainTF), 0644))

	e := newTestEngine(t, Config{
		Dir:      dir,
		LockPath: filepath.Join(dir, ".terraform.lock.hcl"),
		Resolver: &fakeResolver{},
		Lister:   &fakeLister{},
	})

	_, err := e.Run(context.Background())
	require.ErrorIs(t, err, hclscan.ErrLockFileNotFound)
}

func TestRunNoConfigFilesIsFatal(t *testing.T) {
	dir := t.TempDir()
	lock := filepath.Join(dir, ".terraform.lock.hcl")
	require.NoError(t, os.WriteFile(lock, []byte(twoProviderLock), 0644))

	e := newTestEngine(t, Config{
		Dir:      dir,
		LockPath: lock,
		Resolver: &fakeResolver{},
		Lister:   &fakeLister{},
	})

	_, err := e.Run(context.Background())
	require.ErrorIs(t, err, hclscan.ErrNoConfigFiles)
}
