package hclscan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const lockFixture = `
provider "registry.terraform.io/hashicorp/azurerm" {
  version     = "3.0.2"
  constraints = "~> 3.0"
  hashes = [
    "h1:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa=",
  ]
}

provider "registry.terraform.io/hashicorp/random" {
  version = "3.4.3"
}
`

func TestScanLockFile(t *testing.T) {
	path := writeFile(t, ".terraform.lock.hcl", lockFixture)

	refs, err := ScanLockFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(refs))
	}

	want := []ProviderRef{
		{Vendor: "hashicorp", Name: "azurerm", PinnedVersion: "3.0.2"},
		{Vendor: "hashicorp", Name: "random", PinnedVersion: "3.4.3"},
	}
	for i, w := range want {
		if refs[i] != w {
			t.Errorf("provider %d: expected %+v, got %+v", i, w, refs[i])
		}
	}
}

func TestScanLockFileMissing(t *testing.T) {
	_, err := ScanLockFile(filepath.Join(t.TempDir(), "nope.hcl"))
	if !errors.Is(err, ErrLockFileNotFound) {
		t.Fatalf("expected ErrLockFileNotFound, got %v", err)
	}
}

func TestScanLockFileShortAddress(t *testing.T) {
	path := writeFile(t, ".terraform.lock.hcl", `
provider "hashicorp/azurerm" {
  version = "3.0.2"
}
`)

	_, err := ScanLockFile(path)
	if err == nil {
		t.Fatal("expected error for 2-segment provider address")
	}
}

func TestScanLockFileMissingVersion(t *testing.T) {
	path := writeFile(t, ".terraform.lock.hcl", `
provider "registry.terraform.io/hashicorp/azurerm" {
  constraints = "~> 3.0"
}
`)

	_, err := ScanLockFile(path)
	if err == nil {
		t.Fatal("expected error for provider without version")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
