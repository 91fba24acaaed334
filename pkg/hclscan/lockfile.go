package hclscan

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ErrLockFileNotFound signals that the dependency lock file does not exist.
var ErrLockFileNotFound = errors.New("lock file not found")

// ProviderRef identifies a provider pinned in the lock file.
// Identity is (Vendor, Name); PinnedVersion is carried along for diffing.
type ProviderRef struct {
	Vendor        string `json:"vendor" yaml:"vendor"`
	Name          string `json:"name" yaml:"name"`
	PinnedVersion string `json:"pinned_version" yaml:"pinned_version"`
}

func (p ProviderRef) String() string {
	return fmt.Sprintf("%s/%s@%s", p.Vendor, p.Name, p.PinnedVersion)
}

// ScanLockFile parses a .terraform.lock.hcl document and returns one
// ProviderRef per provider block.
//
// A provider block label is "host/vendor/name"; the host segment is the
// registry hostname and is discarded. The lock file is machine-written,
// so a label with fewer than three segments means the file is corrupt
// and the whole extraction fails.
func ScanLockFile(path string) ([]ProviderRef, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLockFileNotFound, path)
		}
		return nil, err
	}
	return parseLockFile(src, path)
}

func parseLockFile(src []byte, filename string) ([]ProviderRef, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags != nil && diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %s", filename, diags.Error())
	}

	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parsing %s: unexpected body type", filename)
	}

	var refs []ProviderRef
	for _, block := range body.Blocks {
		if block.Type != "provider" || len(block.Labels) != 1 {
			continue
		}

		segments := strings.Split(block.Labels[0], "/")
		if len(segments) < 3 {
			return nil, fmt.Errorf("parsing %s: provider address %q has fewer than 3 segments", filename, block.Labels[0])
		}

		ref := ProviderRef{Vendor: segments[1], Name: segments[2]}

		if attr, exists := block.Body.Attributes["version"]; exists {
			val, valDiags := attr.Expr.Value(nil)
			if !valDiags.HasErrors() && val.Type() == cty.String {
				ref.PinnedVersion = val.AsString()
			}
		}
		if ref.PinnedVersion == "" {
			return nil, fmt.Errorf("parsing %s: provider %s/%s has no version", filename, ref.Vendor, ref.Name)
		}

		refs = append(refs, ref)
	}

	return refs, nil
}
