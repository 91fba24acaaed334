package hclscan

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// ErrNoConfigFiles signals that the scan root contains no .tf files at all.
var ErrNoConfigFiles = errors.New("no configuration files found")

// FileError records a configuration file that could not be parsed.
// These are recoverable: the file is excluded and the scan continues.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

type parseDiagError string

func (e parseDiagError) Error() string { return string(e) }

// TypeSet is the deduplicated collection of resource and data source type
// names referenced by a project's configuration.
type TypeSet struct {
	members map[string]struct{}
}

// NewTypeSet builds a TypeSet from explicit members, mostly for tests.
func NewTypeSet(names ...string) *TypeSet {
	s := &TypeSet{members: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.members[n] = struct{}{}
	}
	return s
}

func (s *TypeSet) add(name string) {
	s.members[name] = struct{}{}
}

// Contains reports exact membership.
func (s *TypeSet) Contains(name string) bool {
	_, ok := s.members[name]
	return ok
}

// Len returns the number of distinct type names.
func (s *TypeSet) Len() int { return len(s.members) }

// Sorted returns the members in lexicographic order for display.
func (s *TypeSet) Sorted() []string {
	out := make([]string, 0, len(s.members))
	for n := range s.members {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MatchLine reports whether any tracked type name occurs as a literal
// substring of the line. Matching is case-sensitive and has no word
// boundary requirement, so a type that happens to be a substring of an
// unrelated token will match too; type names are distinctive enough in
// practice that this stays useful.
func (s *TypeSet) MatchLine(line string) bool {
	for n := range s.members {
		if strings.Contains(line, n) {
			return true
		}
	}
	return false
}

// ScanTypes walks dir for .tf files and collects the type labels of every
// top-level resource and data block into a single set. Files that fail to
// parse are reported and excluded; they never abort the scan. Directories
// named .terraform or .git are skipped.
func ScanTypes(dir string) (*TypeSet, []FileError, error) {
	set := &TypeSet{members: make(map[string]struct{})}
	var fileErrs []FileError
	seen := 0

	parser := hclparse.NewParser()

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".terraform" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(info.Name(), ".tf") {
			return nil
		}
		seen++

		f, parseDiags := parser.ParseHCLFile(path)
		if parseDiags != nil && parseDiags.HasErrors() {
			fileErrs = append(fileErrs, FileError{Path: path, Err: parseDiagError(parseDiags.Error())})
			return nil
		}

		body, ok := f.Body.(*hclsyntax.Body)
		if !ok {
			return nil
		}
		for _, block := range body.Blocks {
			if (block.Type == "resource" || block.Type == "data") && len(block.Labels) == 2 {
				set.add(block.Labels[0])
			}
		}
		return nil
	})
	if err != nil {
		return nil, fileErrs, err
	}

	if seen == 0 {
		return nil, fileErrs, ErrNoConfigFiles
	}
	return set, fileErrs, nil
}
