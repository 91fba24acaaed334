// Package releasediff computes which upstream releases a pinned provider
// version is missing out on.
package releasediff

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	goversion "github.com/hashicorp/go-version"
)

// Release is one upstream tagged release.
type Release struct {
	Tag       string    `json:"tag" yaml:"tag"`
	Body      string    `json:"body" yaml:"body"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Applicable returns the releases whose tag parses as a version strictly
// greater than pinned, sorted ascending by semver precedence so the notes
// read in upgrade order. Ties keep the original listing order.
//
// Releases with unparseable tags are excluded and logged at debug level;
// version equality never counts as applicable, regardless of formatting
// differences like a leading "v".
func Applicable(releases []Release, pinned string) ([]Release, error) {
	pinnedVer, err := goversion.NewVersion(pinned)
	if err != nil {
		return nil, fmt.Errorf("pinned version %q: %w", pinned, err)
	}

	type parsed struct {
		release Release
		ver     *goversion.Version
	}

	var newer []parsed
	for _, r := range releases {
		v, err := goversion.NewVersion(r.Tag)
		if err != nil {
			slog.Debug("Skipping release with unparseable tag", "tag", r.Tag)
			continue
		}
		if v.GreaterThan(pinnedVer) {
			newer = append(newer, parsed{release: r, ver: v})
		}
	}

	sort.SliceStable(newer, func(i, j int) bool {
		return newer[i].ver.LessThan(newer[j].ver)
	})

	out := make([]Release, len(newer))
	for i, p := range newer {
		out[i] = p.release
	}
	return out, nil
}
