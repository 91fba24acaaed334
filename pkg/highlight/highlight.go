// Package highlight classifies release-note lines against the set of
// resource and data source types a project actually uses.
package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/terralag/terralag/pkg/hclscan"
)

// StyleMode selects how relevant lines are rendered.
type StyleMode int

const (
	// StyleDefault wraps relevant lines in terminal emphasis.
	StyleDefault StyleMode = iota
	// StyleCaps prefixes relevant lines with a marker and upper-cases
	// them, for terminals where emphasis is unreadable.
	StyleCaps
)

const capsMarker = ">> "

var relevantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99")).Bold(true)

// Line is one release-note line with its relevance tag.
type Line struct {
	Text     string `json:"text" yaml:"text"`
	Relevant bool   `json:"relevant" yaml:"relevant"`
}

// Annotate splits body on newline boundaries and tags each line that
// mentions a tracked type. Splitting is literal: no trimming, no merging,
// the output always has exactly as many lines as the input. Matching is
// plain substring search, which can false-positive on types that are
// substrings of unrelated words; that imprecision is accepted for the
// recall it buys.
func Annotate(body string, types *hclscan.TypeSet) []Line {
	raw := strings.Split(body, "\n")
	lines := make([]Line, len(raw))
	for i, text := range raw {
		lines[i] = Line{Text: text, Relevant: text != "" && types.MatchLine(text)}
	}
	return lines
}

// Render styles one annotated line according to mode. Plain lines pass
// through untouched in every mode.
func Render(l Line, mode StyleMode) string {
	if !l.Relevant {
		return l.Text
	}
	switch mode {
	case StyleCaps:
		return capsMarker + strings.ToUpper(l.Text)
	default:
		return relevantStyle.Render(l.Text)
	}
}
