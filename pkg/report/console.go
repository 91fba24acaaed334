// Package report turns merged check results into user-facing output.
// Renderers only read results; they never reach back into the pipeline.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/terralag/terralag/pkg/engine"
	"github.com/terralag/terralag/pkg/highlight"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	releaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
)

// Console renders results as styled text.
type Console struct {
	w    io.Writer
	mode highlight.StyleMode
}

// NewConsole builds a console renderer writing to w with the given
// highlight mode.
func NewConsole(w io.Writer, mode highlight.StyleMode) *Console {
	return &Console{w: w, mode: mode}
}

// Header prints the run preamble: how many types are being tracked.
func (c *Console) Header(res *engine.Result) {
	fmt.Fprintln(c.w, headerStyle.Render(fmt.Sprintf("Tracking %d resource/data types across project", len(res.TrackedTypes))))
	fmt.Fprintln(c.w)
}

// Provider prints one provider's section: the lag summary, then every
// applicable release with its annotated note lines in upgrade order.
func (c *Console) Provider(p engine.ProviderResult) {
	name := fmt.Sprintf("%s/%s", p.Provider.Vendor, p.Provider.Name)

	if p.Skip != nil {
		fmt.Fprintln(c.w, warnStyle.Render(fmt.Sprintf("%s: skipped (%s): %s", name, p.Skip.Reason, p.Skip.Detail)))
		fmt.Fprintln(c.w)
		return
	}

	if p.UpToDate() {
		fmt.Fprintln(c.w, okStyle.Render(fmt.Sprintf("%s: up to date (%s)", name, p.Provider.PinnedVersion)))
		fmt.Fprintln(c.w)
		return
	}

	plural := "releases"
	if len(p.Releases) == 1 {
		plural = "release"
	}
	fmt.Fprintln(c.w, headerStyle.Render(fmt.Sprintf("%s: %s -> %s (%d %s behind)",
		name, p.Provider.PinnedVersion, p.Latest(), len(p.Releases), plural)))

	for _, rel := range p.Releases {
		heading := rel.Tag
		if !rel.CreatedAt.IsZero() {
			heading = fmt.Sprintf("%s (%s)", rel.Tag, rel.CreatedAt.Format("2006-01-02"))
		}
		fmt.Fprintln(c.w, releaseStyle.Render("  "+heading))

		for _, line := range rel.Lines {
			fmt.Fprintln(c.w, "    "+highlight.Render(line, c.mode))
		}
	}
	fmt.Fprintln(c.w)
}

// Summary prints one closing line covering the whole run.
func (c *Console) Summary(res *engine.Result) {
	var behind, skipped, current int
	for _, p := range res.Providers {
		switch {
		case p.Skip != nil:
			skipped++
		case p.UpToDate():
			current++
		default:
			behind++
		}
	}

	parts := []string{fmt.Sprintf("%d provider(s) checked", len(res.Providers))}
	if behind > 0 {
		parts = append(parts, fmt.Sprintf("%d behind", behind))
	}
	if current > 0 {
		parts = append(parts, fmt.Sprintf("%d up to date", current))
	}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}
	fmt.Fprintln(c.w, strings.Join(parts, ", "))
}
