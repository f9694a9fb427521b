package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/recipes/pkg/app/styles"
	"github.com/kerbaras/recipes/pkg/services"
)

// ExportTracker follows one cookbook export and the thumbnails that failed.
type ExportTracker struct {
	current  *services.ExportProgress
	failures []services.ExportProgress
	width    int
}

func NewExportTracker(width int) *ExportTracker {
	return &ExportTracker{width: width}
}

func (p *ExportTracker) SetWidth(width int) {
	p.width = width
}

func (p *ExportTracker) Update(progress services.ExportProgress) {
	if progress.Status == "error" {
		p.failures = append(p.failures, progress)
	}
	prog := progress // Copy
	p.current = &prog
}

func (p *ExportTracker) Clear() {
	p.current = nil
	p.failures = nil
}

// HasActive reports whether an export is running.
func (p *ExportTracker) HasActive() bool {
	return p.current != nil && p.current.Status != "complete"
}

func (p *ExportTracker) View() string {
	if p.current == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Cookbook export"))
	b.WriteString("\n")

	prog := p.current
	if prog.Total > 0 {
		b.WriteString(renderProgressBar(prog.Current, prog.Total, p.width-4))
		b.WriteString("\n")
	}

	statusText := prog.Status
	switch prog.Status {
	case "fetching", "error":
		statusText = fmt.Sprintf("fetching thumbnails (%d/%d)", prog.Current, prog.Total)
	case "building":
		statusText = "building EPUB..."
	case "complete":
		statusText = fmt.Sprintf("saved to %s", prog.Path)
	}
	b.WriteString(styles.StatusStyle(statusStyleKey(prog.Status)).Render(statusText))
	b.WriteString("\n")

	for _, f := range p.failures {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("No image for %s: %s", f.RecipeName, f.Error)))
		b.WriteString("\n")
	}

	return b.String()
}

// a failed thumbnail does not fail the export
func statusStyleKey(status string) string {
	if status == "error" {
		return "fetching"
	}
	return status
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return styles.ProgressBarStyle.Render(bar)
}

// SimpleProgress renders a simple progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
