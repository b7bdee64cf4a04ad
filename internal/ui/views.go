package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#888888")).
			Padding(0, 1).
			Width(60)

	okStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	errStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3333"))
)

func renderProgress(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Visual Artifacts - Render"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(filepath.Base(m.Source)))
	b.WriteString("\n\n")

	var content strings.Builder
	content.WriteString(renderBar(m.Progress(), barWidth))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Frames: %d/%d  %.1f fps\n", m.Stats.Frames, m.TotalFrames, m.Stats.FPS))
	content.WriteString(fmt.Sprintf("Effect: %s  %s", valueOr(m.Stats.Instance, "-"), calibrationState(m)))
	b.WriteString(boxStyle.Render(content.String()))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("q to stop"))
	return b.String()
}

func renderSummary(m Model) string {
	var b strings.Builder

	if m.Err != nil {
		b.WriteString(errStyle.Render("Render failed: " + m.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(okStyle.Render("Render complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(" %s → %s\n", filepath.Base(m.Source), valueOr(m.OutputPath, "(no output)")))
	b.WriteString(fmt.Sprintf("   %d frames in %s (%.1f fps)\n", m.Stats.Frames, m.Stats.Elapsed.Round(10*time.Millisecond), m.Stats.FPS))
	if m.Stats.Failed > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf("   %d frames passed through after analysis errors", m.Stats.Failed)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d%%", bar, int(progress*100))
}

func calibrationState(m Model) string {
	if !m.Stats.Calibrated {
		return "calibrating"
	}
	return fmt.Sprintf("threshold %.2f", m.Stats.Threshold)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
