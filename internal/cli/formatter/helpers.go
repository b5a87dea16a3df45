package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dagatna/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanTimestampFrom returns a relative timestamp such as "5m ago" measured
// from now, falling back to a date for anything older than a day.
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Local().Format("Jan 2 15:04")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "Yesterday"
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

// FormatWait renders a cooldown wait as "4m 10s".
func FormatWait(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	if m > 0 && s > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// ClaimStatusPill returns a colored indicator for a claim status.
func ClaimStatusPill(status domain.ClaimStatus) string {
	switch status {
	case domain.ClaimSubmitted:
		return StyleGreen.Render("✔ Submitted")
	case domain.ClaimPending:
		return StyleYellow.Render("○ Pending")
	case domain.ClaimFailed:
		return StyleRed.Render("✖ Failed")
	default:
		return StyleDim.Render(string(status))
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}
