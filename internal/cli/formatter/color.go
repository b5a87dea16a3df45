package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
	ColorWater  = lipgloss.Color("#458588")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleWater  = lipgloss.NewStyle().Foreground(ColorWater)
)

// TierStyle returns the style for a reward tier: dim for none, then blue,
// green and purple as the tier rises.
func TierStyle(tier int) lipgloss.Style {
	switch {
	case tier <= 0:
		return StyleDim
	case tier == 1:
		return StyleBlue
	case tier == 2:
		return StyleGreen
	default:
		return StylePurple
	}
}

// TierBadge renders a tier as "★★☆" style stars out of maxTier.
func TierBadge(tier, maxTier int) string {
	if maxTier <= 0 {
		return Dim("--")
	}
	tier = min(max(tier, 0), maxTier)
	stars := strings.Repeat("★", tier) + strings.Repeat("☆", maxTier-tier)
	return TierStyle(tier).Render(stars)
}

// FadeStyle picks an item style from its remaining-life fraction.
func FadeStyle(fade float64) lipgloss.Style {
	switch {
	case fade < 0.4:
		return StyleRed
	case fade < 0.7:
		return StyleYellow
	default:
		return StyleBold
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
