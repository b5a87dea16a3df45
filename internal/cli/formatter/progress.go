package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderBar renders an unstyled, unbracketed bar of width cells filled to pct.
func RenderBar(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)
	filled := min(int(pct*float64(width)), width)
	return strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
}

// RenderProgress renders a progress bar like [████░░░░] 45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	bar := RenderBar(pct, width)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// RenderCountdown renders the seconds left out of total, turning yellow in
// the last third and red in the last ten seconds.
func RenderCountdown(secs, total int) string {
	text := fmt.Sprintf("%2ds", secs)
	switch {
	case secs <= 10:
		return StyleRed.Bold(true).Render(text)
	case total > 0 && secs*3 <= total:
		return StyleYellow.Render(text)
	default:
		return StyleGreen.Render(text)
	}
}
