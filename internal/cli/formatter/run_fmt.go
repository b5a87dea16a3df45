package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/domain"
)

const tierProgressBarWidth = 20

// FormatHistory renders recent runs as a table, newest first.
func FormatHistory(runs []*domain.CleanupRun, maxTier int, now time.Time) string {
	if len(runs) == 0 {
		return Dim("No cleanup runs recorded yet. Start one with `dagatna play`.") + "\n"
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			TruncID(r.ID),
			HumanTimestampFrom(r.StartedAt, now),
			strconv.Itoa(r.ItemsCleared),
			TierBadge(r.RewardTier, maxTier),
			string(r.Source),
		})
	}
	return RenderTable([]string{"ID", "STARTED", "CLEARED", "TIER", "SOURCE"}, rows)
}

// FormatRunDetail renders one run with its claim attempts.
func FormatRunDetail(run *domain.CleanupRun, claims []*domain.RewardClaim, maxTier int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Dim("Run"), run.ID)
	fmt.Fprintf(&b, "%s  %s\n", Dim("Started"), run.StartedAt.Local().Format("Jan 2, 2006 15:04:05"))
	fmt.Fprintf(&b, "%s  %d\n", Dim("Cleared"), run.ItemsCleared)
	fmt.Fprintf(&b, "%s  %s\n", Dim("Tier"), TierBadge(run.RewardTier, maxTier))
	if run.Source == domain.RunSourceSimulate {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Source"), StyleYellow.Render("simulated, not claimable"))
	}
	if run.Seed != 0 {
		fmt.Fprintf(&b, "%s  %d\n", Dim("Seed"), run.Seed)
	}
	if len(claims) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	rows := make([][]string, 0, len(claims))
	for _, c := range claims {
		detail := c.Reference
		if c.Status == domain.ClaimFailed {
			detail = StyleRed.Render(c.Error)
		}
		rows = append(rows, []string{
			TruncID(c.ID),
			strconv.Itoa(c.Amount),
			ClaimStatusPill(c.Status),
			detail,
		})
	}
	b.WriteString(RenderTable([]string{"CLAIM", "AMOUNT", "STATUS", "DETAIL"}, rows))
	return b.String()
}

// FormatResult renders a finished session summary.
func FormatResult(res cleanup.Result, tiers []cleanup.Tier, rewardCap int) string {
	return formatOutcome(res, tiers, rewardCap, "Claimable")
}

func formatOutcome(res cleanup.Result, tiers []cleanup.Tier, rewardCap int, label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Bold(strconv.Itoa(res.ItemsCleared)), Dim("items cleared"))
	fmt.Fprintf(&b, "%s %s\n", Dim("Reward tier"), TierBadge(res.RewardTier, len(tiers)))

	amount := cleanup.ClaimAmount(res.RewardTier, rewardCap)
	if amount > 0 {
		fmt.Fprintf(&b, "%s %s\n", Dim(label), StyleGreen.Render(strconv.Itoa(amount)+" fish food"))
	} else {
		p := cleanup.ProgressFor(res.ItemsCleared, tiers)
		fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf("Clear %d items to earn a reward.", p.NextTarget)))
	}
	return b.String()
}

// FormatTierProgress renders the bar toward the next tier threshold.
func FormatTierProgress(cleared int, tiers []cleanup.Tier) string {
	p := cleanup.ProgressFor(cleared, tiers)
	if p.Maxed {
		return StylePurple.Render(RenderBar(1, tierProgressBarWidth)) + " " + StylePurple.Render("top tier")
	}
	return RenderProgress(p.Fraction, tierProgressBarWidth) + Dim(fmt.Sprintf("  next at %d", p.NextTarget))
}

// FormatSimReport renders a headless simulation summary.
func FormatSimReport(rep cleanup.SimReport, seed uint64, tiers []cleanup.Tier, rewardCap int) string {
	var b strings.Builder
	b.WriteString(formatOutcome(rep.Result, tiers, rewardCap, "Worth in play"))
	b.WriteString("\n")
	rows := [][]string{
		{"seed", strconv.FormatUint(seed, 10)},
		{"clear attempts", strconv.Itoa(rep.Attempts)},
		{"missed", strconv.Itoa(rep.Misses)},
		{"spawned", strconv.Itoa(rep.Spawned)},
		{"expired", strconv.Itoa(rep.Expired)},
		{"peak pool", strconv.Itoa(rep.MaxPool)},
	}
	b.WriteString(RenderTable([]string{"STAT", "VALUE"}, rows))
	return b.String()
}

// FormatTiers renders the reward table.
func FormatTiers(tiers []cleanup.Tier, rewardCap int) string {
	rows := make([][]string, 0, len(tiers))
	for _, t := range tiers {
		rows = append(rows, []string{
			fmt.Sprintf("%d+", t.MinCleared),
			TierBadge(t.Reward, len(tiers)),
			strconv.Itoa(cleanup.ClaimAmount(t.Reward, rewardCap)),
		})
	}
	out := RenderTable([]string{"CLEARED", "TIER", "CLAIM"}, rows)
	return out + Dim(fmt.Sprintf("Claims are capped at %d per run.", rewardCap)) + "\n"
}

// FormatBalance renders the total of submitted claims.
func FormatBalance(total int) string {
	return fmt.Sprintf("%s %s\n", Bold(strconv.Itoa(total)), Dim("fish food claimed"))
}
