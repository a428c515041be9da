package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/arenacore/types"
)

// panelHeight is the rendered height of the stats panel, borders included.
const panelHeight = 7

// phasePips renders the combat phase indicator, e.g. "●●○○○".
func phasePips(phase, count int) string {
	var b strings.Builder
	for i := 0; i < count; i++ {
		if i <= phase {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}

// activityLine describes what the character is doing right now.
func activityLine(snap types.Snapshot) string {
	switch {
	case snap.Rest.Resting:
		return fmt.Sprintf("Resting (%s)", snap.Rest.Activity)
	case snap.Quest == nil:
		return "Searching for a quest..."
	case snap.Quest.Kind == types.QuestStaged:
		return fmt.Sprintf("%s vs %s: %s", snap.Quest.Name, snap.Quest.Monster, snap.Quest.Stage)
	default:
		q := snap.Quest
		return fmt.Sprintf("%s vs %s: %s %d/%d", q.Name, q.Monster, q.Objective, q.ObjectiveCurrent, q.ObjectiveTarget)
	}
}

// renderPanel draws the stats panel with HP, stamina and quest bars.
func (m Model) renderPanel(snap types.Snapshot) string {
	p := snap.Pools
	l := snap.Ledger

	progressBar := m.bars.quest.ViewAs(0)
	switch {
	case snap.Rest.Resting:
		progressBar = m.bars.rest.ViewAs(snap.Rest.Progress / 100)
	case snap.Quest != nil:
		progressBar = m.bars.quest.ViewAs(snap.Quest.QuestProgress / 100)
	}

	rows := []string{
		styleTitle.Render(fmt.Sprintf("Level %d %s", l.Level, l.Rank)) +
			fmt.Sprintf("  exp %.0f/%.0f  power %d  status %s", l.Experience, l.ExperienceToNext, snap.CombatPower, l.Status),
		styleLabel.Render("HP") + m.bars.hp.ViewAs(fraction(p.HP, p.MaxHP)) + fmt.Sprintf(" %.0f/%.0f", p.HP, p.MaxHP),
		styleLabel.Render("Stamina") + m.bars.stamina.ViewAs(fraction(p.Stamina, p.StaminaMax)) + fmt.Sprintf(" %.0f/%.0f", p.Stamina, p.StaminaMax),
		styleLabel.Render("Phase") + phasePips(snap.Phase, 5) + "  " + activityLine(snap),
		styleLabel.Render("Progress") + progressBar,
	}
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return stylePanel.Width(width).Render(strings.Join(rows, "\n"))
}

// renderStatusBar produces a full-width inverted status line showing the
// arena title, the economy counters and the tick count.
func (m Model) renderStatusBar(snap types.Snapshot) string {
	l := snap.Ledger
	left := fmt.Sprintf(" %s", m.engine.Defs.Arena.Title)
	if m.paused {
		left += " | PAUSED"
	}
	right := fmt.Sprintf("Gold %d | Quests %d | Deaths %d | Items %d | T:%d ",
		l.GoldEarned, l.QuestsCompleted, l.TotalDeaths, l.ItemsFound, snap.Tick)
	if lipgloss.Width(left)+lipgloss.Width(right)+2 > m.width {
		right = fmt.Sprintf("G:%d T:%d ", l.GoldEarned, snap.Tick)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

func fraction(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}
