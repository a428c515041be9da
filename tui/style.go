package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(9)

	styleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleQuest = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	styleReward = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleLoot = lipgloss.NewStyle().
			Foreground(lipgloss.Color("177"))

	styleDanger = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of a feed line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindQuest
	kindReward
	kindLoot
	kindDanger
	kindSystem
	kindTrace
)

// classifyLine determines what kind of feed line this is.
func classifyLine(line string) lineKind {
	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.Contains(lower, "level up"), strings.Contains(lower, "milestone"):
		return kindReward
	case strings.HasPrefix(lower, "found"), strings.Contains(lower, "legendary"), strings.Contains(lower, "rare find"), strings.Contains(lower, "equipped"):
		return kindLoot
	case strings.Contains(lower, "collapse"), strings.Contains(lower, "defeat"), strings.Contains(lower, "wins this round"):
		return kindDanger
	case strings.HasPrefix(lower, "new quest"), strings.Contains(lower, "complete"):
		return kindQuest
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindQuest:
		return styleQuest.Render(line)
	case kindReward:
		return styleReward.Render(line)
	case kindLoot:
		return styleLoot.Render(line)
	case kindDanger:
		return styleDanger.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
