package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
	"github.com/Lepied/DiceSoul-sub001/internal/journal"
	"github.com/Lepied/DiceSoul-sub001/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25D94"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))

	dieStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			Align(lipgloss.Center)
)

var stateColors = map[dice.State]lipgloss.Color{
	dice.Normal:    lipgloss.Color("#FAFAFA"),
	dice.Locked:    lipgloss.Color("#F2C94C"),
	dice.Preserved: lipgloss.Color("#56CCF2"),
}

// renderDie draws one die face with its index and state underneath.
func renderDie(i int, t dice.Type, value int, state dice.State, lockTurns int) string {
	face := dieStyle.BorderForeground(stateColors[state]).Render(fmt.Sprintf("%2d", value))
	label := fmt.Sprintf("#%d %s", i, t)
	switch state {
	case dice.Locked:
		if lockTurns > 0 {
			label += fmt.Sprintf(" L%d", lockTurns)
		} else {
			label += " L"
		}
	case dice.Preserved:
		label += " P"
	}
	return lipgloss.JoinVertical(lipgloss.Center, face, infoStyle.Render(label))
}

// renderHand lays the dice out left to right.
func renderHand(v session.View) string {
	if len(v.Hand.Dice) == 0 {
		return infoStyle.Render("No hand dealt. Try: deal 5d6")
	}
	faces := make([]string, len(v.Hand.Dice))
	for i, d := range v.Hand.Dice {
		faces[i] = renderDie(i, d.Type, d.Value, d.State, d.LockDuration)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, faces...)
}

func renderView(v session.View, width int) string {
	var b strings.Builder
	b.WriteString(renderHand(v))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Turn %d   Rolls %d/%d", v.Hand.Turn, v.Hand.RollCount, v.Hand.MaxRolls)
	if v.Hand.Rolling {
		b.WriteString("   rolling...")
	}
	b.WriteString("\n")
	shield := ""
	if v.Player.Shield {
		shield = "   [shield]"
	}
	fmt.Fprintf(&b, "Health %d/%d   Gold %d%s\n", v.Player.Health, v.Player.MaxHealth, v.Player.Gold, shield)
	if v.Fighting {
		fmt.Fprintf(&b, "Zone %d, wave %d: enemy health %d\n", v.Zone, v.Wave, v.Player.EnemyHealth)
	} else {
		fmt.Fprintf(&b, "Zone %d, no wave in progress\n", v.Zone)
	}
	b.WriteString("Relics: " + formatRelics(v.Relics))
	if v.Charges > 0 {
		fmt.Fprintf(&b, "   (preserve charges %d)", v.Charges)
	}

	style := stateBoxStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(b.String())
}

func renderRunState(s *journal.RunState, events int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (seed %d)\n", s.RunID, s.Seed)
	fmt.Fprintf(&b, "Processed %d events.\n\n", events)
	fmt.Fprintf(&b, "Turn %d   Hands dealt %d   Total rolls %d\n", s.Turn, s.HandsDealt, s.TotalRolls)
	fmt.Fprintf(&b, "Health %d/%d   Gold %d\n", s.Health, s.MaxHealth, s.Gold)
	if len(s.Hand) > 0 {
		parts := make([]string, len(s.Hand))
		for i, v := range s.Hand {
			parts[i] = fmt.Sprintf("%s=%d", s.Dice[i], v)
		}
		fmt.Fprintf(&b, "Hand: %s\n", strings.Join(parts, " "))
	} else {
		b.WriteString("Hand: empty\n")
	}
	b.WriteString("Relics: " + formatRelics(s.Relics))
	return stateBoxStyle.Render(b.String())
}

func formatRelics(relics map[string]int) string {
	if len(relics) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(relics))
	for id := range relics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s x%d", id, relics[id])
	}
	return strings.Join(parts, ", ")
}
