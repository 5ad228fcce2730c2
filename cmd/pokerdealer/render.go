package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/deck"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	secretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	redCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	blackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

func formatCard(c deck.Card) string {
	text := c.Rank().String() + c.Suit().Symbol()
	if c.Suit().IsRed() {
		return redCardStyle.Render(text)
	}
	return blackCardStyle.Render(text)
}

func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return secretStyle.Render("-")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = formatCard(c)
	}
	return strings.Join(parts, " ")
}

func renderTable(t *dealer.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Table %d  hand %d  %s", t.ID, t.HandRef, t.Discipline)))

	for _, phase := range []dealer.Phase{dealer.Flop, dealer.Turn, dealer.River} {
		st, err := t.Street(phase)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-6s", phase)),
			formatCards(st.Cards),
			secretStyle.Render(fmt.Sprintf("secret %d", st.Secret)))
	}
	b.WriteString("\n")

	for _, p := range t.Players {
		fmt.Fprintf(&b, "%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-12s", p.Username)),
			formatCards(p.Hand[:]),
			secretStyle.Render(fmt.Sprintf("hand %d  shares %d/%d/%d", p.HandSecret, p.FlopShare, p.TurnShare, p.RiverShare)))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderLastHand(l *dealer.LastHandLog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Table %d  hand %d", l.TableID, l.HandRef)))

	board, _ := deck.ParseCards(strings.Join(l.CommunityCards, ""))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("board "), formatCards(board))
	for _, p := range l.ShowdownPlayers {
		cards, _ := deck.ParseCards(strings.Join(p.Hand, ""))
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", p.Username)), formatCards(cards))
	}
	if l.ShowdownAt != nil {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("showdown"), l.ShowdownAt.Format("2006-01-02 15:04:05"))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
