package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vuequest/internal/challenge"
	"github.com/abhisek/vuequest/internal/progress"
	"github.com/abhisek/vuequest/internal/ui/theme"
)

// ProgressSource is the read side of the progress store.
type ProgressSource interface {
	Stats() progress.Stats
	Catalog() progress.Catalog
	IsItemComplete(id string) bool
	IsAchievementUnlocked(id string) bool
}

// ProgressReport renders the section checklist, overall bars and badges.
func ProgressReport(src ProgressSource, p theme.Palette, width int) string {
	stats := src.Stats()
	cat := src.Catalog()

	var b strings.Builder
	b.WriteString(p.Title().Render("Your Vue Journey"))
	b.WriteString("\n\n")

	for _, s := range cat.Sections {
		mark, style := "○", p.Pending()
		if src.IsItemComplete(s.ID) {
			mark, style = "●", p.Done()
		}
		fmt.Fprintf(&b, "%s %s %s  %s\n", style.Render(mark), s.Icon, p.Body().Render(s.Title), p.Hint().Render(s.EstimatedTime))
	}

	b.WriteString("\n")
	b.WriteString(NewProgressBar("Sections    ", stats.CompletionPercentage, width, p).View())
	b.WriteString("\n")
	b.WriteString(NewProgressBar("Achievements", stats.AchievementPercentage, width, p).View())
	b.WriteString("\n\n")

	var badges []string
	for _, a := range cat.Achievements {
		if src.IsAchievementUnlocked(a.ID) {
			badges = append(badges, a.Icon+" "+a.Title)
		}
	}
	if len(badges) == 0 {
		b.WriteString(p.Hint().Render("No achievements yet"))
	} else {
		b.WriteString(p.Body().Render(strings.Join(badges, "  ")))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s",
		p.Hint().Render("Time: "+stats.TimeSpent),
		p.Hint().Render(fmt.Sprintf("Streak: %d day(s)", stats.CurrentStreak)))

	return p.Card().Width(width).Render(b.String())
}

// ChallengeCard renders a generated challenge for the terminal.
func ChallengeCard(c challenge.Challenge, p theme.Palette, width int) string {
	var b strings.Builder
	b.WriteString(p.Title().Render(c.Title))
	b.WriteString("\n")
	b.WriteString(p.Hint().Render(fmt.Sprintf("%s · difficulty %g/10 · %s · %d pts",
		c.Metadata.Topic, c.Difficulty, c.EstimatedTime, c.GameElements.PointsReward)))
	b.WriteString("\n\n")
	b.WriteString(p.Body().Render(c.Description))
	b.WriteString("\n")

	if len(c.Instructions) > 0 {
		b.WriteString("\n")
		for i, step := range c.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	if c.StarterCode != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(p.Accent).Render(c.StarterCode))
		b.WriteString("\n")
	}
	if len(c.GameElements.BonusObjectives) > 0 {
		b.WriteString("\n")
		b.WriteString(p.Hint().Render("Bonus: " + strings.Join(c.GameElements.BonusObjectives, "; ")))
	}

	return p.Card().Width(width).Render(strings.TrimRight(b.String(), "\n"))
}
