package components

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/vuequest/internal/llm"
	"github.com/abhisek/vuequest/internal/store"
	"github.com/abhisek/vuequest/internal/ui/theme"
)

const modelColumnWidth = 32

func newTable(p theme.Palette, headers ...string) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Foreground(p.Primary).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(p.Border)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

// LLMEventTable lists logged requests, newest first.
func LLMEventTable(events []store.LLMRequestEventRecord, p theme.Palette) string {
	t := newTable(p, "ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
	for _, e := range events {
		ok := p.Done().Render("✓")
		if !e.Success {
			ok = lipgloss.NewStyle().Foreground(p.Error).Render("✗")
		}
		t.Row(
			strconv.Itoa(e.ID),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Purpose,
			clip(e.Model, modelColumnWidth),
			strconv.Itoa(e.InputTokens),
			strconv.Itoa(e.OutputTokens),
			strconv.FormatInt(e.LatencyMs, 10),
			ok,
		)
	}
	return t.Render()
}

// LLMUsageReport renders token totals per purpose and the estimated spend
// per model. Models without a known price are listed but not summed.
func LLMUsageReport(byPurpose, byModel []store.LLMUsageStats, p theme.Palette) string {
	var b strings.Builder

	b.WriteString(p.Title().Render("Usage by purpose"))
	b.WriteString("\n")
	usage := newTable(p, "Purpose", "Calls", "Input", "Output", "Total", "Avg ms")
	var calls, in, out int
	for _, st := range byPurpose {
		usage.Row(st.Purpose, strconv.Itoa(st.Calls), strconv.Itoa(st.InputTokens),
			strconv.Itoa(st.OutputTokens), strconv.Itoa(st.InputTokens+st.OutputTokens),
			strconv.FormatInt(st.AvgLatencyMs, 10))
		calls += st.Calls
		in += st.InputTokens
		out += st.OutputTokens
	}
	usage.Row("TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), strconv.Itoa(in+out), "")
	b.WriteString(usage.Render())

	if len(byModel) == 0 {
		return b.String()
	}

	b.WriteString("\n\n")
	b.WriteString(p.Title().Render("Estimated cost (USD)"))
	b.WriteString("\n")
	costs := newTable(p, "Model", "Calls", "Input", "Output", "Cost")
	var total float64
	var unpriced []string
	for _, mu := range byModel {
		price := "?"
		if c := llm.LookupCost(mu.Model); c != nil {
			usd := c.Cost(mu.InputTokens, mu.OutputTokens)
			total += usd
			price = FormatUSD(usd)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		costs.Row(clip(mu.Model, modelColumnWidth), strconv.Itoa(mu.Calls),
			strconv.Itoa(mu.InputTokens), strconv.Itoa(mu.OutputTokens), price)
	}
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	costs.Row(label, "", "", "", FormatUSD(total))
	b.WriteString(costs.Render())

	if len(unpriced) > 0 {
		b.WriteString("\n")
		b.WriteString(p.Hint().Render("Pricing unavailable for: " + strings.Join(unpriced, ", ")))
	}
	return b.String()
}

// FormatUSD keeps four decimals for sub-cent amounts.
func FormatUSD(usd float64) string {
	if usd > 0 && usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
