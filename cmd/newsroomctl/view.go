package main

import (
	"fmt"
	"strings"
	"time"

	"newsroom/types"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("newsroomctl"))
	b.WriteString("\n\n")

	if !m.Connected {
		msg := "connecting to control surface..."
		if m.Err != nil {
			msg = fmt.Sprintf("not connected: %v", m.Err)
		}
		b.WriteString(ErrorStyle.Render(msg))
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render("Press 'q' or Ctrl+C to quit"))
		return b.String()
	}

	if m.Status != nil {
		state := StatusStyle.Render("idle")
		if m.Status.IsProcessing {
			state = HighlightStyle.Render("processing")
		}
		b.WriteString(fmt.Sprintf("state: %s   queue: %d   last batch: %s\n",
			state, m.Status.QueueSize, formatTime(m.Status.LastProcessedAt)))
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render("Sources"))
	b.WriteString("\n")
	b.WriteString(m.renderSources())
	b.WriteString("\n")

	if m.Limits != nil {
		b.WriteString(InfoStyle.Render("Daily limits"))
		b.WriteString("\n")
		b.WriteString(m.renderLimits())
		b.WriteString("\n")
	}

	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("Activity"))
		b.WriteString("\n")
		for _, line := range m.Logs {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render("↑/↓ select source · r reset breaker · b trigger batch · q quit"))
	return b.String()
}

func (m Model) renderSources() string {
	ids := m.sourceIDs()
	if len(ids) == 0 {
		return InfoStyle.Render("  (no sources with breaker state)") + "\n"
	}

	var b strings.Builder
	for i, id := range ids {
		state := m.Status.Circuit[id]
		line := fmt.Sprintf("  %-24s failures=%-3d open=%v", id, state.Failures, state.Open)
		if state.Open {
			line = ErrorStyle.Render(line)
		}
		if i == m.cursor {
			line = SelectedRowStyle.Render(fmt.Sprintf("> %-24s failures=%-3d open=%v", id, state.Failures, state.Open))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLimits() string {
	var b strings.Builder
	for _, cat := range types.Categories {
		already := m.Limits.AlreadyToday[cat]
		remaining := m.Limits.Remaining[cat]
		b.WriteString(fmt.Sprintf("  %-16s today=%-4d remaining=%-4d\n", cat, already, remaining))
	}
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}
