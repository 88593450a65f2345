package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case BatchTriggeredMsg:
		return m.handleBatchTriggered(msg)
	case BreakerResetMsg:
		return m.handleBreakerReset(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client), tickCmd())
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "b", "B":
		m = m.addLog("triggering manual batch...")
		return m, triggerBatch(m.Client)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.sourceIDs())-1 {
			m.cursor++
		}
		return m, nil
	case "r", "R":
		ids := m.sourceIDs()
		if m.cursor < len(ids) {
			source := ids[m.cursor]
			m = m.addLog(fmt.Sprintf("resetting breaker for %s...", source))
			return m, resetBreaker(m.Client, source)
		}
	}
	return m, nil
}

func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}
	m.Connected = true
	m.Err = nil
	m.Status = msg.Status
	m.Limits = msg.Limits
	if m.cursor >= len(m.sourceIDs()) {
		m.cursor = 0
	}
	return m, nil
}

func (m Model) handleBatchTriggered(msg BatchTriggeredMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.addLog(fmt.Sprintf("batch trigger failed: %v", msg.Err)), nil
	}
	m.LastTrigger = msg.Result
	return m.addLog(fmt.Sprintf("batch complete: %d articles, %d briefs",
		msg.Result.ArticlesProcessed, msg.Result.BriefsGenerated)), nil
}

func (m Model) handleBreakerReset(msg BreakerResetMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.addLog(fmt.Sprintf("reset %s failed: %v", msg.Source, msg.Err)), nil
	}
	return m.addLog(fmt.Sprintf("breaker for %s reset", msg.Source)), pollStatus(m.Client)
}
