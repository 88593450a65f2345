package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func pollStatus(client *ControlClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.Status()
		if err != nil {
			return StatusUpdateMsg{Err: err}
		}
		limits, err := client.Limits()
		return StatusUpdateMsg{Status: status, Limits: limits, Err: err}
	}
}

func triggerBatch(client *ControlClient) tea.Cmd {
	return func() tea.Msg {
		result, err := client.TriggerBatch()
		return BatchTriggeredMsg{Result: result, Err: err}
	}
}

func resetBreaker(client *ControlClient, source string) tea.Cmd {
	return func() tea.Msg {
		err := client.ResetBreaker(source)
		return BreakerResetMsg{Source: source, Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
