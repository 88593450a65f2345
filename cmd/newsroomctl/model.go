package main

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"newsroom/pipeline"
	"newsroom/types"
)

// Model is the TUI client state: a thin poller over the daemon's
// internal control surface, not a workflow participant itself.
type Model struct {
	Client *ControlClient

	Connected bool
	Status    *pipeline.Status
	Limits    *pipeline.LimitsSnapshot
	Err       error

	LastTrigger *types.ProcessingResult
	Logs        []string

	cursor int
}

func NewModel(controlURL string) Model {
	return Model{
		Client: NewControlClient(controlURL),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(pollStatus(m.Client), tickCmd())
}

// sourceIDs returns the breaker registry's keys in stable sorted
// order, since Go map iteration order is not stable between polls.
func (m Model) sourceIDs() []string {
	if m.Status == nil {
		return nil
	}
	ids := make([]string, 0, len(m.Status.Circuit))
	for id := range m.Status.Circuit {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m Model) addLog(line string) Model {
	m.Logs = append(m.Logs, line)
	if len(m.Logs) > 8 {
		m.Logs = m.Logs[len(m.Logs)-8:]
	}
	return m
}
