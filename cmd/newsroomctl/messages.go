package main

import (
	"time"

	"newsroom/pipeline"
	"newsroom/types"
)

// StatusUpdateMsg carries the result of a status/limits poll.
type StatusUpdateMsg struct {
	Status *pipeline.Status
	Limits *pipeline.LimitsSnapshot
	Err    error
}

// TickMsg drives the poll loop.
type TickMsg struct {
	Time time.Time
}

// BatchTriggeredMsg carries the result of a manual batch trigger.
type BatchTriggeredMsg struct {
	Result *types.ProcessingResult
	Err    error
}

// BreakerResetMsg carries the result of a breaker reset.
type BreakerResetMsg struct {
	Source string
	Err    error
}
