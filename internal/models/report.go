package models

import "time"

// IssueResult records the outcome of one VIN's sync iteration.
type IssueResult struct {
	IssueID  string      `json:"issue_id"`
	IssueKey string      `json:"issue_key"`
	VIN      string      `json:"vin"`
	Outcome  string      `json:"outcome"`
	Source   SourceLabel `json:"source,omitempty"`
}

// SyncReport summarizes one full sync run. It is assembled once after all
// per-VIN work has finished and is immutable afterwards.
type SyncReport struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	NoData       int           `json:"no_data"`
	Skipped      int           `json:"skipped"`
	Updated      int           `json:"updated"`
	UpdateFailed int           `json:"update_failed"`
	Results      []IssueResult `json:"results"`
}
