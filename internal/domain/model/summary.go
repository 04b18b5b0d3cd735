package model

// RunSummary reports what a single notification run did.
type RunSummary struct {
	RunID        string `json:"run_id"`
	Repositories int    `json:"repositories"`
	Skipped      int    `json:"skipped"`
	Targets      int    `json:"targets"`
	PullRequests int    `json:"pull_requests"`
	Notified     bool   `json:"notified"`
}
