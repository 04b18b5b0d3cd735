package model

import "time"

// PullRequest is a read-only snapshot of an open GitHub pull request as
// returned by the list endpoint. It is never persisted.
type PullRequest struct {
	Number       int
	RepoFullName string // Canonical full name of the base repository.
	Title        string
	Author       string
	IsDraft      bool
	URL          string
	CreatedAt    time.Time

	RequestedReviewers []string
}

// MatchedPullRequest is a pull request that involves the target user, tagged
// with the role the user plays on it.
type MatchedPullRequest struct {
	Role      Role
	Number    int
	URL       string
	Title     string
	CreatedAt time.Time
}

// Target pairs a repository with its matching pull requests for one run.
// PullRequests is never empty.
type Target struct {
	RepoFullName string
	PullRequests []MatchedPullRequest
}
