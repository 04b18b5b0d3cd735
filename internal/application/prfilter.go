// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// RepoOutcome is the result of filtering one repository. Exactly one of
// PullRequests (possibly empty) or Err is meaningful: a non-nil Err means the
// repository was skipped for that reason.
type RepoOutcome struct {
	RepoFullName string
	PullRequests []model.MatchedPullRequest
	Err          error
}

// Skipped reports whether the repository could not be processed.
func (o RepoOutcome) Skipped() bool {
	return o.Err != nil
}

// IsTarget reports whether pr is a non-draft pull request that user either
// opened or is currently requested to review. Logins compare case-insensitively.
func IsTarget(pr model.PullRequest, user string) bool {
	if pr.IsDraft {
		return false
	}
	if strings.EqualFold(pr.Author, user) {
		return true
	}
	return IsReviewRequestedFrom(pr, user)
}

// IsReviewRequestedFrom checks if a PR has a pending review request for the given user.
func IsReviewRequestedFrom(pr model.PullRequest, user string) bool {
	for _, reviewer := range pr.RequestedReviewers {
		if strings.EqualFold(reviewer, user) {
			return true
		}
	}
	return false
}

// RoleOf returns RoleOpener when user authored pr and RoleReviewer otherwise.
func RoleOf(pr model.PullRequest, user string) model.Role {
	if strings.EqualFold(pr.Author, user) {
		return model.RoleOpener
	}
	return model.RoleReviewer
}

// FilterRepositories lists the open pull requests of each repository in turn
// and keeps those that target user. A fetch failure for one repository is
// logged and recorded as a skipped outcome; the remaining repositories are
// still processed. Outcomes follow the order of repos.
//
// Once ctx is done the loop stops without recording further outcomes, so a
// canceled run is never mistaken for a run of skipped repositories. Callers
// check ctx.Err() afterwards.
func FilterRepositories(
	ctx context.Context,
	logger *slog.Logger,
	client driven.GitHubClient,
	repos []string,
	user string,
) []RepoOutcome {
	outcomes := make([]RepoOutcome, 0, len(repos))

	for _, repo := range repos {
		if ctx.Err() != nil {
			break
		}

		prs, err := client.FetchPullRequests(ctx, repo, "open")
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn("repository skipped", "repo", repo, "error", err)
			outcomes = append(outcomes, RepoOutcome{RepoFullName: repo, Err: err})
			continue
		}

		outcome := RepoOutcome{RepoFullName: repo, PullRequests: []model.MatchedPullRequest{}}
		for _, pr := range prs {
			if pr.RepoFullName != "" {
				outcome.RepoFullName = pr.RepoFullName
			}
			if !IsTarget(pr, user) {
				continue
			}
			outcome.PullRequests = append(outcome.PullRequests, model.MatchedPullRequest{
				Role:      RoleOf(pr, user),
				Number:    pr.Number,
				URL:       pr.URL,
				Title:     pr.Title,
				CreatedAt: pr.CreatedAt,
			})
		}

		logger.Debug("repository filtered",
			"repo", repo,
			"open", len(prs),
			"matched", len(outcome.PullRequests),
		)
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// CollectTargets turns outcomes into Targets, dropping skipped repositories
// and repositories without matches. Order is preserved.
func CollectTargets(outcomes []RepoOutcome) []model.Target {
	var targets []model.Target
	for _, o := range outcomes {
		if o.Skipped() || len(o.PullRequests) == 0 {
			continue
		}
		targets = append(targets, model.Target{
			RepoFullName: o.RepoFullName,
			PullRequests: o.PullRequests,
		})
	}
	return targets
}
