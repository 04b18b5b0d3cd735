package driven

import (
	"context"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

// GitHubClient defines the driven port for reading from the GitHub API.
type GitHubClient interface {
	// FetchPullRequests returns the pull requests of a repository in the given
	// state ("open", "closed" or "all"), following pagination.
	FetchPullRequests(ctx context.Context, repoFullName string, state string) ([]model.PullRequest, error)

	// AuthenticatedUser returns the login of the user that owns the token.
	AuthenticatedUser(ctx context.Context) (string, error)
}

// GitHubClientFactory builds a GitHubClient authenticated with token.
type GitHubClientFactory func(token string) (GitHubClient, error)
