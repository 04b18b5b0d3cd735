// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

const (
	pullsPerPage      = 100
	rateWarnThreshold = 100
)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// An empty baseURL targets github.com; otherwise it is treated as a GitHub
// Enterprise Server URL.
func NewClient(token, baseURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URL %q: %w", baseURL, err)
		}
	}

	return &Client{gh: client}, nil
}

// NewFactory returns a driven.GitHubClientFactory that builds clients against baseURL.
func NewFactory(baseURL string) driven.GitHubClientFactory {
	return func(token string) (driven.GitHubClient, error) {
		return NewClient(token, baseURL)
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchPullRequests returns every pull request of repoFullName in the given
// state ("open", "closed" or "all"), walking the Link-header pages in the
// order the API serves them.
func (c *Client) FetchPullRequests(ctx context.Context, repoFullName string, state string) ([]model.PullRequest, error) {
	owner, name, err := parseRepoName(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListOptions{
		State:       state,
		ListOptions: gh.ListOptions{PerPage: pullsPerPage},
	}

	var result []model.PullRequest
	for page := 1; page != 0; {
		opts.Page = page
		prs, resp, err := c.gh.PullRequests.List(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("listing %s pull requests, page %d: %w", repoFullName, page, err)
		}
		for _, pr := range prs {
			result = append(result, mapPullRequest(pr, repoFullName))
		}
		traceRate(resp, "pulls "+repoFullName, len(prs))
		page = resp.NextPage
	}

	if result == nil {
		result = []model.PullRequest{}
	}
	return result, nil
}

// AuthenticatedUser returns the login of the user the token belongs to.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("fetching authenticated user: %w", err)
	}

	traceRate(resp, "user", 1)

	login := user.GetLogin()
	if login == "" {
		return "", errors.New("fetching authenticated user: empty login")
	}
	return login, nil
}

// traceRate records the remaining core quota after a call and warns once it
// drops under rateWarnThreshold.
func traceRate(resp *gh.Response, call string, items int) {
	if resp == nil {
		return
	}
	rate := resp.Rate

	slog.Debug("github call", "call", call, "items", items, "remaining", rate.Remaining, "limit", rate.Limit)

	if rate.Limit == 0 || rate.Remaining >= rateWarnThreshold {
		return
	}
	slog.Warn("github quota running low",
		"call", call,
		"remaining", rate.Remaining,
		"resets_in", time.Until(rate.Reset.Time).Round(time.Second),
	)
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
// The canonical base repository name is preferred over the requested one so
// renamed or differently-cased entries display as GitHub spells them.
func mapPullRequest(pr *gh.PullRequest, repoFullName string) model.PullRequest {
	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, r := range pr.RequestedReviewers {
		reviewers = append(reviewers, r.GetLogin())
	}

	fullName := pr.GetBase().GetRepo().GetFullName()
	if fullName == "" {
		fullName = repoFullName
	}

	return model.PullRequest{
		Number:             pr.GetNumber(),
		RepoFullName:       fullName,
		Title:              pr.GetTitle(),
		Author:             pr.GetUser().GetLogin(),
		IsDraft:            pr.GetDraft(),
		URL:                pr.GetHTMLURL(),
		CreatedAt:          pr.GetCreatedAt().Time,
		RequestedReviewers: reviewers,
	}
}

// parseRepoName splits "owner/name". Names with an empty part or more than
// one slash are rejected before any request is made.
func parseRepoName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return owner, name, nil
}
