package application_test

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	mu        sync.Mutex
	fetchPRs  func(ctx context.Context, repoFullName string) ([]model.PullRequest, error)
	authUser  func(ctx context.Context) (string, error)
	fetched   []string
	userCalls int
}

func (m *mockGitHubClient) FetchPullRequests(ctx context.Context, repoFullName string, _ string) ([]model.PullRequest, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, repoFullName)
	m.mu.Unlock()
	if m.fetchPRs == nil {
		return []model.PullRequest{}, nil
	}
	return m.fetchPRs(ctx, repoFullName)
}

func (m *mockGitHubClient) AuthenticatedUser(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.userCalls++
	m.mu.Unlock()
	if m.authUser == nil {
		return "testuser", nil
	}
	return m.authUser(ctx)
}

// mockRepoStore serves names in fixed-size pages, recording each start key.
type mockRepoStore struct {
	names     []string
	err       error
	startKeys []string
}

func (m *mockRepoStore) Scan(_ context.Context, startKey string, limit int) (model.RepositoryPage, error) {
	m.startKeys = append(m.startKeys, startKey)
	if m.err != nil {
		return model.RepositoryPage{}, m.err
	}

	start := 0
	if startKey != "" {
		for i, n := range m.names {
			if n == startKey {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(m.names))

	page := model.RepositoryPage{Names: append([]string(nil), m.names[start:end]...)}
	if end < len(m.names) {
		page.NextToken = m.names[end-1]
	}
	return page, nil
}

type mockParameterStore struct {
	params  []model.Parameter
	err     error
	putErr  error
	gotPath string
}

func (m *mockParameterStore) Put(_ context.Context, p model.Parameter) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.params = append(m.params, p)
	return nil
}

func (m *mockParameterStore) GetByPath(_ context.Context, path string) ([]model.Parameter, error) {
	m.gotPath = path
	return m.params, m.err
}

type postCall struct {
	URL string
	Msg model.Message
}

type mockNotifier struct {
	mu      sync.Mutex
	calls   []postCall
	err     error
	entered chan struct{} // When non-nil, Post signals on entry.
	block   chan struct{} // When non-nil, Post waits for it to close.
}

func (m *mockNotifier) Post(_ context.Context, webhookURL string, msg model.Message) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, postCall{URL: webhookURL, Msg: msg})
	return m.err
}

func (m *mockNotifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
