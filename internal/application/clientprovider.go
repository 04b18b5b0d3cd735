package application

import (
	"sync"

	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// GitHubClientProvider hands out a GitHub client for a token. The client is
// built once and reused for as long as the token stays the same, so its
// conditional-request cache survives between runs. A changed token (rotated
// in the parameter service) swaps in a fresh client.
type GitHubClientProvider struct {
	mu      sync.Mutex
	factory driven.GitHubClientFactory
	token   string
	client  driven.GitHubClient
}

// NewGitHubClientProvider creates a provider that builds clients with factory.
func NewGitHubClientProvider(factory driven.GitHubClientFactory) *GitHubClientProvider {
	return &GitHubClientProvider{factory: factory}
}

// ClientFor returns the client for token, building it on first use or when
// the token differs from the previous call.
func (p *GitHubClientProvider) ClientFor(token string) (driven.GitHubClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil && p.token == token {
		return p.client, nil
	}

	client, err := p.factory(token)
	if err != nil {
		return nil, err
	}
	p.client = client
	p.token = token
	return client, nil
}
