package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// RepositoryLister reads every repository name from the durable mapping.
type RepositoryLister struct {
	store    driven.RepoStore
	pageSize int
}

// NewRepositoryLister creates a RepositoryLister scanning pageSize names per request.
func NewRepositoryLister(store driven.RepoStore, pageSize int) *RepositoryLister {
	return &RepositoryLister{store: store, pageSize: pageSize}
}

// ListNames scans the store page by page, passing each continuation token to
// the next request, until a page comes back without one.
func (l *RepositoryLister) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	token := ""

	for {
		page, err := l.store.Scan(ctx, token, l.pageSize)
		if err != nil {
			return nil, fmt.Errorf("scanning repositories: %w", err)
		}
		names = append(names, page.Names...)

		if page.NextToken == "" {
			return names, nil
		}
		if page.NextToken == token {
			return nil, fmt.Errorf("scanning repositories: continuation token %q did not advance", token)
		}
		token = page.NextToken
	}
}
