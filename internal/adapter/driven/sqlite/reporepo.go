package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface. Rows
// of the repositories table are written by whatever maintains the mapping.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Scan returns up to limit repository names ordered by full_name, strictly
// after startKey. One extra row is read to decide whether another page exists;
// NextToken is the last name of this page when it does.
func (r *RepoRepo) Scan(ctx context.Context, startKey string, limit int) (model.RepositoryPage, error) {
	if limit <= 0 {
		return model.RepositoryPage{}, fmt.Errorf("scan repositories: limit must be positive, got %d", limit)
	}

	const query = `SELECT full_name FROM repositories WHERE full_name > ? ORDER BY full_name LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, startKey, limit+1)
	if err != nil {
		return model.RepositoryPage{}, fmt.Errorf("scan repositories after %q: %w", startKey, err)
	}
	defer rows.Close()

	names := make([]string, 0, limit)
	more := false
	for rows.Next() {
		if len(names) == limit {
			more = true
			break
		}
		var name string
		if err := rows.Scan(&name); err != nil {
			return model.RepositoryPage{}, fmt.Errorf("scan repository row: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return model.RepositoryPage{}, fmt.Errorf("iterate repositories: %w", err)
	}

	page := model.RepositoryPage{Names: names}
	if more {
		page.NextToken = names[len(names)-1]
	}

	return page, nil
}
