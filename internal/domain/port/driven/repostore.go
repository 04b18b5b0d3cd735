package driven

import (
	"context"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

// RepoStore defines the driven port for the durable repository mapping.
// The mapping is maintained outside this program; the port is read-only.
// Scan returns up to limit names ordered by key, starting after startKey
// (empty for the first page). A non-empty NextToken is passed back as the
// startKey of the next call.
type RepoStore interface {
	Scan(ctx context.Context, startKey string, limit int) (model.RepositoryPage, error)
}
