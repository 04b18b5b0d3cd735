package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned when a secure parameter is read or
// written without PRNOTIFIER_SECRET_KEY configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PRNOTIFIER_SECRET_KEY")

// ParameterStore defines the driven port for the parameter service.
// Secure values are encrypted by the adapter; this interface operates on
// plaintext at the domain boundary.
type ParameterStore interface {
	// Put stores or replaces a parameter.
	Put(ctx context.Context, param model.Parameter) error

	// GetByPath returns every parameter whose name starts with path, ordered
	// by name. An empty result is not an error.
	GetByPath(ctx context.Context, path string) ([]model.Parameter, error)
}
