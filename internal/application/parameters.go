package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// ErrParameterMissing is returned when a required parameter has no value in
// the parameter service nor in the configured fallback.
var ErrParameterMissing = errors.New("required parameter missing")

// ErrInvalidParameter is returned by Set for an unusable name or an empty value.
var ErrInvalidParameter = errors.New("invalid parameter")

// Parameter name suffixes below the configured path.
const (
	ParamGitHubToken = "GithubToken"
	ParamWebhookURL  = "WebhookUrl"
	ParamTargetUser  = "TargetUser"
)

// ParameterLoader reads the run parameters from the parameter service and
// writes them below the same path. Stored values take priority over fallback
// values.
type ParameterLoader struct {
	store    driven.ParameterStore
	path     string
	fallback model.Parameters
}

// NewParameterLoader creates a ParameterLoader reading names below path, which
// must already be normalised with leading and trailing slashes.
func NewParameterLoader(store driven.ParameterStore, path string, fallback model.Parameters) *ParameterLoader {
	return &ParameterLoader{store: store, path: path, fallback: fallback}
}

// Load fetches all parameters below the path and returns the typed result.
// GitHubToken and WebhookURL are required. logger is the caller's run logger.
func (l *ParameterLoader) Load(ctx context.Context, logger *slog.Logger) (model.Parameters, error) {
	stored, err := l.store.GetByPath(ctx, l.path)
	if err != nil {
		return model.Parameters{}, fmt.Errorf("reading parameters under %s: %w", l.path, err)
	}

	byName := make(map[string]string, len(stored))
	for _, p := range stored {
		byName[p.Name] = p.Value
	}

	pick := func(suffix, fallback string) string {
		if v := byName[l.path+suffix]; v != "" {
			return v
		}
		return fallback
	}

	params := model.Parameters{
		GitHubToken: pick(ParamGitHubToken, l.fallback.GitHubToken),
		WebhookURL:  pick(ParamWebhookURL, l.fallback.WebhookURL),
		TargetUser:  pick(ParamTargetUser, l.fallback.TargetUser),
	}

	if params.GitHubToken == "" {
		return model.Parameters{}, fmt.Errorf("%w: %s%s", ErrParameterMissing, l.path, ParamGitHubToken)
	}
	if params.WebhookURL == "" {
		return model.Parameters{}, fmt.Errorf("%w: %s%s", ErrParameterMissing, l.path, ParamWebhookURL)
	}

	logger.Debug("parameters loaded",
		"path", l.path,
		"stored", len(stored),
		"target_user", params.TargetUser,
	)

	return params, nil
}

// Set stores value as <path><name>. name is the suffix below the path, such as
// ParamGitHubToken, and must not contain a slash. Secure values are encrypted
// by the store.
func (l *ParameterLoader) Set(ctx context.Context, name, value string, secure bool) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: name %q must be a single path segment", ErrInvalidParameter, name)
	}
	if value == "" {
		return fmt.Errorf("%w: empty value for %s", ErrInvalidParameter, name)
	}

	fullName := l.path + name
	if err := l.store.Put(ctx, model.Parameter{Name: fullName, Value: value, Secure: secure}); err != nil {
		return fmt.Errorf("storing parameter %s: %w", fullName, err)
	}
	return nil
}
