package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// ErrRunInProgress is returned by Run when another run has not finished yet.
var ErrRunInProgress = errors.New("notification run already in progress")

// NotifyService runs the notification pipeline: load parameters, list
// repositories, filter pull requests, build the message and post it.
type NotifyService struct {
	params   *ParameterLoader
	repos    *RepositoryLister
	clients  *GitHubClientProvider
	builder  *MessageBuilder
	notifier driven.Notifier
	logger   *slog.Logger
	newRunID func() string

	running sync.Mutex
}

// NewNotifyService creates a NotifyService with all required dependencies.
func NewNotifyService(
	params *ParameterLoader,
	repos *RepositoryLister,
	clients *GitHubClientProvider,
	builder *MessageBuilder,
	notifier driven.Notifier,
	logger *slog.Logger,
) *NotifyService {
	return &NotifyService{
		params:   params,
		repos:    repos,
		clients:  clients,
		builder:  builder,
		notifier: notifier,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Run executes one notification run to completion. Only one run executes at a
// time; a concurrent call returns ErrRunInProgress immediately. Per-repository
// fetch failures are logged and skipped. Every other failure aborts the run
// and is returned.
func (s *NotifyService) Run(ctx context.Context) (model.RunSummary, error) {
	if !s.running.TryLock() {
		return model.RunSummary{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	summary := model.RunSummary{RunID: s.newRunID()}
	logger := s.logger.With("run_id", summary.RunID)

	if err := s.execute(ctx, logger, &summary); err != nil {
		logger.Error("notification run failed", "error", err)
		return summary, err
	}
	return summary, nil
}

func (s *NotifyService) execute(ctx context.Context, logger *slog.Logger, summary *model.RunSummary) error {
	start := time.Now()
	logger.Info("notification run started")

	params, err := s.params.Load(ctx, logger)
	if err != nil {
		return fmt.Errorf("loading parameters: %w", err)
	}

	repos, err := s.repos.ListNames(ctx)
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}
	summary.Repositories = len(repos)

	client, err := s.clients.ClientFor(params.GitHubToken)
	if err != nil {
		return fmt.Errorf("creating github client: %w", err)
	}

	user := params.TargetUser
	if user == "" {
		user, err = client.AuthenticatedUser(ctx)
		if err != nil {
			return fmt.Errorf("resolving target user: %w", err)
		}
	}
	logger = logger.With("target_user", user)

	outcomes := FilterRepositories(ctx, logger, client, repos, user)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("filtering pull requests: %w", err)
	}
	for _, o := range outcomes {
		if o.Skipped() {
			summary.Skipped++
		}
	}

	targets := CollectTargets(outcomes)
	summary.Targets = len(targets)
	for _, t := range targets {
		summary.PullRequests += len(t.PullRequests)
	}

	msg := s.builder.Build(targets)
	if msg == nil {
		logger.Info("notification run complete, nothing to report",
			"repos", summary.Repositories,
			"skipped", summary.Skipped,
			"duration", time.Since(start).Round(time.Millisecond),
		)
		return nil
	}

	if err := s.notifier.Post(ctx, params.WebhookURL, *msg); err != nil {
		return fmt.Errorf("notifying webhook: %w", err)
	}
	summary.Notified = true

	logger.Info("notification run complete",
		"repos", summary.Repositories,
		"skipped", summary.Skipped,
		"targets", summary.Targets,
		"pull_requests", summary.PullRequests,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// Start runs the pipeline every interval until ctx is canceled. The first run
// happens one interval after Start is called. Errors are logged, never returned.
func (s *NotifyService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("notification scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("notification scheduler stopped")
			return
		case <-ticker.C:
			// Run logs its own failures under the run id.
			if _, err := s.Run(ctx); errors.Is(err, ErrRunInProgress) {
				s.logger.Info("scheduled run skipped, previous run still in progress")
			}
		}
	}
}
