package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/prnotifier/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/prnotifier/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/prnotifier/internal/adapter/driven/webhook"
	httphandler "github.com/ericfisherdev/prnotifier/internal/adapter/driving/http"
	"github.com/ericfisherdev/prnotifier/internal/application"
	"github.com/ericfisherdev/prnotifier/internal/config"
	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

const usage = "usage: prnotifier [serve | param set [-secure] <name> <value>]"

// command is the parsed invocation.
type command struct {
	mode  string // "run", "serve" or "param-set"
	param paramArgs
}

type paramArgs struct {
	name   string
	value  string
	secure bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// parseArgs maps the command line to a command. No arguments runs the
// pipeline once. -secure is accepted before or after the positional pair.
func parseArgs(args []string) (command, error) {
	switch {
	case len(args) == 0:
		return command{mode: "run"}, nil
	case len(args) == 1 && args[0] == "serve":
		return command{mode: "serve"}, nil
	case len(args) >= 2 && args[0] == "param" && args[1] == "set":
	default:
		return command{}, errors.New(usage)
	}

	fs := flag.NewFlagSet("param set", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	secure := fs.Bool("secure", false, "encrypt the value at rest")
	if err := fs.Parse(args[2:]); err != nil {
		return command{}, fmt.Errorf("%s: %w", usage, err)
	}

	rest := fs.Args()
	if len(rest) == 3 && (rest[2] == "-secure" || rest[2] == "--secure") {
		*secure = true
		rest = rest[:2]
	}
	if len(rest) != 2 {
		return command{}, errors.New(usage)
	}

	return command{
		mode:  "param-set",
		param: paramArgs{name: rest[0], value: rest[1], secure: *secure},
	}, nil
}

func run(args []string) error {
	cmd, err := parseArgs(args)
	if err != nil {
		return err
	}

	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"db_path", cfg.DBPath,
		"parameter_path", cfg.ParameterPath,
		"timezone", cfg.Location.String(),
		"github_base_url", cfg.GitHubBaseURL,
		"mode", cmd.mode,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database and run migrations on the writer connection.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("database ready", "path", db.Path())

	// 4. Wire adapters and services.
	repoStore := sqliteadapter.NewRepoRepo(db)
	paramStore := sqliteadapter.NewParameterRepo(db, cfg.SecretKey)

	fallback := model.Parameters{
		GitHubToken: cfg.GitHubToken,
		WebhookURL:  cfg.WebhookURL,
		TargetUser:  cfg.TargetUser,
	}
	params := application.NewParameterLoader(paramStore, cfg.ParameterPath, fallback)

	if cmd.mode == "param-set" {
		return setParameter(ctx, params, cmd.param, logger)
	}

	svc := application.NewNotifyService(
		params,
		application.NewRepositoryLister(repoStore, cfg.ScanPageSize),
		application.NewGitHubClientProvider(githubadapter.NewFactory(cfg.GitHubBaseURL)),
		application.NewMessageBuilder(cfg.Location, time.Now),
		webhook.NewClient(&http.Client{Timeout: 30 * time.Second}),
		logger,
	)

	if cmd.mode == "run" {
		summary, err := svc.Run(ctx)
		if err != nil {
			return fmt.Errorf("run %s: %w", summary.RunID, err)
		}
		return nil
	}

	return serveHTTP(ctx, cfg, svc, logger)
}

// setParameter writes one parameter below the configured path. The value is
// never logged.
func setParameter(ctx context.Context, params *application.ParameterLoader, p paramArgs, logger *slog.Logger) error {
	if err := params.Set(ctx, p.name, p.value, p.secure); err != nil {
		return err
	}
	logger.Info("parameter stored", "name", p.name, "secure", p.secure)
	return nil
}

// serveHTTP runs the trigger endpoint and, when configured, the in-process
// scheduler until ctx is canceled.
func serveHTTP(ctx context.Context, cfg *config.Config, svc *application.NotifyService, logger *slog.Logger) error {
	if cfg.ScheduleInterval > 0 {
		go svc.Start(ctx, cfg.ScheduleInterval)
	}

	handler := httphandler.NewRouter(httphandler.NewHandler(svc, logger), logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// A triggered run is synchronous and may page through many repositories.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
