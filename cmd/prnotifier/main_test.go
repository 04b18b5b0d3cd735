package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/ericfisherdev/prnotifier/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/prnotifier/internal/application"
	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    command
		wantErr bool
	}{
		{name: "no args runs once", args: nil, want: command{mode: "run"}},
		{name: "serve", args: []string{"serve"}, want: command{mode: "serve"}},
		{
			name: "param set plain",
			args: []string{"param", "set", "WebhookUrl", "https://hooks.example.com/x"},
			want: command{mode: "param-set", param: paramArgs{name: "WebhookUrl", value: "https://hooks.example.com/x"}},
		},
		{
			name: "param set secure flag first",
			args: []string{"param", "set", "-secure", "GithubToken", "ghp_abc"},
			want: command{mode: "param-set", param: paramArgs{name: "GithubToken", value: "ghp_abc", secure: true}},
		},
		{
			name: "param set secure flag last",
			args: []string{"param", "set", "GithubToken", "ghp_abc", "-secure"},
			want: command{mode: "param-set", param: paramArgs{name: "GithubToken", value: "ghp_abc", secure: true}},
		},
		{name: "param set missing value", args: []string{"param", "set", "GithubToken"}, wantErr: true},
		{name: "param set unknown flag", args: []string{"param", "set", "-force", "A", "B"}, wantErr: true},
		{name: "param without set", args: []string{"param", "get", "A"}, wantErr: true},
		{name: "unknown mode", args: []string{"deploy"}, wantErr: true},
		{name: "serve with extra arg", args: []string{"serve", "now"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "usage:")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetParameter_SecureValueRoundTrips(t *testing.T) {
	ctx := context.Background()
	db, err := sqliteadapter.NewDB(ctx, filepath.Join(t.TempDir(), "prnotifier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqliteadapter.RunMigrations(db.Writer))

	key := []byte("0123456789abcdef0123456789abcdef")
	store := sqliteadapter.NewParameterRepo(db, key)
	params := application.NewParameterLoader(store, "/GithubPrNotification/", model.Parameters{})
	logger := slog.New(slog.DiscardHandler)

	require.NoError(t, setParameter(ctx, params, paramArgs{name: "GithubToken", value: "ghp_abc", secure: true}, logger))
	require.NoError(t, setParameter(ctx, params, paramArgs{name: "WebhookUrl", value: "https://hooks.example.com/x"}, logger))

	var raw string
	require.NoError(t, db.Reader.QueryRowContext(ctx,
		`SELECT value FROM parameters WHERE name = ?`, "/GithubPrNotification/GithubToken").Scan(&raw))
	assert.NotContains(t, raw, "ghp_abc", "secure value is encrypted at rest")

	loaded, err := params.Load(ctx, logger)
	require.NoError(t, err)
	assert.Equal(t, "ghp_abc", loaded.GitHubToken)
	assert.Equal(t, "https://hooks.example.com/x", loaded.WebhookURL)
}

func TestSetParameter_SecureWithoutKey(t *testing.T) {
	ctx := context.Background()
	db, err := sqliteadapter.NewDB(ctx, filepath.Join(t.TempDir(), "prnotifier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqliteadapter.RunMigrations(db.Writer))

	params := application.NewParameterLoader(sqliteadapter.NewParameterRepo(db, nil), "/GithubPrNotification/", model.Parameters{})

	err = setParameter(ctx, params, paramArgs{name: "GithubToken", value: "ghp_abc", secure: true}, slog.New(slog.DiscardHandler))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRNOTIFIER_SECRET_KEY")
}
