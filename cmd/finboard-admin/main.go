package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"finboard/internal/auth"
	"finboard/internal/backend"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/storage"
)

const usage = `usage: finboard-admin <command> [flags]

commands:
  migrate                      apply schema migrations to SQLITE_DB_PATH
  session -user <id> [-ttl d]  issue a session token for a user
  revoke -token <t>            revoke a session token
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	cfg := cli.MustConfig()
	// stdout carries command output only.
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentAdmin,
		Output:    os.Stderr,
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	var err error
	switch os.Args[1] {
	case "migrate":
		err = migrate(cfg, logger)
	case "session":
		err = issueSession(ctx, cfg, logger, os.Args[2:])
	case "revoke":
		err = revokeSession(ctx, cfg, logger, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		stop()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], log.FieldError, err)
		stop()
		os.Exit(1)
	}
}

func migrate(cfg *config.Config, logger *log.Logger) error {
	if cfg.DataBackend != string(backend.SQLiteBackend) {
		return fmt.Errorf("migrate needs DATA_BACKEND=sqlite, got %q", cfg.DataBackend)
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	if err := repo.Close(); err != nil {
		return err
	}
	version, dirty, err := storage.SchemaVersion(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	logger.Info("Migrations applied", "path", cfg.SQLiteDBPath, "version", version, "dirty", dirty)
	return nil
}

// openSessions connects to the configured store without AMQP.
func openSessions(ctx context.Context, cfg *config.Config, logger *log.Logger, ttl time.Duration) (*auth.Sessions, func() error, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if backendCfg.Type == backend.MemoryBackend {
		return nil, nil, fmt.Errorf("sessions need a persistent backend, DATA_BACKEND is %q", cfg.DataBackend)
	}
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewSessions(res.Repository, ttl, nil), res.Cleanup, nil
}

func issueSession(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	user := fs.String("user", "", "user id to issue the session for")
	ttl := fs.Duration("ttl", cfg.SessionTTL, "session lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("-user is required")
	}
	if *ttl < time.Minute {
		return fmt.Errorf("-ttl must be at least 1m")
	}

	sessions, cleanup, err := openSessions(ctx, cfg, logger, *ttl)
	if err != nil {
		return err
	}
	defer cleanup()

	token, expiresAt, err := sessions.Issue(ctx, *user)
	if err != nil {
		return err
	}
	logger.Info("Session issued", log.FieldUserID, *user, "expires_at", expiresAt.Format(time.RFC3339))
	fmt.Println(token)
	return nil
}

func revokeSession(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	token := fs.String("token", "", "session token to revoke")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return fmt.Errorf("-token is required")
	}

	sessions, cleanup, err := openSessions(ctx, cfg, logger, cfg.SessionTTL)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := sessions.Revoke(ctx, *token); err != nil {
		return err
	}
	logger.Info("Session revoked")
	return nil
}
