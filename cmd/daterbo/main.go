// Package main provides the daterbo command-line client.
// It talks to the borrower-record API directly and keeps the bearer
// token in the user's config directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/config"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	Version   = "1.0.0"
	BuildTime = "dev"
	appName   = "daterbo"
)

// cli holds the services shared by every command
type cli struct {
	log      *zap.Logger
	sess     *services.Session
	auth     *services.AuthService
	records  *services.RecordService
	exports  *services.ExportService
	tokenDir string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		apiURL   string
		tokenDir string
		timeout  time.Duration
		verbose  bool
	)
	app := &cli{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Borrower record console",
		Long:          "daterbo manages borrower records (data peminjam) through the upstream API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(apiURL, tokenDir, timeout, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.log != nil {
				_ = app.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&tokenDir, "token-dir", "", "Directory holding the session token (default <config dir>/daterbo)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Upstream request timeout")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log upstream calls")

	cmd.AddCommand(
		loginCmd(app),
		logoutCmd(app),
		whoamiCmd(app),
		recordsCmd(app),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func (a *cli) init(apiURL, tokenDir string, timeout time.Duration, verbose bool) error {
	a.log = logger.NewCLI(verbose)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.Upstream.BaseURL = apiURL
	}
	if timeout > 0 {
		cfg.Upstream.Timeout = timeout
	}

	if tokenDir == "" {
		if tokenDir, err = repositories.DefaultTokenDir(); err != nil {
			return fmt.Errorf("resolve token dir: %w", err)
		}
	}
	a.tokenDir = tokenDir

	api := upstream.NewClient(cfg.Upstream, nil, a.log.Named("upstream"))
	store := repositories.NewFileTokenStore(tokenDir)
	a.sess = services.NewSession(store, services.TokenKey, cfg.Session.TTL, nil, a.log)
	a.auth = services.NewAuthService(api, a.log)
	a.records = services.NewRecordService(api, services.NewWorkspaceLoader(api, services.NewRequestGate(), a.log), a.log)
	a.exports = services.NewExportService(api, a.records, a.log)
	return nil
}

// requireSession restores the stored token or explains how to get one
func (a *cli) requireSession(ctx context.Context) error {
	if _, err := a.sess.Load(ctx); err != nil {
		if errors.Is(err, domain.ErrNoSession) || errors.Is(err, domain.ErrMalformedToken) {
			return fmt.Errorf("not logged in, run `%s login`", appName)
		}
		return err
	}
	return nil
}

// explain turns a lost session into a hint; other errors pass through
func explain(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return fmt.Errorf("session ended by the server, run `%s login`: %w", appName, err)
	}
	return err
}
