// Package cli implements ledgerctl, the operator command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/ledger-bot/internal/app"
	"github.com/baharkarakas/ledger-bot/internal/config"
	"github.com/baharkarakas/ledger-bot/internal/logger"
)

type builder func(ctx context.Context, cfg config.Config) (*app.App, error)

type root struct {
	build   builder
	load    func() config.Config
	cfg     config.Config
	storage string
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(app.New, config.Load)
}

func newRootCmd(build builder, load func() config.Config) *cobra.Command {
	r := &root{build: build, load: load}
	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the ledger bot: migrations, approvals, scoring dry-runs",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			r.cfg = r.load()
			if r.storage != "" {
				r.cfg.Storage = r.storage
			}
			slog.SetDefault(logger.NewWithWriter(r.cfg.Env, cmd.ErrOrStderr()))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&r.storage, "storage", "", "override STORAGE (postgres|memory)")

	cmd.AddCommand(
		r.migrateCmd(),
		r.pendingCmd(),
		r.approveCmd(),
		r.rejectCmd(),
		r.scoreCmd(),
		r.userAddCmd(),
	)
	return cmd
}

// withApp builds the application for one command and closes it afterwards.
func (r *root) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := r.build(ctx, r.cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Close()
	return fn(ctx, a)
}
