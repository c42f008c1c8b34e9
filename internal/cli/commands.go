package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/ledger-bot/internal/app"
	"github.com/baharkarakas/ledger-bot/internal/db"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/money"
	"github.com/baharkarakas/ledger-bot/internal/scoring"
	"github.com/baharkarakas/ledger-bot/internal/services"
)

func (r *root) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded SQL migrations to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, r.cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()
			if err := db.RunMigrations(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
			return nil
		},
	}
}

func (r *root) pendingCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List transactions waiting for approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				txs, err := a.Transactions.ListPending(ctx, limit)
				if err != nil {
					return err
				}
				if len(txs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no pending transactions")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSER\tTYPE\tCATEGORY\tAMOUNT\tSCORE\tFLAGS\tCREATED")
				for _, tx := range txs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
						tx.ID, tx.UserID, tx.Type, tx.Category, money.FormatAmount(tx.Amount),
						tx.RiskScore, strings.Join(tx.RiskFlags, ","), tx.CreatedAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}

func (r *root) approveCmd() *cobra.Command {
	var approver string
	cmd := &cobra.Command{
		Use:   "approve <transaction-id>",
		Short: "Approve a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				outcome, tx, err := a.Transactions.Approve(ctx, args[0], approver)
				if err != nil {
					return err
				}
				printOutcome(cmd, outcome, tx)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&approver, "as", "", "approver user id")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func (r *root) rejectCmd() *cobra.Command {
	var approver, reason string
	cmd := &cobra.Command{
		Use:   "reject <transaction-id>",
		Short: "Reject a pending transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var why *string
				if reason != "" {
					why = &reason
				}
				outcome, tx, err := a.Transactions.Reject(ctx, args[0], approver, why)
				if err != nil {
					return err
				}
				printOutcome(cmd, outcome, tx)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&approver, "as", "", "approver user id")
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome services.Outcome, tx models.Transaction) {
	if outcome == services.OutcomeAlreadyProcessed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already %s\n", tx.ID, tx.ApprovalStatus)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tx.ID, tx.ApprovalStatus)
}

func (r *root) scoreCmd() *cobra.Command {
	var user, typ, category, amount, desc string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Dry-run the approval scoring for a candidate transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := models.TransactionType(strings.ToLower(typ))
			if !t.Valid() {
				return fmt.Errorf("--type must be income or expense")
			}
			amt, err := money.ValidateAmount(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Transactions.Preview(ctx, scoring.Candidate{
					UserID:      user,
					Type:        t,
					Amount:      amt,
					Category:    category,
					Description: desc,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "score: %d\n", res.ConfidenceScore)
				fmt.Fprintf(out, "status: %s\n", res.Status)
				fmt.Fprintf(out, "manual approval: %t\n", res.RequiresManualApproval)
				if names := res.FlagNames(); len(names) > 0 {
					fmt.Fprintf(out, "flags: %s\n", strings.Join(names, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "submitter user id")
	cmd.Flags().StringVar(&typ, "type", "expense", "income or expense")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 50000 or 1.500.000")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (r *root) userAddCmd() *cobra.Command {
	var id, name, email, password, role string
	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "Create an approver or admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rl := models.Role(role)
			if rl != models.RoleApprover && rl != models.RoleAdmin && rl != models.RoleSubmitter {
				return errors.New("--role must be submitter, approver or admin")
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				u, err := a.Users.Register(ctx, id, name, email, password, rl)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.ID, u.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "chat address of the user")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password (min 8 chars)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleApprover), "submitter, approver or admin")
	for _, f := range []string{"id", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
