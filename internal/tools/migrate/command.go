package migrate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/database"
	"github.com/sandeepkv93/authplus-license-service/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newCommand(opts, "up", "Apply schema migrations", up),
		newCommand(opts, "status", "Report which service tables exist", status),
		newCommand(opts, "plan", "Show migration plan (dry-run)", plan),
	)
	return cmd
}

func newCommand(opts *options, name, short string, fn func(context.Context, *gorm.DB) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := common.Invocation{Tool: "migrate", Command: name, CI: opts.ci, Timeout: opts.timeout}
			_, err := common.Execute(inv, func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				details, err := fn(ctx, db)
				if err != nil {
					return details, err
				}
				return append(details, "driver: "+cfg.DatabaseDriver), nil
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func up(_ context.Context, db *gorm.DB) ([]string, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	tables, err := database.Status(db)
	if err != nil {
		return nil, err
	}
	details := []string{"schema migration applied"}
	for _, t := range tables {
		details = append(details, "table "+t.Table+": present")
	}
	return details, nil
}

func status(ctx context.Context, db *gorm.DB) ([]string, error) {
	if err := ping(ctx, db); err != nil {
		return nil, err
	}
	tables, err := database.Status(db)
	if err != nil {
		return nil, err
	}
	details := []string{"database reachable"}
	missing := 0
	for _, t := range tables {
		state := "present"
		if !t.Exists {
			state = "missing"
			missing++
		}
		details = append(details, fmt.Sprintf("table %s: %s", t.Table, state))
	}
	if missing > 0 {
		return details, fmt.Errorf("%d table(s) missing, run migrate up", missing)
	}
	return details, nil
}

func plan(ctx context.Context, db *gorm.DB) ([]string, error) {
	if err := ping(ctx, db); err != nil {
		return nil, err
	}
	tables, err := database.Status(db)
	if err != nil {
		return nil, err
	}
	details := make([]string, 0, len(tables)+1)
	for _, t := range tables {
		action := "would create"
		if t.Exists {
			action = "would reconcile columns and indexes of"
		}
		details = append(details, action+" "+t.Table)
	}
	return append(details, "no mutation executed in plan mode"), nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
