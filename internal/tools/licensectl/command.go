package licensectl

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/config"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/security"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
	"github.com/sandeepkv93/authplus-license-service/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "licensectl", Short: "License and account administration tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	license := &cobra.Command{Use: "license", Short: "Issue and inspect license keys"}
	license.AddCommand(newGenerateCommand(opts), newListCommand(opts), newCountCommand(opts))
	cmd.AddCommand(license, newStatsCommand(opts), newDecryptCommand(opts))
	return cmd
}

func newGenerateCommand(opts *options) *cobra.Command {
	var (
		count  int
		export bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate license keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "license generate", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				var exporter service.LicenseExporter
				if export {
					if !cfg.LicenseExportConfigured() {
						return nil, ErrExportNotConfigured
					}
					e, err := service.NewMinIOLicenseExporter(
						cfg.LicenseExportEndpoint,
						cfg.LicenseExportAccessKey,
						cfg.LicenseExportSecretKey,
						cfg.LicenseExportBucket,
						cfg.LicenseExportUseSSL,
					)
					if err != nil {
						return nil, err
					}
					exporter = e
				}
				return generateLicenses(ctx, newLedger(cfg, db), exporter, count)
			})
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of licenses to generate")
	cmd.Flags().BoolVar(&export, "export", false, "upload a CSV manifest to object storage")
	return cmd
}

func newListCommand(opts *options) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unused license keys, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "license list", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				return listLicenses(ctx, newLedger(cfg, db), page, pageSize)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")
	return cmd
}

func newCountCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count unused license keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "license count", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				return countLicenses(ctx, newLedger(cfg, db))
			})
		},
	}
}

func newStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show account and license counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "stats", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				storeOpts := repository.StoreOptions{OperationTimeout: cfg.DatabaseOperationTimeout}
				ledger := newLedger(cfg, db)
				passwords, err := security.NewPasswordStore(cfg.PasswordStorage)
				if err != nil {
					return nil, err
				}
				accounts := service.NewAccountDirectory(
					repository.NewAccountRepository(db, storeOpts),
					repository.NewTransactor(db, storeOpts),
					ledger,
					passwords,
				)
				return snapshotStats(ctx, service.NewStatsService(accounts, ledger))
			})
		},
	}
}

func newDecryptCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt TOKEN|RESPONSE_JSON...",
		Short: "Decrypt response fields with the configured encryption keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := common.Invocation{Tool: "licensectl", Command: "decrypt", CI: opts.ci, Timeout: opts.timeout}
			_, err := common.Execute(inv, func(ctx context.Context) ([]string, error) {
				cfg, err := common.LoadConfig(opts.envFile)
				if err != nil {
					return nil, err
				}
				f, err := codec.NewFernet(cfg.EncryptionKeys)
				if err != nil {
					return nil, err
				}
				return decryptInputs(f, args)
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func execute(opts *options, command string, fn func(context.Context, *config.Config, *gorm.DB) ([]string, error)) error {
	inv := common.Invocation{Tool: "licensectl", Command: command, CI: opts.ci, Timeout: opts.timeout}
	_, err := common.Execute(inv, func(ctx context.Context) ([]string, error) {
		cfg, db, err := common.LoadConfigDB(opts.envFile)
		if err != nil {
			return nil, err
		}
		defer common.CloseDB(db)
		return fn(ctx, cfg, db)
	})
	if err != nil {
		if errors.Is(err, ErrExportNotConfigured) {
			os.Exit(2)
		}
		os.Exit(3)
	}
	return nil
}

func newLedger(cfg *config.Config, db *gorm.DB) *service.LicenseLedger {
	storeOpts := repository.StoreOptions{OperationTimeout: cfg.DatabaseOperationTimeout}
	return service.NewLicenseLedger(repository.NewLicenseRepository(db, storeOpts))
}
