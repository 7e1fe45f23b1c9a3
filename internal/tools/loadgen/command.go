package loadgen

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/tools/common"
)

type options struct {
	envFile     string
	baseURL     string
	profile     string
	duration    time.Duration
	rps         int
	concurrency int
	accounts    int
	seed        int64
	decode      bool
	ci          bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "loadgen", Short: "Generate paced license-service traffic"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file with tier credentials")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "API base URL")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "mixed", "traffic profile: login|admin|mixed")
	cmd.PersistentFlags().DurationVar(&opts.duration, "duration", 15*time.Second, "traffic duration")
	cmd.PersistentFlags().IntVar(&opts.rps, "rps", 20, "requests per second")
	cmd.PersistentFlags().IntVar(&opts.concurrency, "concurrency", 6, "concurrent workers")
	cmd.PersistentFlags().IntVar(&opts.accounts, "accounts", 25, "distinct usernames to cycle through")
	cmd.PersistentFlags().Int64Var(&opts.seed, "seed", 42, "random seed")
	cmd.PersistentFlags().BoolVar(&opts.decode, "decode", true, "decrypt responses with ENCRYPTION_KEY when available")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run load generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := common.Invocation{Tool: "loadgen", Command: "run", CI: opts.ci, Timeout: opts.duration + 15*time.Second}
			_, err := common.Execute(inv, func(ctx context.Context) ([]string, error) {
				cfg, err := runConfig(opts)
				if err != nil {
					return nil, err
				}
				res, err := Run(ctx, cfg)
				if err != nil {
					return nil, err
				}
				return summarize(res), nil
			})
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

// runConfig reads tier credentials from the environment only. The API's
// full configuration is not required to generate traffic.
func runConfig(opts *options) (Config, error) {
	if err := common.LoadEnvFile(opts.envFile); err != nil {
		return Config{}, err
	}
	cfg := Config{
		BaseURL:     opts.baseURL,
		Profile:     opts.profile,
		Duration:    opts.duration,
		RPS:         opts.rps,
		Concurrency: opts.concurrency,
		Seed:        opts.seed,
		Accounts:    opts.accounts,
		Admin:       Credentials{Username: envOr("ADMIN_USERNAME", "ADMIN"), Password: os.Getenv("ADMIN_PASSWORD")},
		Client:      Credentials{Username: envOr("CLIENT_USERNAME", "CLIENT"), Password: os.Getenv("CLIENT_PASSWORD")},
	}
	if keys := splitKeys(os.Getenv("ENCRYPTION_KEY")); opts.decode && len(keys) > 0 {
		f, err := codec.NewFernet(keys)
		if err != nil {
			return Config{}, err
		}
		cfg.Decrypter = f
	}
	return cfg, nil
}

func summarize(res Result) []string {
	return []string{
		fmt.Sprintf("total_requests=%d", res.TotalRequests),
		fmt.Sprintf("failures=%d", res.Failures),
		fmt.Sprintf("status_2xx=%d", res.Status2xx),
		fmt.Sprintf("status_4xx=%d", res.Status4xx),
		fmt.Sprintf("status_5xx=%d", res.Status5xx),
		fmt.Sprintf("decoded_success=%d", res.StatusSuccess),
		fmt.Sprintf("decoded_failure=%d", res.StatusFailure),
		fmt.Sprintf("decode_failures=%d", res.DecodeFailures),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitKeys(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
