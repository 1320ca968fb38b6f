package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/app"
	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/config"
	"github.com/cory-johannsen/hoopstats/internal/observability"
	"github.com/cory-johannsen/hoopstats/internal/render"
	"github.com/cory-johannsen/hoopstats/internal/stats"
)

type rootOptions struct {
	configPath string
	dataDir    string
	verbose    bool
	asJSON     bool
	timeout    time.Duration
}

type compareOptions struct {
	season     string
	postseason bool
	totals     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "statcompare",
		Short:         "Compare NBA players side by side",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "configs/dev.yaml", "configuration file naming the record sources")
	root.PersistentFlags().StringVar(&opts.dataDir, "data", "", "serve records only from this fixtures directory")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log source lookups to stderr")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall deadline")

	root.AddCommand(newCompareCmd(opts), newSearchCmd(opts))
	return root
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare <player1_id> <player2_id>",
		Short: "Compare two players over their careers or one season",
		Long: `Compare two players stat by stat.

Without --season the career blocks are compared. The favored value in each
row is highlighted; turnovers and fouls follow the same higher-is-favored rule
as every other stat.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(args, opts)
			if err != nil {
				return err
			}
			return withBackends(cmd, root, func(ctx context.Context, b *app.Backends, logger *zap.Logger) error {
				res, err := compare.NewComparator(b.Records, logger).Compare(ctx, req)
				if err != nil {
					return err
				}
				if root.asJSON {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Comparison(res, render.DefaultStyles()))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&opts.season, "season", "", "season label such as 2020-21; omit for career")
	cmd.Flags().BoolVar(&opts.postseason, "postseason", false, "compare postseason instead of regular season")
	cmd.Flags().BoolVar(&opts.totals, "totals", false, "compare raw totals instead of per-game averages")
	return cmd
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find player ids by name substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackends(cmd, root, func(ctx context.Context, b *app.Backends, _ *zap.Logger) error {
				players, err := b.Searcher.SearchPlayers(ctx, stats.NormalizeQuery(args[0]))
				if err != nil {
					return err
				}
				if root.asJSON {
					return writeJSON(cmd.OutOrStdout(), players)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Search(players, render.DefaultStyles()))
				return err
			})
		},
	}
}

func buildRequest(args []string, opts *compareOptions) (compare.Request, error) {
	var ids [2]int64
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return compare.Request{}, fmt.Errorf("player id must be a positive integer, got %q", arg)
		}
		ids[i] = id
	}
	mode := compare.Career()
	if opts.season != "" {
		mode = compare.Season(opts.season)
	}
	req := compare.Request{Player1: ids[0], Player2: ids[1], Mode: mode}
	if opts.postseason {
		req.Options.SeasonType = compare.Postseason
	}
	if opts.totals {
		req.Options.Basis = compare.Totals
	}
	return req, nil
}

// loadConfig reads --config, or builds a fixtures-only configuration when
// --data is set.
func loadConfig(opts *rootOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.dataDir != "" {
		cfg, err = config.LoadFromViper(config.Defaults())
		if err != nil {
			return config.Config{}, err
		}
		cfg.Upstream.Enabled = false
		cfg.Cache.Enabled = false
		cfg.Database.Enabled = false
		cfg.Fixtures.Dir = opts.dataDir
	} else {
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "warn"
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func withBackends(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *app.Backends, *zap.Logger) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "statcompare")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	b, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b, logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
