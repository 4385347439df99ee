package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/revpipe/internal/app"
	"github.com/AngelCh415/revpipe/internal/config"
	"github.com/AngelCh415/revpipe/internal/models"
	"github.com/AngelCh415/revpipe/internal/monetize"
	"github.com/AngelCh415/revpipe/internal/pipeline"
	"github.com/AngelCh415/revpipe/internal/profiles"
	"github.com/AngelCh415/revpipe/internal/ranking"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOpts struct {
	profilesPath string
}

func (o *rootOpts) table() (*profiles.Table, error) {
	if o.profilesPath == "" {
		return profiles.Embedded(), nil
	}
	return profiles.Load(o.profilesPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:          "revpipe",
		Short:        "Country-targeted content generation and revenue modeling",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.profilesPath, "profiles", "", "country profile YAML (default: embedded table)")
	root.AddCommand(newRankCmd(opts), newPredictCmd(opts), newStrategyCmd(opts), newRunCmd())
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRankCmd(opts *rootOpts) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "List countries by revenue score",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := opts.table()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"ranked":   ranking.Top(t, limit),
				"insights": ranking.Insights(t),
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 8, "number of countries")
	return cmd
}

func newPredictCmd(opts *rootOpts) *cobra.Command {
	var views int
	cmd := &cobra.Command{
		Use:   "predict COUNTRY",
		Short: "Monthly revenue prediction for one country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.table()
			if err != nil {
				return err
			}
			p, ok := t.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", profiles.ErrProfileNotFound, args[0])
			}
			return printJSON(cmd.OutOrStdout(), monetize.Predict(p, views))
		},
	}
	cmd.Flags().IntVar(&views, "views", monetize.DefaultAssumedViews, "assumed monthly views")
	return cmd
}

func newStrategyCmd(opts *rootOpts) *cobra.Command {
	var countries []string
	cmd := &cobra.Command{
		Use:   "strategy KEYWORD",
		Short: "Keyword strategy per country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.table()
			if err != nil {
				return err
			}
			if len(countries) == 0 {
				countries = ranking.Rank(t)
			}
			return printJSON(cmd.OutOrStdout(), monetize.Strategies(t, args[0], countries))
		},
	}
	cmd.Flags().StringSliceVar(&countries, "countries", nil, "countries (default: all, ranked)")
	return cmd
}

func newRunCmd() *cobra.Command {
	var req pipeline.Request
	var level string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once in the foreground with the environment configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			rt, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(cmd.Context()))

			req.MonetizationLevel = models.MonetizationLevel(level)
			rep, err := rt.Orchestrator.Run(cmd.Context(), req)
			if perr := printJSON(cmd.OutOrStdout(), map[string]any{
				"run_id":             rep.RunID,
				"total_generated":    rep.TotalGenerated,
				"per_country_counts": rep.PerCountryCounts,
				"countries":          rep.Countries,
				"failed":             rep.Failed,
				"canceled":           rep.Canceled,
			}); perr != nil {
				return perr
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&req.Keywords, "keywords", nil, "keywords")
	f.StringSliceVar(&req.TargetCountries, "countries", []string{"USA"}, "target countries")
	f.StringSliceVar(&req.ContentTypes, "types", []string{"guide"}, "content types")
	f.StringVar(&level, "level", string(models.LevelHigh), "monetization level: low, medium, high, maximum")
	f.BoolVar(&req.AutoPublish, "publish", false, "publish rendered pages")
	f.BoolVar(&req.SEOOptimization, "seo", true, "apply SEO formatting")
	_ = cmd.MarkFlagRequired("keywords")
	return cmd
}
