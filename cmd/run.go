package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runInput        string
	runSettingsPath string
	runLimit        int
)

// runSummary is printed when a full run completes.
type runSummary struct {
	Classified int            `json:"classified"`
	Enriched   int            `json:"enriched"`
	Scored     map[string]int `json:"scored"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify, enrich and score a connections export in one pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "run", true)
		if err != nil {
			return err
		}
		defer env.Close()

		settings, err := loadICPSettings(runSettingsPath)
		if err != nil {
			return err
		}

		results, err := classifyFile(ctx, env.Classifier, env.Store, runInput)
		if err != nil {
			return err
		}
		enriched, err := enrichCompanies(ctx, env.Enricher, env.Store, env.EnrichPacer, enrichRun{
			StaleAfter: env.Enricher.Options().StaleAfter,
			Limit:      runLimit,
		})
		if err != nil {
			return err
		}
		bands, err := scoreCompanies(ctx, env.Scorer, env.Store, settings, "")
		if err != nil {
			return err
		}

		summary := runSummary{Classified: len(results), Enriched: enriched, Scored: make(map[string]int)}
		for band, n := range bands {
			summary.Scored[string(band)] = n
		}
		zap.L().Info("run: complete",
			zap.Int("classified", summary.Classified),
			zap.Int("enriched", summary.Enriched),
		)
		return printJSON(cmd.OutOrStdout(), summary)
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "connections export (.csv or .xlsx)")
	runCmd.Flags().StringVar(&runSettingsPath, "icp", "", "ICP settings file (default from config)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "maximum companies to enrich (0 = all)")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
