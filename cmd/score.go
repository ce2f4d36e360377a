package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var (
	scoreSettingsPath string
	scoreCompany      string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score enriched companies against an ICP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "score", true)
		if err != nil {
			return err
		}
		defer env.Close()

		settings, err := loadICPSettings(scoreSettingsPath)
		if err != nil {
			return err
		}
		counts, err := scoreCompanies(ctx, env.Scorer, env.Store, settings, scoreCompany)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), counts)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreSettingsPath, "icp", "", "ICP settings file (default from config)")
	scoreCmd.Flags().StringVar(&scoreCompany, "company", "", "score only this company name")
	rootCmd.AddCommand(scoreCmd)
}

// scorer is the part of icp.Scorer the commands use.
type scorer interface {
	Score(ctx context.Context, data model.CompanyEnrichmentData, settings model.IcpSettings, label string) (model.IcpScore, model.ScoreBreakdown)
}

// loadICPSettings reads the ICP file at path, falling back to the configured
// path. A missing default file yields the default settings.
func loadICPSettings(path string) (model.IcpSettings, error) {
	base := icp.DefaultSettings()
	base.QuantitativeWeightPercent = cfg.ICP.DefaultQuantitativeWeightPercent

	if path == "" {
		path = cfg.ICP.SettingsPath
		if _, err := os.Stat(path); os.IsNotExist(err) {
			zap.L().Warn("icp settings file not found, scoring with defaults", zap.String("path", path))
			return base, nil
		}
	}
	return icp.LoadSettings(path, base)
}

// scoreCompanies scores every enriched company, or just company when set,
// and returns the count per band.
func scoreCompanies(ctx context.Context, s scorer, st store.Store, settings model.IcpSettings, company string) (map[model.IcpScore]int, error) {
	var recs []store.CompanyRecord
	if company != "" {
		rec, err := st.GetCompany(ctx, company)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	} else {
		enriched := true
		var err error
		recs, err = st.ListCompanies(ctx, store.CompanyFilter{Type: model.ClassificationCompany, Enriched: &enriched})
		if err != nil {
			return nil, err
		}
	}

	counts := make(map[model.IcpScore]int)
	for _, rec := range recs {
		if rec.Enrichment == nil {
			zap.L().Debug("score: no enrichment data, skipping", zap.String("company", rec.Name))
			continue
		}
		score, breakdown := s.Score(ctx, rec.Enrichment.Data, settings, rec.Name)
		if err := st.SaveScore(ctx, rec.Name, breakdown); err != nil {
			return counts, err
		}
		counts[score]++
	}
	zap.L().Info("score: complete", zap.Int("candidates", len(recs)), zap.Any("bands", counts))
	return counts, nil
}
