package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/store"
)

var (
	enrichCompany   string
	enrichStaleDays int
	enrichLimit     int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich classified companies whose data is missing or stale",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "enrich", true)
		if err != nil {
			return err
		}
		defer env.Close()

		staleAfter := env.Enricher.Options().StaleAfter
		if enrichStaleDays > 0 {
			staleAfter = time.Duration(enrichStaleDays) * 24 * time.Hour
		}
		n, err := enrichCompanies(ctx, env.Enricher, env.Store, env.EnrichPacer, enrichRun{
			Company:    enrichCompany,
			StaleAfter: staleAfter,
			Limit:      enrichLimit,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]int{"enriched": n})
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichCompany, "company", "", "enrich only this company name")
	enrichCmd.Flags().IntVar(&enrichStaleDays, "stale-days", 0, "re-enrich data older than this many days (default from config)")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 100, "maximum companies to enrich")
	rootCmd.AddCommand(enrichCmd)
}

// enricher is the part of enrich.Engine the commands use.
type enricher interface {
	Enrich(ctx context.Context, companyName, knownProfileURL, industryHint string) *model.EnrichmentResult
}

// enrichRun selects the companies one enrich pass covers.
type enrichRun struct {
	Company    string
	StaleAfter time.Duration
	Limit      int
	Now        func() time.Time
}

// enrichCompanies enriches every company-type record with missing or stale
// data, or just opts.Company when set, and returns how many were attempted.
// A nil result is still saved so the attempt is timestamped.
func enrichCompanies(ctx context.Context, e enricher, st store.Store, pacer resilience.Pacer, opts enrichRun) (int, error) {
	if pacer == nil {
		pacer = resilience.NoWait()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	targets, err := enrichTargets(ctx, st, opts, now())
	if err != nil {
		return 0, err
	}

	attempted, found := 0, 0
	for _, rec := range targets {
		if err := pacer.Wait(ctx); err != nil {
			return attempted, eris.Wrap(err, "enrich: wait")
		}
		profileURL := ""
		if rec.Classification != nil {
			profileURL = rec.Classification.ProfileURL()
		}
		result := e.Enrich(ctx, rec.Name, profileURL, "")
		if err := st.SaveEnrichment(ctx, rec.Name, result); err != nil {
			return attempted, err
		}
		attempted++
		if result != nil {
			found++
		}
	}

	zap.L().Info("enrich: complete",
		zap.Int("candidates", len(targets)),
		zap.Int("attempted", attempted),
		zap.Int("found", found),
	)
	return attempted, nil
}

func enrichTargets(ctx context.Context, st store.Store, opts enrichRun, now time.Time) ([]store.CompanyRecord, error) {
	if opts.Company != "" {
		rec, err := st.GetCompany(ctx, opts.Company)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			rec = &store.CompanyRecord{Key: model.NormalizeKey(opts.Company), Name: opts.Company}
		}
		return []store.CompanyRecord{*rec}, nil
	}

	recs, err := st.ListCompanies(ctx, store.CompanyFilter{Type: model.ClassificationCompany})
	if err != nil {
		return nil, err
	}
	var out []store.CompanyRecord
	for _, rec := range recs {
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		if enrich.IsStale(rec.EnrichmentUpdatedAt(), now, opts.StaleAfter) {
			out = append(out, rec)
		}
	}
	return out, nil
}
