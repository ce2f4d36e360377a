package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/classify"
	"github.com/sells-group/prospect-cli/internal/ingest"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var classifyInput string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify company names from a connections export",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "classify", true)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := classifyFile(ctx, env.Classifier, env.Store, classifyInput)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), results.Stats())
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyInput, "input", "", "connections export (.csv or .xlsx)")
	_ = classifyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(classifyCmd)
}

// classifier is the part of classify.Classifier the commands use.
type classifier interface {
	Classify(ctx context.Context, inputs []model.ClassificationInput, progress classify.ProgressFunc) classify.Results
}

// classifyFile ingests path, classifies every row and persists one record
// per normalized company name.
func classifyFile(ctx context.Context, c classifier, st store.Store, path string) (classify.Results, error) {
	inputs, err := ingest.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	results := c.Classify(ctx, inputs, logProgress("classify"))

	saved, err := st.SaveClassifications(ctx, classifiedRecords(inputs, results))
	if err != nil {
		return nil, eris.Wrap(err, "classify: persist results")
	}
	zap.L().Info("classify: results saved", zap.Int("companies", saved))
	return results, nil
}

// classifiedRecords pairs each result with the first spelling of its name.
func classifiedRecords(inputs []model.ClassificationInput, results classify.Results) []store.Classified {
	seen := make(map[string]bool, len(results))
	out := make([]store.Classified, 0, len(results))
	for _, in := range inputs {
		key := model.NormalizeKey(in.CompanyName)
		res, ok := results[key]
		if !ok || seen[key] || key == "" {
			continue
		}
		seen[key] = true
		out = append(out, store.Classified{Name: in.CompanyName, Result: res})
	}
	return out
}

// logProgress returns a ProgressFunc that logs roughly every tenth item.
func logProgress(op string) classify.ProgressFunc {
	return func(current, total int) {
		step := total / 10
		if step == 0 {
			step = 1
		}
		if current%step == 0 || current == total {
			zap.L().Info(op+": progress", zap.Int("current", current), zap.Int("total", total))
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
