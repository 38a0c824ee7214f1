package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	binsValue  string
	binsJSON   bool
	binsOutput string
)

type binRow struct {
	Label string   `json:"label"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean,omitempty"`
}

type binsResult struct {
	Value string   `json:"value"`
	Bins  []binRow `json:"bins"`
}

func (r binsResult) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[CRITIC SCORE BINS] mean %s per bin\n", r.Value))
	for _, row := range r.Bins {
		if row.Mean == nil {
			b.WriteString(fmt.Sprintf("- %s: %d titles\n", row.Label, row.Count))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %d titles, mean %.2f\n", row.Label, row.Count, *row.Mean))
	}
	return b.String()
}

var binsCmd = &cobra.Command{
	Use:   "bins",
	Short: "Group scored titles into critic score bins and average a value per bin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := dataset.ParseField(binsValue)
		if err != nil {
			return fmt.Errorf("--value: %w", err)
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		bins, err := eng.ScoreBins()
		if err != nil {
			return err
		}
		means, err := eng.MeanByBin(value)
		if err != nil {
			return err
		}
		counts := metrics.CountByBin(bins)
		out := binsResult{Value: string(value)}
		for _, label := range counts.Keys() {
			n, _ := counts.Get(label)
			row := binRow{Label: label, Count: int(n)}
			if m, ok := means.Get(label); ok {
				row.Mean = &m
			}
			out.Bins = append(out.Bins, row)
		}
		return emit(cmd, out, out.Markdown, binsJSON, binsOutput)
	},
}

func init() {
	rootCmd.AddCommand(binsCmd)
	binsCmd.Flags().StringVarP(&binsValue, "value", "v", "total_sales", "value field to average per bin")
	binsCmd.Flags().BoolVar(&binsJSON, "json", false, "print JSON instead of Markdown")
	binsCmd.Flags().StringVarP(&binsOutput, "output", "o", "", "optional path to write the result")
}
