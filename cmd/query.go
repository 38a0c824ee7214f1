package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	qGroup  string
	qValue  string
	qTop    int
	qAll    bool
	qJSON   bool
	qOutput string
)

type queryResult struct {
	Fn      string          `json:"fn"`
	Group   string          `json:"group"`
	Value   string          `json:"value,omitempty"`
	Entries []metrics.Entry `json:"entries"`
}

func (q queryResult) Markdown() string {
	var b strings.Builder
	if q.Fn == string(metrics.FuncCount) {
		b.WriteString(fmt.Sprintf("[QUERY] count of titles by %s\n", q.Group))
	} else {
		b.WriteString(fmt.Sprintf("[QUERY] %s of %s by %s\n", q.Fn, q.Value, q.Group))
	}
	if len(q.Entries) == 0 {
		b.WriteString("(no data)\n")
	}
	for i, e := range q.Entries {
		b.WriteString(fmt.Sprintf("%d. %s: %.2f\n", i+1, e.Key, e.Value))
	}
	return b.String()
}

var queryCmd = &cobra.Command{
	Use:   "query <sum|mean|median|count>",
	Short: "Run a grouped aggregation and rank the groups",
	Example: `  vgmarket query sum --group console --value total_sales --top 5
  vgmarket query median --group genre --value critic_score --all
  vgmarket query count --group release_year --all --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, ok := metrics.ParseFunc(strings.ToLower(args[0]))
		if !ok {
			return fmt.Errorf("unknown aggregation %q (use sum, mean, median or count)", args[0])
		}
		group, err := dataset.ParseField(qGroup)
		if err != nil {
			return fmt.Errorf("--group: %w", err)
		}
		var value dataset.Field
		if fn != metrics.FuncCount {
			if value, err = dataset.ParseField(qValue); err != nil {
				return fmt.Errorf("--value: %w", err)
			}
		}
		top := qTop
		if !cmd.Flags().Changed("top") && cfg != nil && cfg.TopN > 0 {
			top = cfg.TopN
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		res, err := eng.Aggregate(fn, group, value)
		if err != nil {
			return err
		}
		out := queryResult{Fn: string(fn), Group: string(group), Value: string(value)}
		if qAll {
			out.Entries = metrics.SortDesc(res)
		} else {
			out.Entries = metrics.TopN(res, top)
		}
		return emit(cmd, out, out.Markdown, qJSON, qOutput)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&qGroup, "group", "g", "console", "group-by field: console | genre | publisher | release_year | title")
	queryCmd.Flags().StringVarP(&qValue, "value", "v", "total_sales", "value field: total_sales | na_sales | pal_sales | jp_sales | other_sales | critic_score")
	queryCmd.Flags().IntVarP(&qTop, "top", "n", 10, "number of groups to show (default from config top_n)")
	queryCmd.Flags().BoolVar(&qAll, "all", false, "show every group, largest first")
	queryCmd.Flags().BoolVar(&qJSON, "json", false, "print JSON instead of Markdown")
	queryCmd.Flags().StringVarP(&qOutput, "output", "o", "", "optional path to write the result")
}
