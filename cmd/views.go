package cmd

import (
	"fmt"

	"github.com/KaramelBytes/vgmarket-cli/internal/insights"
	"github.com/KaramelBytes/vgmarket-cli/internal/utils"
	"github.com/spf13/cobra"
)

var viewCommands = []struct {
	name  string
	short string
}{
	{"overview", "Headline numbers: games, sales, top platform and genre, North America share"},
	{"platforms", "Platform market share, lifecycle and efficiency"},
	{"genres", "Genre performance, top-3 share, saturation quadrants and sales per title"},
	{"regions", "Regional totals, top genres per region and yearly regional sales"},
	{"market", "Critic scores vs sales, top publishers and release timing"},
}

func newViewCmd(name, short string) *cobra.Command {
	var (
		asJSON bool
		output string
	)
	c := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			v, err := insights.Build(eng, name)
			if err != nil {
				return err
			}
			return emit(cmd, v, v.Markdown, asJSON, output)
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of Markdown")
	c.Flags().StringVarP(&output, "output", "o", "", "optional path to write the report")
	return c
}

// emit renders v as JSON or Markdown to stdout or to the --output file.
func emit(cmd *cobra.Command, v any, markdown func() string, asJSON bool, output string) error {
	var data []byte
	if asJSON {
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		data = append(b, '\n')
	} else {
		data = []byte(markdown())
	}
	if output != "" {
		if err := utils.SafeWriteFile(output, data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", cmd.Name(), output)
		return nil
	}
	_, err := cmd.OutOrStdout().Write(data)
	return err
}

func init() {
	for _, vc := range viewCommands {
		rootCmd.AddCommand(newViewCmd(vc.name, vc.short))
	}
}
