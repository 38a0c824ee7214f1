package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/vgmarket-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set vgmarket configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		fmt.Fprintf(out, "year_min: %d\n", cfg.YearMin)
		fmt.Fprintf(out, "year_max: %d\n", cfg.YearMax)
		if cfg.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", cfg.Sheet)
		}
		if cfg.Table != "" {
			fmt.Fprintf(out, "table: %s\n", cfg.Table)
		}
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "http_addr: %s\n", cfg.HTTPAddr)
		fmt.Fprintf(out, "http_read_timeout_sec: %d\n", cfg.HTTPReadTimeoutSec)
		fmt.Fprintf(out, "http_write_timeout_sec: %d\n", cfg.HTTPWriteTimeoutSec)
		fmt.Fprintf(out, "http_idle_timeout_sec: %d\n", cfg.HTTPIdleTimeoutSec)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Save the file's own values, not flag overrides.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "data_path":
			c.DataPath = val
		case "sheet":
			c.Sheet = val
		case "table":
			c.Table = val
		case "delimiter":
			c.Delimiter = val
			if _, err := c.Delim(); err != nil {
				return err
			}
		case "http_addr":
			c.HTTPAddr = val
		case "year_min", "year_max", "top_n", "http_read_timeout_sec", "http_write_timeout_sec", "http_idle_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "year_min":
				c.YearMin = i
			case "year_max":
				c.YearMax = i
			case "top_n":
				c.TopN = i
			case "http_read_timeout_sec":
				c.HTTPReadTimeoutSec = i
			case "http_write_timeout_sec":
				c.HTTPWriteTimeoutSec = i
			case "http_idle_timeout_sec":
				c.HTTPIdleTimeoutSec = i
			}
			if c.YearMin > c.YearMax {
				return fmt.Errorf("year_min %d is after year_max %d", c.YearMin, c.YearMax)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
