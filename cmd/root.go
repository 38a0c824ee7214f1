package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/KaramelBytes/vgmarket-cli/internal/config"
	"github.com/KaramelBytes/vgmarket-cli/internal/dataset"
	"github.com/KaramelBytes/vgmarket-cli/internal/engine"
	"github.com/KaramelBytes/vgmarket-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Dataset flags (override config if set)
	flagData    string
	flagYearMin int
	flagYearMax int
	flagSheet   string
	flagTable   string

	// Loaded configuration
	cfg *config.Global
)

var rootCmd = &cobra.Command{
	Use:   "vgmarket",
	Short: "vgmarket: video game sales metrics from a cleaned sales dataset",
	Long: `vgmarket loads a video game sales table (CSV, TSV, XLSX or SQLite), restricts it to the
reliable release-year window and reports platform, genre, regional and market metrics,
either as Markdown/JSON on the command line or through a read-only HTTP API.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.vgmarket/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "dataset path: .csv, .tsv, .xlsx or .sqlite (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagYearMin, "year-min", 0, "first release year to include (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagYearMax, "year-max", 0, "last release year to include (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "XLSX: worksheet name (default first sheet)")
	rootCmd.PersistentFlags().StringVar(&flagTable, "table", "", "SQLite: table name (default first table)")
}

func loadConfig() {
	c, err := config.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so flags alone are enough
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &config.Global{
			YearMin: dataset.DefaultYearMin,
			YearMax: dataset.DefaultYearMax,
			TopN:    10,
		}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data") && flagData != "" {
		cfg.DataPath = flagData
	}
	if f.Changed("year-min") {
		cfg.YearMin = flagYearMin
	}
	if f.Changed("year-max") {
		cfg.YearMax = flagYearMax
	}
	if f.Changed("sheet") {
		cfg.Sheet = flagSheet
	}
	if f.Changed("table") {
		cfg.Table = flagTable
	}
}

// newEngine builds an engine for the effective dataset configuration.
func newEngine() (*engine.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	if cfg.DataPath == "" {
		return nil, fmt.Errorf("no dataset configured: pass --data or run 'vgmarket config set data_path <file>'")
	}
	path, err := utils.ExpandPath(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	delim, err := cfg.Delim()
	if err != nil {
		return nil, err
	}
	src := engine.Source{
		Path: path,
		Options: dataset.Options{
			YearMin:   cfg.YearMin,
			YearMax:   cfg.YearMax,
			Delimiter: delim,
			Sheet:     cfg.Sheet,
			Table:     cfg.Table,
		},
	}
	return engine.New(src, newLogger()), nil
}

// newLogger returns a stderr logger when --debug is set, nil otherwise.
func newLogger() *log.Logger {
	if !debug {
		return nil
	}
	return log.New(os.Stderr, "[vgmarket] ", log.LstdFlags)
}
