package main

import (
	"fmt"
	"os"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/config"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/logging"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	logFile    string
	cityDir    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spacetime [city-file]",
	Short: "Morph a city map between geography and travel time",
	Long: `spacetime lays out city landmarks as a spring mesh. Each spring wants
the geographic distance between its two landmarks at timeness 0 and the
travel time between them at timeness 1. A warped grid shows the distortion.

Run without arguments to pick one of the bundled cities or a descriptor from
--city-dir. Given a .json or .yaml descriptor, it opens that city directly and
the sibling descriptors become the next/previous cities. A bundled city can
also be opened by name, e.g. "spacetime london".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cityDir != "" {
			cfg.View.CityDir = cityDir
		}
		if logFile != "" {
			cfg.Logging.File = logFile
		}
		if verbose {
			cfg.Logging.Level = "debug"
			cfg.Logging.Development = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// The viewer owns the terminal: without a log file it stays quiet.
		interactive := cmd == cmd.Root()
		logger, err = newLogger(cfg.Logging, interactive)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runViewer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&cityDir, "city-dir", "", "Directory of city descriptors for the picker")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(l config.Logging, interactive bool) (*zap.Logger, error) {
	switch {
	case l.File != "":
		return logging.NewFile(l.Level, l.File, l.Development)
	case interactive:
		return zap.NewNop(), nil
	}
	return logging.New(l.Level, l.Development)
}

func runViewer(cmd *cobra.Command, args []string) error {
	eng := engine.New(cfg.Engine, logger)

	if len(args) == 0 {
		cat, err := defaultCatalog(cfg.View.CityDir, logger)
		if err != nil {
			return err
		}
		final, err := tea.NewProgram(newStartupModel(eng, cat, cfg.View, logger), programOptions()...).Run()
		if err != nil {
			return err
		}
		if sm, ok := final.(startupModel); ok && sm.browser.HasError() {
			return sm.browser.Error()
		}
		return nil
	}

	cat, idx, err := openTarget(args[0])
	if err != nil {
		return err
	}
	if err := openEntry(eng, cat, idx); err != nil {
		return err
	}
	model := ui.New(eng, cat, cfg.View, logger)
	if _, err := tea.NewProgram(model, programOptions()...).Run(); err != nil {
		return err
	}
	return nil
}

// Hover needs motion events without a button held.
func programOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus()}
}
