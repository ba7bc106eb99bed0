package main

import (
	"fmt"
	"os"
	"path/filepath"

	"auditdesk/cmd/auditdesk/config"
	"auditdesk/cmd/auditdesk/tui"
	"auditdesk/cmd/auditdesk/ui"
	"auditdesk/internal/logging"
	"auditdesk/internal/wizard"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "1.0.0"

var (
	// Global flags
	verbose bool
	fast    bool
	theme   string

	cfg config.Config
)

// rootCmd launches the interactive wizard.
var rootCmd = &cobra.Command{
	Use:   "auditdesk",
	Short: "auditdesk - interactive product audit wizard",
	Long: `auditdesk is a terminal wizard for auditing merchant product
integrations.

Sign in with a merchant ID (admin) or merchant credentials, pick a product,
validate a transaction identifier, and walk the generated audit checklist
through to the emailed report. All merchant and transaction data is a static
demo fixture; no external systems are contacted.

Run without arguments to start the wizard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, loadErr := config.Load()
		// A broken config file must not block the app; fall back to
		// defaults and note it once logging is up.
		cfg = loaded
		if cmd.Flags().Changed("fast") {
			cfg.Fast = fast
		}
		if cmd.Flags().Changed("theme") {
			cfg.Theme = theme
		}

		dir, err := config.Dir()
		if err != nil {
			return err
		}
		// The TUI owns the terminal, so logs go to files and only in
		// debug mode.
		if err := logging.Initialize(filepath.Join(dir, "logs"), verbose || cfg.Debug); err != nil {
			return err
		}
		if loadErr != nil {
			logging.L(logging.CategorySession).Warn("config ignored", zap.Error(loadErr))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the auditdesk version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("auditdesk %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to the config directory")
	rootCmd.PersistentFlags().BoolVar(&fast, "fast", false, "Skip the simulated operation delays")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "", "Color theme: light, dark or auto")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runWizard() error {
	session, err := wizard.NewSession(wizard.Config{
		Logger: logging.L(logging.CategorySession),
	})
	if err != nil {
		return fmt.Errorf("initializing session: %w", err)
	}

	delays := tui.DefaultDelays()
	if cfg.Fast {
		delays = tui.FastDelays()
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return tui.Run(tui.Options{
		Session: session,
		Styles:  ui.NewStyles(ui.ThemeByName(cfg.Theme)),
		Delays:  delays,
		Logger:  logging.L(logging.CategoryUI),
		WorkDir: wd,
	})
}
