package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/ocnotify/internal/audio"
	"github.com/jmylchreest/ocnotify/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		configPath  string
		historyFile string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ocnotify",
	Short: "Audible notifications for coding agent sessions",
	Long: `ocnotify plays a sound when a coding agent asks for permission or
finishes its work.

It detects which sound mechanisms the machine offers (system sound players,
ALSA tools, tone generators, the PC speaker) and falls back through them in
priority order down to the terminal bell.

Settings are read from the audio_notifications section of
~/.config/opencode/opencode.json. Missing or broken settings fall back to
defaults.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(globalOpts.verbose)

		cfg = config.Resolve(globalOpts.configPath, logger)
		if cfg.Debug && !globalOpts.verbose {
			setupLogger(true)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/opencode/opencode.json)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to history file (default: ~/.local/share/ocnotify/history.jsonl)")
}

// setupLogger configures the global slog logger.
func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// historyPath returns the history file in use.
func historyPath() string {
	if globalOpts.historyFile != "" {
		return globalOpts.historyFile
	}
	return config.HistoryPath()
}

// newManager wires the detector and player for the current host.
func newManager() *audio.Manager {
	registry := audio.DefaultRegistry()
	detector := audio.NewDetector(registry, audio.NewPathProber(), logger)
	player := audio.NewPlayer(registry, nil, nil, nil, logger)
	return audio.NewManager(cfg, detector, player, logger)
}
