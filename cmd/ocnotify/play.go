package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/ocnotify/internal/model"
	"github.com/jmylchreest/ocnotify/internal/store"
)

var playOpts struct {
	record bool
}

var playCmd = &cobra.Command{
	Use:   "play permission|completion",
	Short: "Play a notification sound now",
	Long: `Play the permission or completion sound once, ignoring the cooldown.

Each mechanism attempted is reported. Exits with status 1 when every
mechanism failed.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.KindPermission), string(model.KindCompletion)},
	RunE:      runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolVar(&playOpts.record, "record", false,
		"Record the result in the history file")
}

var errExhausted = errors.New("no mechanism could play the sound")

func runPlay(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseEventKind(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manager := newManager()
	if playOpts.record {
		journal, err := store.OpenJournal(historyPath())
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer func() { _ = journal.Close() }()
		manager.SetJournal(journal)
	}
	manager.Start(ctx)

	res := manager.PlayNow(ctx, kind)
	for _, a := range res.Attempts {
		if a.Err != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", failStyle.Render("✗"), a.Mechanism, a.Err)
			continue
		}
		fmt.Printf("%s %s (%s)\n", primaryStyle.Render("✓"), a.Mechanism, res.Elapsed.Round(1e6))
	}

	if !res.Played {
		return errExhausted
	}
	return nil
}
