package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/ocnotify/internal/adapter/input"
	"github.com/jmylchreest/ocnotify/internal/daemon"
	"github.com/jmylchreest/ocnotify/internal/dbus"
	"github.com/jmylchreest/ocnotify/internal/store"
)

var runOpts struct {
	eventsFile string
	fromStart  bool
	dbus       bool
	noStdin    bool
	noHistory  bool
	maxHistory int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Listen for host events and play notifications",
	Long: `Listen for host events and play the matching notification sound.

permission.updated plays the permission sound immediately. session.idle plays
the completion sound after completionDelayMs. Other events are ignored.

Events are read as JSON lines from stdin by default:

  {"type":"permission.updated","properties":{...}}
  session.idle

Use --events-file to follow a file the host appends events to, and --dbus to
accept events over the session bus (io.github.jmylchreest.OCNotify).`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOpts.eventsFile, "events-file", "",
		"Follow an append-only JSONL events file")
	runCmd.Flags().BoolVar(&runOpts.fromStart, "from-start", false,
		"Replay events already in --events-file")
	runCmd.Flags().BoolVar(&runOpts.dbus, "dbus", false,
		"Accept events on the D-Bus session bus")
	runCmd.Flags().BoolVar(&runOpts.noStdin, "no-stdin", false,
		"Do not read events from stdin")
	runCmd.Flags().BoolVar(&runOpts.noHistory, "no-history", false,
		"Do not record notifications in the history file")
	runCmd.Flags().IntVar(&runOpts.maxHistory, "max-history", store.DefaultMaxEntries,
		"Entries kept in the history file")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting ocnotify", "version", version)

	manager := newManager()
	if !runOpts.noHistory {
		journal, err := store.OpenJournal(historyPath())
		if err != nil {
			logger.Warn("history disabled", "path", historyPath(), "error", err)
		} else {
			defer func() { _ = journal.Close() }()
			if removed, err := journal.Prune(runOpts.maxHistory); err != nil {
				logger.Warn("failed to prune history", "error", err)
			} else if removed > 0 {
				logger.Debug("pruned history", "removed", removed)
			}
			manager.SetJournal(journal)
		}
	}
	manager.Start(ctx)

	sources := buildSources(manager.Mechanisms)
	if len(sources) == 0 {
		return errors.New("no event sources: drop --no-stdin or add --events-file/--dbus")
	}

	// Playback runs under ctx; sources stop early when all are exhausted
	// (stdin reaching EOF) so queued completions can still play.
	srcCtx, srcCancel := context.WithCancel(ctx)
	defer srcCancel()

	dispatcher := daemon.NewDispatcher(ctx, manager, func() time.Duration {
		return manager.Config().CompletionDelay()
	}, logger)

	events := make(chan input.Event, 16)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := src.Run(srcCtx, events); err != nil {
				logger.Error("event source stopped", "source", src.Name(), "error", err)
				return
			}
			logger.Debug("event source finished", "source", src.Name())
		}()
	}
	go func() {
		wg.Wait()
		srcCancel()
	}()

	dispatcher.Run(srcCtx, events)
	wg.Wait()
	dispatcher.Drain(events)

	if ctx.Err() != nil {
		dispatcher.Shutdown()
	} else {
		dispatcher.Wait()
	}

	logger.Info("ocnotify stopped")
	return nil
}

func buildSources(mechanisms func() []string) []input.Source {
	var sources []input.Source
	if !runOpts.noStdin {
		sources = append(sources, input.NewStdinSource(logger))
	}
	if runOpts.eventsFile != "" {
		src := input.NewFileSource(runOpts.eventsFile, logger)
		src.FromStart = runOpts.fromStart
		sources = append(sources, src)
	}
	if runOpts.dbus {
		sources = append(sources, dbus.NewServer(mechanisms, logger))
	}
	return sources
}
