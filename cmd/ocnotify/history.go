package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/ocnotify/internal/adapter/output"
	"github.com/jmylchreest/ocnotify/internal/core"
	"github.com/jmylchreest/ocnotify/internal/model"
	"github.com/jmylchreest/ocnotify/internal/store"
)

var historyOpts struct {
	limit    int
	format   string
	template string
	since    string
	kind     string
	failed   bool
	filter   string
	noColor  bool
	clear    bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent notifications",
	Long: `List the notifications ocnotify dispatched, newest first, with the
mechanism that played each one or the mechanisms that failed.

Output formats:
  plain - One line per entry (default)
  json  - JSON lines, the same shape as the history file
  ids   - Entry IDs only

Filter expressions (--filter):
  kind=permission            permission requests only
  played=false,timestamp>1d  failures in the last day
  attempted=paplay           paplay was tried
  attempts>1                 the primary mechanism failed
  duration>=2000             playback took 2s or more

Template variables (--template):
  {{.Index}} {{.Entry.Kind}} {{.Entry.Mechanism}} {{.Entry.Attempts}}
  {{.RelativeTime}} plus the functions join, reltime and ms.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20,
		"Maximum number of entries to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format: plain, json, ids")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Go template for plain output")
	historyCmd.Flags().StringVar(&historyOpts.since, "since", "0",
		"Only entries newer than this (e.g. 1h, 7d, 0 for all)")
	historyCmd.Flags().StringVar(&historyOpts.kind, "kind", "",
		"Only entries of this kind: permission, completion")
	historyCmd.Flags().BoolVar(&historyOpts.failed, "failed", false,
		"Only entries where no mechanism played")
	historyCmd.Flags().StringVar(&historyOpts.filter, "filter", "",
		"Filter expression (see above)")
	historyCmd.Flags().BoolVar(&historyOpts.noColor, "no-color", false,
		"Disable colored output")
	historyCmd.Flags().BoolVar(&historyOpts.clear, "clear", false,
		"Remove all entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, ok := output.ParseFormat(historyOpts.format)
	if !ok {
		return fmt.Errorf("unknown format %q", historyOpts.format)
	}
	since, err := core.ParseDuration(historyOpts.since)
	if err != nil {
		return err
	}
	var kind model.EventKind
	if historyOpts.kind != "" {
		if kind, err = model.ParseEventKind(historyOpts.kind); err != nil {
			return err
		}
	}
	expr, err := core.ParseFilter(historyOpts.filter)
	if err != nil {
		return err
	}

	journal, err := store.OpenJournal(historyPath())
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	if historyOpts.clear {
		if err := journal.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		logger.Info("history cleared", "path", journal.Path())
		return nil
	}

	entries, err := journal.Recent(0)
	if err != nil {
		return err
	}
	entries = core.FilterWithExpr(entries, expr)
	entries = core.Filter(entries, core.FilterOptions{
		Since:  since,
		Kind:   kind,
		Failed: historyOpts.failed,
		Limit:  historyOpts.limit,
	})

	if len(entries) == 0 && format == output.FormatPlain {
		fmt.Fprintln(os.Stderr, "no notifications recorded")
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	opts.Color = !historyOpts.noColor
	return output.NewFormatter(format, opts).Format(os.Stdout, entries)
}
