package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/ocnotify/internal/audio"
	"github.com/jmylchreest/ocnotify/internal/model"
)

var detectOpts struct {
	format string
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the sound mechanisms available on this machine",
	Long: `Probe every mechanism known for this platform and print the usable ones,
best first. The terminal bell is always last.

Output formats: table (default), json, plain (one id per line).`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVarP(&detectOpts.format, "format", "f", "table",
		"Output format: table, json, plain")
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	primaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// detectedMechanism is the JSON shape of one detect row.
type detectedMechanism struct {
	ID          string `json:"id"`
	Priority    int    `json:"priority"`
	Class       string `json:"class"`
	Probe       string `json:"probe,omitempty"`
	Description string `json:"description"`
	Permission  string `json:"permission_method"`
	Completion  string `json:"completion_method"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager := newManager()
	platform := audio.CurrentPlatform()
	ids := manager.Start(ctx)
	registry := audio.DefaultRegistry()

	rows := make([]detectedMechanism, 0, len(ids))
	for _, id := range ids {
		spec, _ := registry.Lookup(id)
		rows = append(rows, detectedMechanism{
			ID:          id,
			Priority:    spec.Priority,
			Class:       spec.Class.String(),
			Probe:       spec.Probe,
			Description: spec.Description,
		})
	}
	if len(rows) > 0 {
		rows[0].Permission = manager.MechanismsFor(model.KindPermission)[0]
		rows[0].Completion = manager.MechanismsFor(model.KindCompletion)[0]
	}

	switch detectOpts.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Platform   audio.Platform      `json:"platform"`
			Mechanisms []detectedMechanism `json:"mechanisms"`
		}{platform, rows})
	case "plain":
		for _, r := range rows {
			fmt.Println(r.ID)
		}
		return nil
	case "table":
		fmt.Print(renderDetectTable(platform, rows, manager))
		return nil
	default:
		return fmt.Errorf("unknown format %q", detectOpts.format)
	}
}

func renderDetectTable(platform audio.Platform, rows []detectedMechanism, manager *audio.Manager) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Platform: "+string(platform)) + "\n")
	if !manager.Config().Enabled {
		b.WriteString(failStyle.Render("audio notifications are disabled in config") + "\n")
	}
	b.WriteString("\n")

	idWidth := len("MECHANISM")
	for _, r := range rows {
		idWidth = max(idWidth, len(r.ID))
	}
	idCol := lipgloss.NewStyle().Width(idWidth + 2)
	prioCol := lipgloss.NewStyle().Width(10)
	classCol := lipgloss.NewStyle().Width(7)

	b.WriteString(labelStyle.Render(idCol.Render("MECHANISM")+prioCol.Render("PRIORITY")+classCol.Render("CLASS")+"DESCRIPTION") + "\n")
	for i, r := range rows {
		id := idCol.Render(r.ID)
		if i == 0 {
			id = primaryStyle.Render(id)
		}
		b.WriteString(id + prioCol.Render(strconv.Itoa(r.Priority)) + classCol.Render(r.Class) + r.Description + "\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("permission: ") + strings.Join(manager.MechanismsFor(model.KindPermission), " → ") + "\n")
	b.WriteString(labelStyle.Render("completion: ") + strings.Join(manager.MechanismsFor(model.KindCompletion), " → ") + "\n")
	return b.String()
}
