package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")

			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch cfg.Format {
			case "json":
				if records == nil {
					records = []history.Record{}
				}
				return encodeJSON(out, records)
			case "yaml":
				return encodeYAML(out, records)
			}

			if len(records) == 0 {
				fmt.Fprintln(out, "No recorded runs.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.CreatedAt.Local().Format(time.DateTime),
					strconv.Itoa(r.Shots),
					strconv.FormatUint(r.Seed, 10),
					noiseSummary(r),
					countsSummary(r.Counts),
				})
			}

			fmt.Fprintln(out, renderRuns(rows))
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 lists all)")
	addFormatFlag(cmd)

	return cmd
}

func noiseSummary(r history.Record) string {
	if !r.Noisy {
		return "ideal"
	}
	return fmt.Sprintf("%g/%g/%g", r.PReset, r.PMeas, r.PGate1)
}

func countsSummary(counts map[string]int) string {
	c := qsim.Counts(counts)
	parts := make([]string, 0, len(c))
	for _, k := range c.Keys() {
		parts = append(parts, fmt.Sprintf("%s:%d", k, c[k]))
	}
	return strings.Join(parts, " ")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle()
)

var runHeaders = []string{"ID", "WHEN", "SHOTS", "SEED", "NOISE", "COUNTS"}

// renderRuns lays rows out in columns sized to their widest cell.
func renderRuns(rows [][]string) string {
	widths := make([]int, len(runHeaders))
	for i, h := range runHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(style lipgloss.Style, cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return style.Render(strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, line(headerStyle, runHeaders))
	for _, row := range rows {
		lines = append(lines, line(cellStyle, row))
	}

	return strings.Join(lines, "\n")
}
