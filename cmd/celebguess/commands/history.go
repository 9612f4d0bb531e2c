package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/celebguess/pkg/archive"
	"github.com/haivivi/celebguess/pkg/cli"
)

var historyFlags struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived games, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum number of games (0 for all)")
	f.StringVar(&historyFlags.format, "format", "table", "output format: table, yaml or json")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, closeArchive, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer closeArchive()

	records, err := a.List(cmd.Context(), historyFlags.limit)
	if err != nil {
		return err
	}
	st := styles()
	opts := cli.OutputOptions{Format: format, Writer: cmd.OutOrStdout(), Styles: &st}
	if format == cli.FormatTable {
		return cli.Output(historyTable{records: records, now: time.Now()}, opts)
	}
	if records == nil {
		records = []archive.Record{}
	}
	return cli.Output(records, opts)
}

type historyTable struct {
	records []archive.Record
	now     time.Time
}

func (t historyTable) TableHeader() []string {
	return []string{"ID", "AGE", "MODE", "MODEL", "SOLVED", "TURNS", "FINAL QUESTION"}
}

func (t historyTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t.records))
	for _, r := range t.records {
		var final string
		if n := len(r.Turns); n > 0 {
			final = r.Turns[n-1].Question
		}
		rows = append(rows, []string{
			shortID(r.ID),
			cli.FormatAge(r.PlayedAt, t.now),
			r.Mode,
			r.Model,
			cli.FormatYesNo(r.Solved),
			strconv.Itoa(len(r.Turns)),
			final,
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 13 {
		return id[:13]
	}
	return id
}
