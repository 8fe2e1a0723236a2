package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/predictpark/predictpark/internal/journal"
	"github.com/predictpark/predictpark/pkg/format"
)

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recorded swipe decisions",
	Long: `List the most recent swipe decisions, newest first.

Examples:
  predictpark journal
  predictpark journal --limit 100`,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().IntVar(&journalLimit, "limit", 50, "number of decisions to show")
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal is disabled (journal.path is empty)")
	}
	if err := initLogger(cfg, true); err != nil {
		return err
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	decisions, err := j.Recent(cmd.Context(), journalLimit)
	if err != nil {
		return err
	}
	if len(decisions) == 0 {
		fmt.Println("no decisions recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DECIDED\tSIDE\tASSET\tPRICE\tPROB\tMARKET")
	for _, d := range decisions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			format.Date(d.DecidedAt.Local()),
			d.Side,
			d.Asset,
			format.Currency(d.Price),
			format.Probability(d.Probability),
			d.Slug,
		)
	}
	return w.Flush()
}
