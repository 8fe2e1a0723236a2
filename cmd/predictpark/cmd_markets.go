package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/feedclient"
	"github.com/predictpark/predictpark/pkg/format"
)

var (
	marketsAsset     []string
	marketsMinVolume float64
	marketsSearch    string
	marketsJSON      bool
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Fetch the current market list once",
	Long: `Fetch crypto markets from the configured feed and print them.

Examples:
  predictpark markets
  predictpark markets --asset BTC,ETH --min-volume 5000
  predictpark markets --search bitcoin --json`,
	RunE: runMarkets,
}

func init() {
	rootCmd.AddCommand(marketsCmd)
	marketsCmd.Flags().StringSliceVar(&marketsAsset, "asset", nil, "crypto asset whitelist (comma separated)")
	marketsCmd.Flags().Float64Var(&marketsMinVolume, "min-volume", 0, "minimum 24h volume (0 = server default)")
	marketsCmd.Flags().StringVar(&marketsSearch, "search", "", "case-insensitive text search")
	marketsCmd.Flags().BoolVar(&marketsJSON, "json", false, "print the raw JSON envelope")
}

func runMarkets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogger(cfg, true); err != nil {
		return err
	}

	fl := feedFilters(cfg)
	if cmd.Flags().Changed("asset") {
		fl.CryptoAsset = marketsAsset
	}
	if cmd.Flags().Changed("min-volume") {
		fl.MinVolume = marketsMinVolume
	}
	if cmd.Flags().Changed("search") {
		fl.Search = marketsSearch
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Feed.Timeout+time.Second)
	defer cancel()

	resp, err := feedclient.NewClient(cfg.Feed.BaseURL, cfg.Feed.Timeout).FetchMarkets(ctx, fl)
	if err != nil {
		return err
	}

	if marketsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printMarkets(resp.Data, time.Now())
	fmt.Printf("\n%d market(s)\n", resp.Total)
	return nil
}

func printMarkets(markets []domain.Market, now time.Time) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tASSET\tUP\tYES\tNO\tVOL 24H\tLIQUIDITY\tCLOSES\tTITLE")
	for _, m := range markets {
		closes := "-"
		if !m.ClosesAt.IsZero() {
			closes = format.RelativeTime(m.ClosesAt, now)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			m.CryptoAsset,
			format.Probability(m.Up.Probability),
			format.Currency(m.Up.Price),
			format.Currency(m.Down.Price),
			format.CompactCurrency(m.Volume24h),
			format.CompactCurrency(m.Liquidity),
			closes,
			format.Truncate(m.Title, 50),
		)
	}
	w.Flush()
}
