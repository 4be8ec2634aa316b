package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pnl"
)

var pnlCmd = &cobra.Command{
	Use:   "pnl",
	Short: "Show the cumulative P&L curve",
	Long: `Print the trades in date order with their final P&L and the running
total. --from and --to limit the curve; the totals always cover every trade.

Examples:
  tradejournal pnl
  tradejournal pnl --from 2025-09-01 --to 2025-09-30`,
	Args: cobra.NoArgs,
	RunE: runPnl,
}

var (
	pnlFrom string
	pnlTo   string
)

func init() {
	rootCmd.AddCommand(pnlCmd)

	pnlCmd.Flags().StringVar(&pnlFrom, "from", "", "first date YYYY-MM-DD")
	pnlCmd.Flags().StringVar(&pnlTo, "to", "", "last date YYYY-MM-DD")
}

func runPnl(cmd *cobra.Command, args []string) error {
	r, err := pnl.ParseRange(pnlFrom, pnlTo)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	out := cmd.OutOrStdout()
	if !r.IsZero() {
		fmt.Fprintf(out, "Range: %s\n\n", r)
	}
	fmt.Fprint(out, journal.FormatSeriesOrg(sess.Series(r)))

	d := display()
	totals := sess.Totals()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Net charges: %s\n", d.Amount(totals.NetCharges))
	fmt.Fprintf(out, "Final P&L:   %s\n", d.Amount(totals.NetFinalPL))
	return nil
}
