package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/contract"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pnl"
	"github.com/rustyeddy/tradejournal/trade"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Add, edit, remove and list trades",
	Long: `Manage the trades in the journal.

Subcommands:
  add   - Record a new trade
  edit  - Replace the fields of an existing trade
  rm    - Remove a trade
  list  - List trades by date
  show  - Show one trade as an Org block

The contract is typed through the auto-formatter, so "p 108000 260925"
is stored as P-BTC-108000-260925. Numbers that do not parse are saved as 0.

Examples:
  tradejournal trade add --contract "c 60000 261225" --type Buy --lot 1 --entry 250 --exit 310 --pl 60 --charges 1.2
  tradejournal trade edit 01J8... --remarks "closed early"
  tradejournal trade list --from 2025-09-01`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeAdd,
}

var tradeEditCmd = &cobra.Command{
	Use:   "edit <trade-id>",
	Short: "Replace the fields of an existing trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeEdit,
}

var tradeRmCmd = &cobra.Command{
	Use:     "rm <trade-id>",
	Aliases: []string{"delete"},
	Short:   "Remove a trade",
	Args:    cobra.ExactArgs(1),
	RunE:    runTradeRm,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades by date",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show one trade as an Org block",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var (
	tradeForm trade.Form
	tradeType string

	tradeListFrom string
	tradeListTo   string
	tradeListOrg  bool
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd)
	tradeCmd.AddCommand(tradeEditCmd)
	tradeCmd.AddCommand(tradeRmCmd)
	tradeCmd.AddCommand(tradeListCmd)
	tradeCmd.AddCommand(tradeShowCmd)

	for _, c := range []*cobra.Command{tradeAddCmd, tradeEditCmd} {
		f := c.Flags()
		f.StringVar(&tradeForm.Date, "date", "", "trade date YYYY-MM-DD (default today)")
		f.StringVar(&tradeForm.Contract, "contract", "", "contract, e.g. P-BTC-108000-260925")
		f.StringVar(&tradeType, "type", "Sell", "Buy or Sell")
		f.StringVar(&tradeForm.Lot, "lot", "", "lot size")
		f.StringVar(&tradeForm.Entry, "entry", "", "entry price")
		f.StringVar(&tradeForm.Exit, "exit", "", "exit price")
		f.StringVar(&tradeForm.Charges, "charges", "", "charges")
		f.StringVar(&tradeForm.PL, "pl", "", "gross P&L")
		f.StringVar(&tradeForm.Remarks, "remarks", "", "free text")
	}

	tradeListCmd.Flags().StringVar(&tradeListFrom, "from", "", "first date YYYY-MM-DD")
	tradeListCmd.Flags().StringVar(&tradeListTo, "to", "", "last date YYYY-MM-DD")
	tradeListCmd.Flags().BoolVar(&tradeListOrg, "org", false, "print Org blocks instead of a table")
}

// applyFlags copies the flags the user set onto form.
func applyFlags(cmd *cobra.Command, form trade.Form) (trade.Form, error) {
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("date", &form.Date, tradeForm.Date)
	set("lot", &form.Lot, tradeForm.Lot)
	set("entry", &form.Entry, tradeForm.Entry)
	set("exit", &form.Exit, tradeForm.Exit)
	set("charges", &form.Charges, tradeForm.Charges)
	set("pl", &form.PL, tradeForm.PL)
	set("remarks", &form.Remarks, tradeForm.Remarks)

	if flags.Changed("contract") {
		var field contract.Field
		form.Contract = field.Type(tradeForm.Contract)
	}
	if flags.Changed("type") {
		side, err := trade.ParseSide(tradeType)
		if err != nil {
			return form, err
		}
		form.Type = side
	}
	return form, nil
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	form, err := applyFlags(cmd, trade.BlankForm())
	if err != nil {
		return err
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, err := sess.AddTrade(form.Save(nil))
	if err != nil {
		return fmt.Errorf("add trade: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added trade %s (final P&L %.2f)\n", t.ID, t.FinalPL())
	return nil
}

func runTradeEdit(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	existing, ok := sess.Trade(args[0])
	if !ok {
		return fmt.Errorf("trade %s: %w", args[0], journal.ErrNotFound)
	}

	form, err := applyFlags(cmd, trade.FormOf(existing))
	if err != nil {
		return err
	}

	t := form.Save(&existing)
	if err := sess.EditTrade(t); err != nil {
		return fmt.Errorf("edit trade: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated trade %s (final P&L %.2f)\n", t.ID, t.FinalPL())
	return nil
}

func runTradeRm(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	removed, err := sess.DeleteTrade(args[0])
	if err != nil {
		return fmt.Errorf("remove trade: %w", err)
	}
	if !removed {
		fmt.Fprintf(cmd.OutOrStdout(), "No trade %s\n", args[0])
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed trade %s\n", args[0])
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	r, err := pnl.ParseRange(tradeListFrom, tradeListTo)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	trades := pnl.SortByDate(pnl.Filter(sess.Trades(), r))
	if tradeListOrg {
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(trades))
		return nil
	}
	return writeTradeTable(cmd.OutOrStdout(), trades)
}

func writeTradeTable(w io.Writer, trades []trade.Trade) error {
	if len(trades) == 0 {
		_, err := fmt.Fprintln(w, "No trades.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCONTRACT\tTYPE\tLOT\tENTRY\tEXIT\tCHARGES\tP&L\tFINAL\tID")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			t.Date, t.Contract, t.Type, t.Lot, t.Entry, t.Exit, t.Charges, t.PL, t.FinalPL(), t.ID)
	}
	return tw.Flush()
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	t, ok := sess.Trade(args[0])
	if !ok {
		return fmt.Errorf("trade %s: %w", args[0], journal.ErrNotFound)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}
