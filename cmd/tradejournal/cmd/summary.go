package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show or edit the account parameters",
	Long: `The summary holds the parameters used to plan trades: capital,
trading days, lot size, risk per trade and the P&L ratio.

Subcommands:
  show   - Print the parameters and the journal totals
  set    - Set one numeric parameter
  ratio  - Set the P&L ratio parts
  reset  - Go back to the default parameters

Fields: ` + strings.Join(journal.SummaryFields, ", ") + `

Examples:
  tradejournal summary set capital 250
  tradejournal summary ratio 1 4`,
}

var summaryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the parameters and the journal totals",
	Args:  cobra.NoArgs,
	RunE:  runSummaryShow,
}

var summarySetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set one parameter",
	Args:  cobra.ExactArgs(2),
	RunE:  runSummarySet,
}

var summaryRatioCmd = &cobra.Command{
	Use:   "ratio <a> [b]",
	Short: "Set the P&L ratio parts",
	Long: `Set the left part of the P&L ratio, and the right part when given.
The parts are free text.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSummaryRatio,
}

var summaryResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Go back to the default parameters",
	Args:  cobra.NoArgs,
	RunE:  runSummaryReset,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.AddCommand(summaryShowCmd)
	summaryCmd.AddCommand(summarySetCmd)
	summaryCmd.AddCommand(summaryRatioCmd)
	summaryCmd.AddCommand(summaryResetCmd)
}

func runSummaryShow(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatSummaryOrg(sess.Summary(), sess.Totals(), sess.Stats(), display()))
	return nil
}

func runSummarySet(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	s, err := sess.SetSummaryField(args[0], args[1])
	if err != nil {
		return err
	}

	v, _ := s.Field(args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %v\n", args[0], v)
	return nil
}

func runSummaryRatio(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	s, err := sess.SetPLRatioPart(1, args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		if s, err = sess.SetPLRatioPart(2, args[1]); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", journal.PLRatioField, s.PLRatio)
	return nil
}

func runSummaryReset(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	if _, err := sess.ResetSummary(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Summary reset to defaults")
	return nil
}
