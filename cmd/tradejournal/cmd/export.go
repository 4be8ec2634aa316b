package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pnl"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the journal to a JSON file",
	Long: `Write the summary and every trade to a JSON document that import
reads back. Use "-o -" to write to stdout.

Example:
  tradejournal export -o backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the journal with a JSON export",
	Long: `Replace the summary and all trades with the contents of an export
file. A file that is not a valid export leaves the journal untouched.

Example:
  tradejournal import trade-journal-data.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write the trades as CSV",
	Long: `Write every trade, in date order, as CSV including the final P&L.

Example:
  tradejournal csv -o trades.csv`,
	Args: cobra.NoArgs,
	RunE: runCSV,
}

var (
	exportOutput string
	csvOutput    string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(csvCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", journal.DefaultExportFile, "output file, - for stdout")
	csvCmd.Flags().StringVarP(&csvOutput, "output", "o", "-", "output file, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	if exportOutput == "-" {
		return sess.Export(cmd.OutOrStdout())
	}
	if err := sess.ExportFile(exportOutput); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d trades to %s\n", len(sess.Trades()), exportOutput)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	if err := sess.ImportFile(args[0]); err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d trades from %s\n", len(sess.Trades()), args[0])
	return nil
}

func runCSV(cmd *cobra.Command, args []string) error {
	sess, done, err := openSession()
	if err != nil {
		return err
	}
	defer done()

	trades := pnl.SortByDate(sess.Trades())
	if csvOutput == "-" {
		return journal.WriteTradesCSV(cmd.OutOrStdout(), trades)
	}

	f, err := os.Create(csvOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", csvOutput, err)
	}
	if err := journal.WriteTradesCSV(f, trades); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d trades to %s\n", len(trades), csvOutput)
	return nil
}
