package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes made by other tradejournal processes",
	Long: `Keep the journal open and report whenever another process changes
the trades or the summary. Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := journal.Open(st, journal.Options{Logger: logger, SummaryDelay: cfg.Summary.Debounce})
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	d := display()

	sess.Ledger().OnChange(func(uint64) {
		totals := sess.Totals()
		fmt.Fprintf(out, "%s  trades: %d, final P&L %s\n",
			time.Now().Format("15:04:05"), sess.Ledger().Len(), d.Amount(totals.NetFinalPL))
	})
	cancel := st.OnExternalChange(journal.SummaryKey, func(_ []byte, ok bool) {
		if !ok {
			fmt.Fprintf(out, "%s  summary cleared\n", time.Now().Format("15:04:05"))
			return
		}
		fmt.Fprintf(out, "%s  summary changed\n", time.Now().Format("15:04:05"))
	})
	defer cancel()

	fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", cfg.Storage.DBPath)
	<-ctx.Done()
	return nil
}
