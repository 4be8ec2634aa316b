package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/pricefeed"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Follow the live BTC/USDT price",
	Long: `Connect to the Binance ticker stream and print each price with its
direction against the previous one. Stops on Ctrl-C or after --count ticks.

Example:
  tradejournal price --count 5`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

var priceCount int

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().IntVarP(&priceCount, "count", "n", 0, "stop after this many ticks (0 = until interrupted)")
}

var arrows = map[pricefeed.Direction]string{
	pricefeed.Up:   "▲",
	pricefeed.Down: "▼",
	pricefeed.Flat: "•",
}

func runPrice(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := pricefeed.New(cfg.Feed.URL, logger)
	ticks, unsubscribe := feed.Subscribe()
	defer unsubscribe()

	errc := make(chan error, 1)
	go func() { errc <- feed.Run(ctx) }()

	out := cmd.OutOrStdout()
	seen := 0
	for {
		select {
		case t := <-ticks:
			fmt.Fprintf(out, "%s  %s %.2f\n", t.Time.Format("15:04:05"), arrows[t.Direction], t.Price)
			seen++
			if priceCount > 0 && seen >= priceCount {
				cancel()
				<-errc
				return nil
			}
		case err := <-errc:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
