package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/contract"
)

var contractCmd = &cobra.Command{
	Use:   "contract [text]",
	Short: "Try the contract auto-formatter",
	Long: `Type text through the contract formatter and show the label it
produces, as the trade form would. With no argument each line read from
stdin is formatted in turn.

A space after the side letter expands to "<side>-BTC-" and a space after
the strike becomes "-":

  tradejournal contract "p 108000 260925"
  P-BTC-108000-260925  Put BTC strike 108000 expiring 26 Sep 2025`,
	RunE: runContract,
}

func init() {
	rootCmd.AddCommand(contractCmd)
}

func runContract(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) > 0 {
		printContract(out, strings.Join(args, " "))
		return nil
	}

	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		printContract(out, sc.Text())
	}
	return sc.Err()
}

func printContract(w io.Writer, typed string) {
	var field contract.Field
	label := field.Type(typed)

	o, err := contract.Parse(label)
	if err != nil {
		fmt.Fprintf(w, "%s  (incomplete %s: %v)\n", label, contract.SideOf(label), err)
		return
	}
	fmt.Fprintf(w, "%s  %s %s strike %g expiring %s\n",
		label, o.Side, o.Underlying, o.Strike, o.Expiry.Format("2 Jan 2006"))
}
