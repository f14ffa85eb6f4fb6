package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"bet-tracker/internal/odds"
	"bet-tracker/internal/settlement"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(2)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("oddscalc", flag.ContinueOnError)
	fs.SetOutput(w)
	american := fs.Float64("odds", 0, "American odds, e.g. -110 or 150")
	stake := fs.Float64("stake", 100, "amount wagered")
	result := fs.String("result", "pending", "win, loss, push, void or pending")
	payout := fs.Float64("payout", 0, "actual payout recorded by the book (0 = use potential)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := settlement.Settle(settlement.Entry{
		Odds:           odds.American(*american),
		Stake:          *stake,
		Result:         settlement.ParseResult(*result),
		RecordedPayout: *payout,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Odds:             %+g\n", *american)
	fmt.Fprintf(w, "Implied win:      %.2f%%\n", out.ImpliedPct)
	fmt.Fprintf(w, "Decimal odds:     %.3f\n", out.DecimalOdds)
	fmt.Fprintf(w, "Stake:            $%.2f\n", *stake)
	fmt.Fprintf(w, "Potential payout: $%.2f\n", out.PotentialPayout)
	fmt.Fprintf(w, "Result:           %s\n", settlement.ParseResult(*result))
	fmt.Fprintf(w, "Net profit:       $%.2f\n", out.NetProfit)
	return nil
}
