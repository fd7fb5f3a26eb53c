package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"signal-io/internal/adapter"
	"signal-io/internal/config"
	"signal-io/internal/ingestion"
	"signal-io/internal/verification"
)

type verifyFlags struct {
	adapter           string
	source            string
	sink              string
	date              string
	since             string
	until             string
	lenient           bool
	validateAddresses bool
}

var verifyOpts verifyFlags

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-run an adapter and compare its output with stored signals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := verifyOpts
		if f.sink == "" {
			f.sink = cfg.Store.Driver
		}
		if f.sink == config.DriverNone || f.sink == config.DriverMemory {
			return eris.Errorf("verify: sink %q keeps nothing between runs", f.sink)
		}

		a, err := adapter.DefaultRegistry().Get(f.adapter)
		if err != nil {
			return err
		}
		window, err := ingestion.ResolveWindow(f.date, f.since, f.until)
		if err != nil {
			return err
		}

		env, err := openSink(ctx, f.sink)
		if err != nil {
			return err
		}
		defer env.Close()

		verifier := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
			Store:   env.Signals,
			Adapter: a,
			Source:  f.source,
			AdapterOptions: adapter.Options{
				Since:             window.Since,
				Until:             window.Until,
				Lenient:           f.lenient,
				ValidateAddresses: f.validateAddresses,
				Logger:            zap.L(),
			},
		})

		report, err := verifier.VerifyAll(ctx)
		if err != nil {
			return eris.Wrap(err, "verify")
		}
		if err := printReport(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.OK() {
			return eris.Errorf("verify: %d divergent, %d missing of %d signals",
				report.DivergentSignals, report.MissingSignals, report.TotalSignals)
		}
		return nil
	},
}

func printReport(w io.Writer, report *verification.VerificationReport) error {
	if _, err := fmt.Fprintf(w, "total=%d\nmatched=%d\ndivergent=%d\nmissing=%d\n",
		report.TotalSignals, report.MatchedSignals, report.DivergentSignals, report.MissingSignals); err != nil {
		return err
	}
	for _, r := range report.Results {
		if r.Match {
			continue
		}
		if r.Missing {
			if _, err := fmt.Fprintf(w, "missing %s\n", r.SignalID); err != nil {
				return err
			}
			continue
		}
		for _, d := range r.Divergences {
			if _, err := fmt.Fprintf(w, "diverged %s %s stored=%v replayed=%v\n",
				r.SignalID, d.Field, d.Expected, d.Actual); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	flags := verifyCmd.Flags()
	flags.StringVar(&verifyOpts.adapter, "adapter", "", "adapter that produced the stored signals")
	flags.StringVar(&verifyOpts.source, "source", "", "JSONL file or directory that was ingested")
	flags.StringVar(&verifyOpts.sink, "sink", "", "sqlite, postgres or clickhouse (default store.driver)")
	flags.StringVar(&verifyOpts.date, "date", "", "UTC date window of the original run (YYYY-MM-DD)")
	flags.StringVar(&verifyOpts.since, "since", "", "inclusive lower bound of the original run")
	flags.StringVar(&verifyOpts.until, "until", "", "inclusive upper bound of the original run")
	flags.BoolVar(&verifyOpts.lenient, "lenient", false, "the original run used --lenient")
	flags.BoolVar(&verifyOpts.validateAddresses, "validate-addresses", false, "the original run used --validate-addresses")
	_ = verifyCmd.MarkFlagRequired("adapter")
	_ = verifyCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(verifyCmd)
}
