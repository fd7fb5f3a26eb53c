package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"signal-io/internal/adapter"
	"signal-io/internal/config"
	"signal-io/internal/ingestion"
)

type ingestFlags struct {
	adapter           string
	sources           []string
	out               string
	store             string
	date              string
	since             string
	until             string
	dryRun            bool
	stats             bool
	lenient           bool
	errorLog          string
	validateAddresses bool
	sink              string
}

var ingestOpts ingestFlags

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalize one or more sources with an adapter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f := ingestOpts
		if !cmd.Flags().Changed("sink") {
			f.sink = cfg.Store.Driver
		}
		if err := f.validate(); err != nil {
			return err
		}

		var sinks []ingestion.SignalSink
		if !f.dryRun {
			env, err := openSink(ctx, f.sink)
			if err != nil {
				return err
			}
			if env != nil {
				defer env.Close()
				sinks = append(sinks, env.Sink())
			}
		}

		runner := ingestion.NewRunner(ingestion.RunnerOptions{
			Registry:        adapter.DefaultRegistry(),
			Logger:          zap.L(),
			Metrics:         metrics,
			Stdout:          cmd.OutOrStdout(),
			DefaultIssueLog: cfg.Ingest.IssueLog,
		})

		return runIngest(ctx, runner, f, sinks)
	},
}

func (f ingestFlags) validate() error {
	if len(f.sources) == 0 {
		return eris.New("at least one --source is required")
	}
	if f.out == "" && f.store == "" && !f.dryRun && (f.sink == "" || f.sink == config.DriverNone) {
		return eris.New("at least one of --out, --store, --dry-run or --sink is required")
	}
	if f.out != "" && len(f.sources) > 1 {
		return eris.New("--out accepts a single --source; use --store or --sink for several")
	}
	return config.ValidateDriver(f.sink)
}

func (f ingestFlags) request(source string, sinks []ingestion.SignalSink) ingestion.Request {
	return ingestion.Request{
		Adapter:           f.adapter,
		Source:            source,
		Out:               f.out,
		Store:             f.store,
		Day:               f.date,
		Since:             f.since,
		Until:             f.until,
		DryRun:            f.dryRun,
		Stats:             f.stats,
		Lenient:           f.lenient,
		ValidateAddresses: f.validateAddresses,
		IssueLog:          f.errorLog,
		Sinks:             sinks,
	}
}

// runIngest maps every source concurrently, then commits them in flag order
// so that appended partitions and the issue log stay deterministic.
func runIngest(ctx context.Context, runner *ingestion.Runner, f ingestFlags, sinks []ingestion.SignalSink) error {
	prepared := make([]*ingestion.Prepared, len(f.sources))

	var g errgroup.Group
	for i, source := range f.sources {
		g.Go(func() error {
			p, err := runner.Prepare(f.request(source, sinks))
			if err != nil {
				return err
			}
			prepared[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var emitted, issues int
	for _, p := range prepared {
		result, err := runner.Commit(ctx, p)
		if err != nil {
			return err
		}
		emitted += result.Emitted
		issues += result.Issues
	}

	zap.L().Info("ingest complete",
		zap.Int("sources", len(f.sources)),
		zap.Int("emitted", emitted),
		zap.Int("issues", issues),
	)
	return nil
}

func init() {
	flags := ingestCmd.Flags()
	flags.StringVar(&ingestOpts.adapter, "adapter", "", "adapter name (see `signal-io adapters`)")
	flags.StringArrayVar(&ingestOpts.sources, "source", nil, "JSONL file or directory; repeatable")
	flags.StringVar(&ingestOpts.out, "out", "", "full output file, or directory when --date is set")
	flags.StringVar(&ingestOpts.store, "store", "", "partitioned store root; appends to <store>/signals/<day>.jsonl")
	flags.StringVar(&ingestOpts.date, "date", "", "UTC date window to ingest (YYYY-MM-DD)")
	flags.StringVar(&ingestOpts.since, "since", "", "inclusive lower bound (ISO-8601)")
	flags.StringVar(&ingestOpts.until, "until", "", "inclusive upper bound (ISO-8601)")
	flags.BoolVar(&ingestOpts.dryRun, "dry-run", false, "map and count without writing")
	flags.BoolVar(&ingestOpts.stats, "stats", false, "print key=value stats per source")
	flags.BoolVar(&ingestOpts.lenient, "lenient", false, "map invalid records to fallback payloads instead of reporting issues")
	flags.StringVar(&ingestOpts.errorLog, "error-log", "", "issue log path (default from ingest.issue_log when issues occur)")
	flags.BoolVar(&ingestOpts.validateAddresses, "validate-addresses", false, "check solana token mints and wallets")
	flags.StringVar(&ingestOpts.sink, "sink", config.DriverNone, "database sink: none, memory, sqlite, postgres or clickhouse")
	_ = ingestCmd.MarkFlagRequired("adapter")
	rootCmd.AddCommand(ingestCmd)
}
