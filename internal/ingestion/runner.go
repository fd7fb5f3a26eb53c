// Package ingestion runs one adapter over one source and hands the ordered
// signals and issues to JSONL outputs and database sinks.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"signal-io/internal/adapter"
	"signal-io/internal/domain"
	"signal-io/internal/jsonl"
	"signal-io/internal/observability"
	"signal-io/internal/storage"
)

// Runner executes ingestion requests against a registry of adapters.
// Prepare is safe for concurrent use. Commits that share output files
// (partitions, issue log) must not overlap.
type Runner struct {
	registry        *adapter.Registry
	logger          *zap.Logger
	metrics         *observability.Metrics
	now             func() time.Time
	stdout          io.Writer
	defaultIssueLog string
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Registry *adapter.Registry // Default: adapter.DefaultRegistry()
	Logger   *zap.Logger       // Default: no-op
	Metrics  *observability.Metrics
	Now      func() time.Time // Default: time.Now
	Stdout   io.Writer        // stats destination, default os.Stdout

	// DefaultIssueLog is used when a run has issues and the request names no log.
	// Default: DefaultIssueLog.
	DefaultIssueLog string
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		registry:        opts.Registry,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		now:             opts.Now,
		stdout:          opts.Stdout,
		defaultIssueLog: opts.DefaultIssueLog,
	}
	if r.registry == nil {
		r.registry = adapter.DefaultRegistry()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.defaultIssueLog == "" {
		r.defaultIssueLog = DefaultIssueLog
	}
	return r
}

// Request describes one ingestion run.
type Request struct {
	Adapter string
	Source  string

	Out   string // full output, truncated and rewritten
	Store string // partitioned store root, appended
	Day   string // YYYY-MM-DD window
	Since string
	Until string

	DryRun            bool // compute everything, write nothing
	Stats             bool // print key=value stats
	Lenient           bool
	ValidateAddresses bool

	IssueLog string
	Sinks    []SignalSink
}

// Result summarizes one ingestion run.
type Result struct {
	RunID       string
	Adapter     string
	Source      string
	Emitted     int
	Issues      int
	RecordsRead int
	OutOfWindow int
	ByPayload   map[string]int
	ByIssueKind map[string]int

	Output     string         // resolved full-output path, empty if none
	IssueLog   string         // issue log path, empty if none applies
	Partitions []string       // partition files appended, in first-written order
	Stored     map[string]int // newly stored signals per sink
}

// ErrNotPrepared is returned when committing a run whose Prepare failed.
var ErrNotPrepared = eris.New("run was not prepared")

// Prepared is a run whose signals and issues are computed but not yet written.
type Prepared struct {
	req     Request
	res     *adapter.Result
	result  *Result
	started time.Time
	logger  *zap.Logger
}

// Result returns the counts computed so far.
func (p *Prepared) Result() *Result { return p.result }

// Run executes one request. Malformed records never fail the run; unknown
// adapters, bad windows, unreadable sources and write failures do.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	p, err := r.Prepare(req)
	if err != nil {
		return p.Result(), err
	}
	return r.Commit(ctx, p)
}

// Prepare looks up the adapter, resolves the window and maps the source.
// It writes nothing, so several sources can be prepared concurrently and
// committed one after another. On error the returned Prepared still carries
// the run ID and has already been recorded in metrics.
func (r *Runner) Prepare(req Request) (*Prepared, error) {
	p := &Prepared{
		req:     req,
		started: time.Now(),
		result: &Result{
			RunID:   uuid.NewString(),
			Adapter: req.Adapter,
			Source:  req.Source,
			Stored:  make(map[string]int),
		},
	}
	p.logger = r.logger.With(
		zap.String("run_id", p.result.RunID),
		zap.String("adapter", req.Adapter),
		zap.String("source", req.Source),
	)

	if err := r.prepare(p); err != nil {
		r.finish(p, err)
		return p, err
	}
	return p, nil
}

func (r *Runner) prepare(p *Prepared) error {
	req, result := p.req, p.result

	a, err := r.registry.Get(req.Adapter)
	if err != nil {
		return err
	}

	window, err := ResolveWindow(req.Day, req.Since, req.Until)
	if err != nil {
		return err
	}

	p.logger.Info("ingestion started", zap.Bool("lenient", req.Lenient), zap.Bool("dry_run", req.DryRun))

	res, err := a.Signals(req.Source, adapter.Options{
		Since:             window.Since,
		Until:             window.Until,
		Lenient:           req.Lenient,
		ValidateAddresses: req.ValidateAddresses,
		Now:               r.now,
		Logger:            p.logger,
	})
	if err != nil {
		return eris.Wrapf(err, "ingest %s", req.Source)
	}
	if err := adapter.ValidateOrdering(res.Signals); err != nil {
		return err
	}
	p.res = res

	result.Emitted = len(res.Signals)
	result.Issues = len(res.Issues)
	result.RecordsRead = res.Stats.RecordsRead
	result.OutOfWindow = res.Stats.OutOfWindow
	result.ByPayload = countPayloads(res.Signals)
	result.ByIssueKind = countIssueKinds(res.Issues)
	result.Output = ResolveOutputPath(req.Out, req.Day)

	result.IssueLog = req.IssueLog
	if result.IssueLog == "" && len(res.Issues) > 0 {
		result.IssueLog = r.defaultIssueLog
	}

	for _, issue := range res.Issues {
		p.logger.Debug("parse issue",
			zap.String("input_file", issue.InputFile),
			zap.Int("line", issue.InputLineNumber),
			zap.String("kind", string(issue.Kind)),
			zap.String("message", issue.Message),
		)
	}
	return nil
}

// Commit writes a prepared run to its outputs and sinks, then prints stats.
// Dry runs only print.
func (r *Runner) Commit(ctx context.Context, p *Prepared) (*Result, error) {
	err := r.commit(ctx, p)
	r.finish(p, err)
	return p.result, err
}

func (r *Runner) commit(ctx context.Context, p *Prepared) error {
	if p.res == nil {
		return ErrNotPrepared
	}
	if !p.req.DryRun {
		if err := r.write(ctx, p.req, p.res, p.result); err != nil {
			return err
		}
	}
	if p.req.Stats {
		return r.printStats(p.result)
	}
	return nil
}

func (r *Runner) finish(p *Prepared, err error) {
	result := p.result
	r.metrics.RecordRun(observability.RunSummary{
		Adapter:     p.req.Adapter,
		RecordsRead: result.RecordsRead,
		OutOfWindow: result.OutOfWindow,
		ByPayload:   result.ByPayload,
		ByIssueKind: result.ByIssueKind,
		Duration:    time.Since(p.started),
		Err:         err,
		FinishedAt:  r.now(),
	})

	if err != nil {
		p.logger.Error("ingestion failed", zap.Error(err))
		return
	}
	p.logger.Info("ingestion finished",
		zap.Int("emitted", result.Emitted),
		zap.Int("issues", result.Issues),
		zap.Int("out_of_window", result.OutOfWindow),
		zap.Duration("elapsed", time.Since(p.started)),
	)
}

func (r *Runner) write(ctx context.Context, req Request, res *adapter.Result, result *Result) error {
	lines, err := jsonl.EncodeLines(res.Signals)
	if err != nil {
		return eris.Wrap(err, "encode signals")
	}

	if result.Output != "" {
		if err := jsonl.WriteFile(result.Output, lines); err != nil {
			return err
		}
	}

	if req.Store != "" {
		days, byDay := partition(res.Signals, lines)
		for _, day := range days {
			path := PartitionPath(req.Store, day)
			if err := jsonl.AppendFile(path, byDay[day]); err != nil {
				return err
			}
			result.Partitions = append(result.Partitions, path)
		}
	}

	if len(res.Issues) > 0 && result.IssueLog != "" {
		issueLines, err := jsonl.EncodeLines(res.Issues)
		if err != nil {
			return eris.Wrap(err, "encode issues")
		}
		if err := jsonl.AppendFile(result.IssueLog, issueLines); err != nil {
			return err
		}
	}

	if len(req.Sinks) == 0 {
		return nil
	}

	records, err := storage.NewSignalRecords(res.Signals)
	if err != nil {
		return err
	}
	batch := &Batch{RunID: result.RunID, Records: records, Issues: res.Issues}

	for _, sink := range req.Sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		began := time.Now()
		n, err := sink.Write(ctx, batch)
		r.metrics.RecordSinkWrite(sink.Name(), time.Since(began), err)
		if err != nil {
			return err
		}
		result.Stored[sink.Name()] = n
		r.logger.Debug("sink written",
			zap.String("run_id", result.RunID),
			zap.String("sink", sink.Name()),
			zap.Int("stored", n),
			zap.Int("skipped", len(records)-n),
		)
	}
	return nil
}

func (r *Runner) printStats(result *Result) error {
	out := []string{
		"adapter=" + result.Adapter,
		"source=" + result.Source,
		fmt.Sprintf("emitted=%d", result.Emitted),
		fmt.Sprintf("errors=%d", result.Issues),
	}

	payloadTypes := make([]string, 0, len(result.ByPayload))
	for t := range result.ByPayload {
		payloadTypes = append(payloadTypes, t)
	}
	sort.Strings(payloadTypes)
	for _, t := range payloadTypes {
		out = append(out, fmt.Sprintf("payload.%s=%d", t, result.ByPayload[t]))
	}

	if result.IssueLog != "" {
		out = append(out, "error_log="+result.IssueLog)
	}

	for _, line := range out {
		if _, err := fmt.Fprintln(r.stdout, line); err != nil {
			return eris.Wrap(err, "print stats")
		}
	}
	return nil
}

func countPayloads(signals []domain.SignalEnvelope) map[string]int {
	counts := make(map[string]int)
	for _, s := range signals {
		counts[s.PayloadType]++
	}
	return counts
}

func countIssueKinds(issues []domain.ParseIssue) map[string]int {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[string(issue.Kind)]++
	}
	return counts
}
