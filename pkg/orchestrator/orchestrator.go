package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/gnssget/internal/logger"
	"github.com/glorpus-work/gnssget/pkg/download"
	"github.com/glorpus-work/gnssget/pkg/epoch"
	"github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/fsutil"
	"github.com/glorpus-work/gnssget/pkg/hooks"
	"github.com/glorpus-work/gnssget/pkg/http"
	"github.com/glorpus-work/gnssget/pkg/product"
)

// New creates an orchestrator.
func New(cfg Config, prober http.Prober, dl Downloader, scripts hooks.HookManager, h Hooks) *Orchestrator {
	return &Orchestrator{Config: cfg, Prober: prober, DL: dl, Scripts: scripts, Hooks: h}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// batch selects the naming grammar and expansion strategy of one product.
type batch struct {
	product  product.Type
	resolver product.Resolver
	// fallback walks ranked candidates and probes mirrors instead of
	// handing every mirror to the downloader.
	fallback bool
	agencies []string
}

// DownloadCLK fetches 30 s clock products.
func (o *Orchestrator) DownloadCLK(ctx context.Context, req Request) (*Report, error) {
	return o.run(ctx, batch{product: product.CLK, resolver: product.CLKResolver{}, agencies: req.Agencies}, req)
}

// DownloadSP3 fetches legacy short-name orbits for every requested agency.
func (o *Orchestrator) DownloadSP3(ctx context.Context, req Request) (*Report, error) {
	return o.run(ctx, batch{product: product.SP3, resolver: product.SP3LegacyResolver{}, agencies: req.Agencies}, req)
}

// DownloadSP3Prioritized fetches, per date, the most preferred orbit any mirror
// offers. Agencies are fixed by the priority table and ignored here.
func (o *Orchestrator) DownloadSP3Prioritized(ctx context.Context, req Request) (*Report, error) {
	return o.run(ctx, batch{
		product:  product.SP3,
		resolver: product.SP3PrioritizedResolver{Options: o.productOptions()},
		fallback: true,
		agencies: []string{""},
	}, req)
}

// DownloadIONEX fetches, per date and agency, the first available ionosphere map.
func (o *Orchestrator) DownloadIONEX(ctx context.Context, req Request) (*Report, error) {
	return o.run(ctx, batch{
		product:  product.IONEX,
		resolver: product.IONEXResolver{Options: o.productOptions()},
		fallback: true,
		agencies: req.Agencies,
	}, req)
}

// DownloadRINEX fetches daily observation files of one station.
func (o *Orchestrator) DownloadRINEX(ctx context.Context, station string, req Request) (*Report, error) {
	if strings.TrimSpace(station) == "" {
		return nil, errors.Wrap(errors.ErrConfigValidation, "station code is required")
	}
	return o.run(ctx, batch{product: product.RINEX, resolver: product.RINEXResolver{}, agencies: []string{station}}, req)
}

func (o *Orchestrator) productOptions() product.Options {
	return product.Options{LegacyNames: o.Config.LegacyNames}
}

func (o *Orchestrator) parallelism() int {
	if o.Config.MaxParallelism > 0 {
		return o.Config.MaxParallelism
	}
	return download.DefaultConcurrency()
}

func (o *Orchestrator) validate(b batch, req Request) error {
	if o.DL == nil {
		return errors.Wrap(errors.ErrConfigValidation, "download manager is not configured")
	}
	if b.fallback && o.Prober == nil {
		return errors.Wrap(errors.ErrConfigValidation, "prober is not configured")
	}
	if len(req.Mirrors) == 0 {
		return errors.ErrNoMirrorsForProduct(string(b.product))
	}
	if len(req.Dates) == 0 {
		return errors.ErrNoDates
	}
	if len(b.agencies) == 0 {
		return errors.Wrapf(errors.ErrConfigValidation, "no agencies for %s", b.product)
	}
	return nil
}

// run executes one batch: expand, dispatch, reconcile. The error result is
// reserved for invalid input detected before any work; failed downloads
// are reported in the Report.
func (o *Orchestrator) run(ctx context.Context, b batch, req Request) (*Report, error) {
	if err := o.validate(b, req); err != nil {
		return nil, err
	}
	if req.LogFile == "" {
		req.LogFile = fmt.Sprintf("download_%s.log", b.product)
	}

	report := &Report{
		BatchID: uuid.NewString(),
		Product: b.product,
		LogPath: filepath.Join(o.Config.TempRoot, req.LogFile),
	}
	fields := logger.Fields{"batch_id": report.BatchID, "product": string(b.product)}
	logger.Info("Starting batch", fields, logger.Fields{"dates": len(req.Dates), "agencies": len(b.agencies)})

	emit(o.Hooks, Event{Phase: PhaseExpanding, ID: report.BatchID, Msg: string(b.product)})
	o.expand(ctx, b, req, report)

	emit(o.Hooks, Event{Phase: PhaseDownloading, ID: report.BatchID, Msg: fmt.Sprintf("%d tasks", len(report.Tasks))})
	report.Outcomes = o.DL.FetchAll(ctx, report.Tasks, download.Options{
		Concurrency: o.parallelism(),
		OnPersist: func(task download.Task, out download.Outcome) {
			o.runScript(hooks.PostPersist, hooks.HookContext{
				Product: string(b.product),
				Date:    task.Date.String(),
				URL:     out.URL,
				Path:    out.Destination,
				BatchID: report.BatchID,
			})
		},
	})
	for _, out := range report.Outcomes {
		if !out.Success {
			logger.Debug("Download failed", fields, logger.Fields{"destination": out.Destination, "error": fmt.Sprint(out.Err)})
		}
	}

	emit(o.Hooks, Event{Phase: PhaseReconciling, ID: report.BatchID})
	if err := o.reconcile(report); err != nil {
		logger.Error("Could not write failure log", fields, logger.Fields{"path": report.LogPath, "error": err.Error()})
	}

	o.runScript(hooks.BatchComplete, hooks.HookContext{
		Product:  string(b.product),
		BatchID:  report.BatchID,
		Tasks:    len(report.Tasks),
		Failures: len(report.Failures),
	})

	logger.Info("Batch finished", fields, logger.Fields{
		"tasks":       len(report.Tasks),
		"downloaded":  report.Downloaded(),
		"skipped":     report.Skipped,
		"failures":    len(report.Failures),
		"unavailable": len(report.Unavailable),
	})
	emit(o.Hooks, Event{Phase: PhaseDone, ID: report.BatchID})
	return report, nil
}

// unit is one (date, agency) pair of a batch.
type unit struct {
	date   epoch.Date
	agency string
}

// expansion is what one unit contributes to the batch.
type expansion struct {
	tasks       []download.Task
	skipped     int
	unavailable bool
}

// expand resolves every unit concurrently and merges the results in unit
// order, dropping tasks whose destination is already claimed.
func (o *Orchestrator) expand(ctx context.Context, b batch, req Request, report *Report) {
	units := make([]unit, 0, len(req.Dates)*len(b.agencies))
	for _, agency := range b.agencies {
		for _, d := range req.Dates {
			units = append(units, unit{date: d, agency: agency})
		}
	}

	results := make([]expansion, len(units))
	// Used as a bounded WaitGroup: expandUnit reports into results and never fails.
	var g errgroup.Group
	g.SetLimit(o.parallelism())
	for i, u := range units {
		g.Go(func() error {
			results[i] = o.expandUnit(ctx, b, req, u)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	for i, res := range results {
		report.Skipped += res.skipped
		if res.unavailable {
			report.Unavailable = append(report.Unavailable, Unavailable{Date: units[i].date, Agency: units[i].agency})
			logger.Warn("No candidate available", logger.Fields{
				"batch_id": report.BatchID,
				"date":     units[i].date.String(),
				"agency":   units[i].agency,
			})
		}
		for _, task := range res.tasks {
			if _, dup := seen[task.Destination]; dup {
				continue
			}
			seen[task.Destination] = struct{}{}
			report.Tasks = append(report.Tasks, task)
		}
	}
}

func (o *Orchestrator) expandUnit(ctx context.Context, b batch, req Request, u unit) expansion {
	var res expansion
	candidates := b.resolver.Resolve(u.date, u.agency)
	dir := filepath.Join(o.Config.OutputRoot, req.Dir)

	if !b.fallback {
		for _, c := range candidates {
			dest := filepath.Join(dir, c.LocalName)
			if fsutil.FileExists(dest) {
				res.skipped++
				continue
			}
			urls := make([]string, len(req.Mirrors))
			for i, m := range req.Mirrors {
				urls[i] = c.URL(m)
			}
			res.tasks = append(res.tasks, download.Task{
				URL:         urls[0],
				Mirrors:     urls[1:],
				Destination: dest,
				Date:        u.date,
			})
		}
		return res
	}

	for _, c := range candidates {
		dest := filepath.Join(dir, c.LocalName)
		if fsutil.FileExists(dest) {
			res.skipped++
			return res
		}
		for _, m := range req.Mirrors {
			if ctx.Err() != nil {
				res.unavailable = true
				return res
			}
			url := c.URL(m)
			if o.Prober.Exists(ctx, url) {
				res.tasks = append(res.tasks, download.Task{URL: url, Destination: dest, Date: u.date})
				return res
			}
		}
	}
	res.unavailable = len(candidates) > 0
	return res
}

var failureLogMu sync.Mutex

// reconcile records every task whose destination is still missing and
// appends the records to the failure log.
func (o *Orchestrator) reconcile(report *Report) error {
	for _, task := range report.Tasks {
		if !fsutil.FileExists(task.Destination) {
			report.Failures = append(report.Failures, FailureRecord{Date: task.Date, URL: task.URL})
		}
	}
	if len(report.Failures) == 0 {
		return nil
	}

	lines := make([]string, len(report.Failures))
	for i, f := range report.Failures {
		lines[i] = f.String()
	}

	failureLogMu.Lock()
	defer failureLogMu.Unlock()
	return fsutil.AppendLines(report.LogPath, lines)
}

func (o *Orchestrator) runScript(hookType hooks.HookType, ctx hooks.HookContext) {
	if o.Scripts == nil {
		return
	}
	if err := o.Scripts.Execute(hookType, ctx); err != nil {
		logger.Warn("Hook failed", logger.Fields{
			"hook":     string(hookType),
			"batch_id": ctx.BatchID,
			"error":    err.Error(),
		})
	}
}
