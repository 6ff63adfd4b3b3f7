package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/gnssget/internal/logger"
	"github.com/glorpus-work/gnssget/pkg/config"
	"github.com/glorpus-work/gnssget/pkg/orchestrator"
	"github.com/glorpus-work/gnssget/pkg/product"
)

// batchOptions holds the flags shared by every product command.
type batchOptions struct {
	dates    dateOptions
	mirrors  []string
	agencies []string
	logFile  string
}

func addBatchFlags(cmd *cobra.Command, o *batchOptions, withAgencies bool) {
	addDateFlags(cmd, &o.dates)
	cmd.Flags().StringArrayVar(&o.mirrors, "mirror", nil, "Archive base URL, most preferred first (repeatable, replaces configured mirrors)")
	cmd.Flags().StringVar(&o.logFile, "log-file", "", "Failure log name below the temp directory")
	if withAgencies {
		cmd.Flags().StringSliceVar(&o.agencies, "agency", nil, "Analysis center (repeatable, replaces configured agencies)")
	}
}

// request merges the product configuration with the command flags.
func (o *batchOptions) request(p *config.ProductConfig) (orchestrator.Request, error) {
	dates, err := o.dates.resolve()
	if err != nil {
		return orchestrator.Request{}, err
	}
	req := p.Request()
	req.Dates = dates
	if len(o.mirrors) > 0 {
		req.Mirrors = o.mirrors
	}
	if len(o.agencies) > 0 {
		req.Agencies = o.agencies
	}
	if o.logFile != "" {
		req.LogFile = o.logFile
	}
	return req, nil
}

type batchFunc func(ctx context.Context, orch *orchestrator.Orchestrator, req orchestrator.Request) (*orchestrator.Report, error)

func runBatch(cmd *cobra.Command, t product.Type, o *batchOptions, run batchFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := cfg.Product(t)
	if err != nil {
		return err
	}
	req, err := o.request(p)
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}

	report, err := run(cmd.Context(), orch, req)
	if err != nil {
		return fmt.Errorf("failed to run %s batch: %w", t, err)
	}

	printReport(cmd.OutOrStdout(), report)
	if len(report.Failures) > 0 {
		logger.Warn("Some products are still missing", logger.Fields{"count": len(report.Failures), "log": report.LogPath})
	}
	return nil
}

func printReport(w io.Writer, r *orchestrator.Report) {
	_, _ = fmt.Fprintf(w, "%s: %d tasks, %d downloaded, %d already present, %d missing",
		r.Product, len(r.Tasks), r.Downloaded(), r.Skipped, len(r.Failures))
	if len(r.Unavailable) > 0 {
		_, _ = fmt.Fprintf(w, ", %d unavailable", len(r.Unavailable))
	}
	_, _ = fmt.Fprintln(w)
	if len(r.Failures) > 0 {
		_, _ = fmt.Fprintf(w, "failure log: %s\n", r.LogPath)
	}
}

// NewCLKCmd creates the clk command.
func NewCLKCmd() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "clk",
		Short: "Download 30 s satellite clock products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, product.CLK, &opts, func(ctx context.Context, o *orchestrator.Orchestrator, req orchestrator.Request) (*orchestrator.Report, error) {
				return o.DownloadCLK(ctx, req)
			})
		},
	}

	addBatchFlags(cmd, &opts, true)
	return cmd
}

// NewSP3Cmd creates the sp3 command.
func NewSP3Cmd() *cobra.Command {
	var (
		opts   batchOptions
		legacy bool
	)

	cmd := &cobra.Command{
		Use:   "sp3",
		Short: "Download precise orbit products",
		Long: `Download precise orbits. By default every date is resolved against a fixed
priority list: legacy IGS and JPL names first, then final, rapid and
ultra-rapid long names, and the first file any mirror offers is fetched.
With --legacy the configured agencies' legacy names are fetched without probing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, product.SP3, &opts, func(ctx context.Context, o *orchestrator.Orchestrator, req orchestrator.Request) (*orchestrator.Report, error) {
				if legacy {
					return o.DownloadSP3(ctx, req)
				}
				return o.DownloadSP3Prioritized(ctx, req)
			})
		},
	}

	addBatchFlags(cmd, &opts, true)
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Fetch legacy short names of the configured agencies only")
	return cmd
}

// NewIONEXCmd creates the ionex command.
func NewIONEXCmd() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:     "ionex",
		Aliases: []string{"ion"},
		Short:   "Download global ionosphere maps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, product.IONEX, &opts, func(ctx context.Context, o *orchestrator.Orchestrator, req orchestrator.Request) (*orchestrator.Report, error) {
				return o.DownloadIONEX(ctx, req)
			})
		},
	}

	addBatchFlags(cmd, &opts, true)
	return cmd
}

// NewRINEXCmd creates the rinex command.
func NewRINEXCmd() *cobra.Command {
	var (
		opts    batchOptions
		station string
	)

	cmd := &cobra.Command{
		Use:   "rinex",
		Short: "Download daily station observation files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, product.RINEX, &opts, func(ctx context.Context, o *orchestrator.Orchestrator, req orchestrator.Request) (*orchestrator.Report, error) {
				return o.DownloadRINEX(ctx, station, req)
			})
		},
	}

	addBatchFlags(cmd, &opts, false)
	cmd.Flags().StringVar(&station, "station", "", "Four-character station code")
	must(cmd.MarkFlagRequired("station"))
	return cmd
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
