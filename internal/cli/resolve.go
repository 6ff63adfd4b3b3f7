package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/gnssget/pkg/config"
	"github.com/glorpus-work/gnssget/pkg/epoch"
	"github.com/glorpus-work/gnssget/pkg/product"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var (
		opts    batchOptions
		station string
		legacy  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve PRODUCT",
		Short: "Print candidate names and URLs without touching the network",
		Long: `Print, for every selected date and agency, the ranked candidate files of a
product together with their local names and the URL on every mirror.
PRODUCT is one of clk, sp3, ionex or rinex.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := product.ParseType(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := cfg.Product(t)
			if err != nil {
				return err
			}
			req, err := opts.request(p)
			if err != nil {
				return err
			}

			resolver, agencies := resolverFor(t, cfg, legacy)
			if t == product.RINEX {
				agencies = []string{station}
			} else if agencies == nil {
				agencies = req.Agencies
			}
			printCandidates(cmd.OutOrStdout(), resolver, req.Dates, agencies, req.Mirrors)
			return nil
		},
	}

	addBatchFlags(cmd, &opts, true)
	cmd.Flags().StringVar(&station, "station", "", "Station code for rinex")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Use legacy sp3 names of the configured agencies")
	return cmd
}

// resolverFor mirrors the resolver choice of the download commands. A nil
// agency list means the configured or flagged agencies apply.
func resolverFor(t product.Type, cfg *config.Config, legacy bool) (product.Resolver, []string) {
	opts := product.Options{LegacyNames: cfg.Settings.LegacyNames}
	if t == product.SP3 && legacy {
		return product.SP3LegacyResolver{}, nil
	}
	if t == product.SP3 {
		return product.New(t, opts), []string{""}
	}
	return product.New(t, opts), nil
}

func printCandidates(w io.Writer, r product.Resolver, dates []epoch.Date, agencies, mirrors []string) {
	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tAGENCY\tRANK\tLOCAL\tURL")
	for _, agency := range agencies {
		for _, d := range dates {
			for _, c := range r.Resolve(d, agency) {
				for _, m := range mirrors {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d, agencyLabel(agency), c.Rank, c.LocalName, c.URL(m))
				}
			}
		}
	}
	_ = tw.Flush()
}

func agencyLabel(agency string) string {
	if agency == "" {
		return "-"
	}
	return agency
}
