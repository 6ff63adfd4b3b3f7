package cli

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/gnssget/pkg/epoch"
	"github.com/glorpus-work/gnssget/pkg/errors"
)

// dateOptions collects the date selection flags shared by product commands.
type dateOptions struct {
	dates      []string
	from, to   string
	sampleYear int
	window     int
	windows    int
	upTo       string
	seed       uint64
}

func addDateFlags(cmd *cobra.Command, o *dateOptions) {
	cmd.Flags().StringArrayVar(&o.dates, "date", nil, "Date as YYYY-MM-DD or YYYY-DDD (repeatable)")
	cmd.Flags().StringVar(&o.from, "from", "", "First date of an inclusive range")
	cmd.Flags().StringVar(&o.to, "to", "", "Last date of an inclusive range (defaults to --from)")
	cmd.Flags().IntVar(&o.sampleYear, "sample-year", 0, "Draw random windows of consecutive days from this year")
	cmd.Flags().IntVar(&o.window, "window", DefaultWindowLen, "Days per sampled window")
	cmd.Flags().IntVar(&o.windows, "windows", 1, "Number of sampled windows")
	cmd.Flags().StringVar(&o.upTo, "up-to", "", "Latest day a sampled window may reach")
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "Sampling seed (0 picks one from the clock)")
}

// resolve returns the selected dates in flag order (explicit dates, range,
// samples) with duplicates removed.
func (o *dateOptions) resolve() ([]epoch.Date, error) {
	var out []epoch.Date
	seen := make(map[epoch.Date]struct{})
	add := func(ds ...epoch.Date) {
		for _, d := range ds {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}

	for _, s := range o.dates {
		d, err := epoch.ParseDate(s)
		if err != nil {
			return nil, err
		}
		add(d)
	}

	if o.from != "" || o.to != "" {
		rng, err := o.parseRange()
		if err != nil {
			return nil, err
		}
		add(rng...)
	}

	if o.sampleYear != 0 {
		runs, err := o.sample()
		if err != nil {
			return nil, err
		}
		for _, run := range runs {
			add(run...)
		}
	}

	if len(out) == 0 {
		return nil, errors.ErrNoDates
	}
	return out, nil
}

func (o *dateOptions) parseRange() ([]epoch.Date, error) {
	if o.from == "" {
		return nil, fmt.Errorf("%w: --to requires --from", errors.ErrInvalidDate)
	}
	from, err := epoch.ParseDate(o.from)
	if err != nil {
		return nil, err
	}
	to := from
	if o.to != "" {
		if to, err = epoch.ParseDate(o.to); err != nil {
			return nil, err
		}
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range ends before it starts", errors.ErrInvalidDate)
	}
	return epoch.Range(from, to), nil
}

func (o *dateOptions) sample() ([][]epoch.Date, error) {
	var upTo *epoch.Date
	if o.upTo != "" {
		d, err := epoch.ParseDate(o.upTo)
		if err != nil {
			return nil, err
		}
		upTo = &d
	}
	seed := o.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	return epoch.Sample(rng, o.sampleYear, o.window, o.windows, upTo), nil
}

// NewDatesCmd creates the dates command.
func NewDatesCmd() *cobra.Command {
	var opts dateOptions

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Print selected dates with their GNSS calendar values",
		Long: `Print the dates the date flags select, one per line, together with the
GPS week, day of week and day of year used in product names.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dates, err := opts.resolve()
			if err != nil {
				return err
			}
			printDates(cmd.OutOrStdout(), dates)
			return nil
		},
	}

	addDateFlags(cmd, &opts)
	return cmd
}

func printDates(w io.Writer, dates []epoch.Date) {
	for _, d := range dates {
		week, day := epoch.GPSWeekday(d)
		_, _ = fmt.Fprintf(w, "%s  week %04d day %d  doy %03d\n", d, week, day, epoch.DayOfYear(d))
	}
}
