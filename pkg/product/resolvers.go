package product

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/glorpus-work/gnssget/pkg/epoch"
)

// Options tunes how candidates are named locally.
type Options struct {
	// LegacyNames persists long-format products under their legacy short name.
	LegacyNames bool
}

// OrbitSource pairs an agency with the sampling of its long-format orbits.
type OrbitSource struct {
	Agency   string
	Sampling string
}

// Solution latencies, most preferred first.
const (
	SolutionFinal = "FIN"
	SolutionRapid = "RAP"
	SolutionUltra = "ULT"
)

var (
	// SP3LegacyAgencies are tried first, under their legacy short names.
	SP3LegacyAgencies = []string{"igs", "jpl"}
	// SP3Solutions is the solution-major enumeration order of long names.
	SP3Solutions = []string{SolutionFinal, SolutionRapid, SolutionUltra}
	// SP3Sources is the agency/sampling order within one solution.
	SP3Sources = []OrbitSource{{"igs", "15M"}, {"jpl", "05M"}}

	// IONEXModernAgencies publish long-format maps (matched case-insensitively).
	IONEXModernAgencies = []string{"IGS", "JPL", "ESA", "COD"}
	// IONEXLegacyAgencies publish legacy maps (matched exactly).
	IONEXLegacyAgencies = []string{"igs", "jpl", "upc", "igr", "jpr", "upr", "ckm"}
)

const topexAgency = "ckm"

// New returns the resolver used by batches of product type t.
func New(t Type, opts Options) Resolver {
	switch t {
	case CLK:
		return CLKResolver{}
	case SP3:
		return SP3PrioritizedResolver{Options: opts}
	case IONEX:
		return IONEXResolver{Options: opts}
	case RINEX:
		return RINEXResolver{}
	default:
		return ResolverFunc(func(epoch.Date, string) []Candidate { return nil })
	}
}

// CLKResolver names 30 s clock files: igs22450.clk_30s.Z.
type CLKResolver struct{}

func (CLKResolver) Resolve(d epoch.Date, agency string) []Candidate {
	if agency == "" {
		return nil
	}
	local := weekName(d, agency, ".clk_30s")
	return []Candidate{{
		RemoteName: local + suffixUnixCompress,
		LocalName:  local,
		RemoteDir:  weekDir(d),
	}}
}

// SP3LegacyResolver names legacy orbit files: igs22450.sp3.Z.
type SP3LegacyResolver struct{}

func (SP3LegacyResolver) Resolve(d epoch.Date, agency string) []Candidate {
	if agency == "" {
		return nil
	}
	return []Candidate{sp3Legacy(d, agency)}
}

func sp3Legacy(d epoch.Date, agency string) Candidate {
	local := sp3LegacyName(d, agency)
	return Candidate{
		RemoteName: local + suffixUnixCompress,
		LocalName:  local,
		RemoteDir:  weekDir(d),
	}
}

// SP3PrioritizedResolver enumerates every orbit name known to cover a day,
// legacy short names first and then long names solution-major. The agency
// argument is ignored: the tables fix which agencies are consulted.
type SP3PrioritizedResolver struct {
	Options Options
}

func (r SP3PrioritizedResolver) Resolve(d epoch.Date, _ string) []Candidate {
	out := make([]Candidate, 0, len(SP3LegacyAgencies)+len(SP3Solutions)*len(SP3Sources))
	for _, agency := range SP3LegacyAgencies {
		out = append(out, sp3Legacy(d, agency))
	}
	for _, sol := range SP3Solutions {
		for _, src := range SP3Sources {
			local := longName(d, src.Agency, "OPS", sol, src.Sampling, "ORB", "SP3")
			out = append(out, Candidate{
				RemoteName: local + suffixGzip,
				LocalName:  r.localName(local),
				RemoteDir:  weekDir(d),
			})
		}
	}
	return rank(out)
}

func (r SP3PrioritizedResolver) localName(long string) string {
	if !r.Options.LegacyNames {
		return long
	}
	if short, ok := LegacyName(long); ok {
		return short
	}
	return long
}

// IONEXResolver names global ionosphere maps. An agency may match both the
// modern and the legacy vocabulary and then yields two candidates.
type IONEXResolver struct {
	Options Options
}

func (r IONEXResolver) Resolve(d epoch.Date, agency string) []Candidate {
	var out []Candidate
	if containsFold(IONEXModernAgencies, agency) {
		local := longName(d, agency, "OPS", SolutionFinal, "02H", "GIM", "INX")
		name := local
		if r.Options.LegacyNames {
			if short, ok := LegacyName(local); ok {
				name = short
			}
		}
		out = append(out, Candidate{
			RemoteName: local + suffixGzip,
			LocalName:  name,
			RemoteDir:  yearDoyDir(d),
		})
	}
	if slices.Contains(IONEXLegacyAgencies, agency) {
		out = append(out, ionexLegacy(d, agency))
	}
	return rank(out)
}

// IONEXLegacyResolver emits the legacy map name for any agency.
type IONEXLegacyResolver struct{}

func (IONEXLegacyResolver) Resolve(d epoch.Date, agency string) []Candidate {
	if agency == "" {
		return nil
	}
	return []Candidate{ionexLegacy(d, agency)}
}

func ionexLegacy(d epoch.Date, agency string) Candidate {
	local := ionexLegacyName(d, agency)
	dir := yearDoyDir(d)
	if agency == topexAgency {
		dir = path.Join(dir, "topex")
	}
	return Candidate{
		RemoteName: local + suffixUnixCompress,
		LocalName:  local,
		RemoteDir:  dir,
	}
}

// RINEXResolver names daily Hatanaka-compressed station observations. The
// agency argument carries the four-character station code.
type RINEXResolver struct{}

func (RINEXResolver) Resolve(d epoch.Date, station string) []Candidate {
	station = strings.ToLower(strings.TrimSpace(station))
	if station == "" {
		return nil
	}
	stem := fmt.Sprintf("%s%03d0.%02d", station, epoch.DayOfYear(d), d.Year%100)
	return []Candidate{{
		RemoteName: stem + "d" + suffixUnixCompress,
		LocalName:  stem + "o",
		RemoteDir:  yearDoyDir(d),
	}}
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
