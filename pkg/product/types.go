// Package product derives the remote and local file names of GNSS products.
//
// Archives renamed their products over the years (legacy short names such as
// igs22450.sp3.Z, long names such as IGS0OPSFIN_20230150000_01D_15M_ORB.SP3.gz),
// so a single (date, agency) pair maps to an ordered list of candidates, most
// preferred first. Resolution is pure and never fails: a pair that matches no
// known naming scheme yields no candidates.
package product

import (
	"path"
	"strings"

	"github.com/glorpus-work/gnssget/pkg/epoch"
	"github.com/glorpus-work/gnssget/pkg/errors"
)

// Type identifies a product family.
type Type string

// Supported product families.
const (
	CLK   Type = "clk"   // satellite clocks, 30 s sampling
	SP3   Type = "sp3"   // precise orbits
	IONEX Type = "ionex" // global ionosphere maps
	RINEX Type = "rinex" // station observation files
)

// Types lists every supported product family.
func Types() []Type {
	return []Type{CLK, SP3, IONEX, RINEX}
}

// ParseType maps a user-facing name to a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case CLK, SP3, IONEX, RINEX:
		return t, nil
	case "ion", "inx":
		return IONEX, nil
	case "rnx", "obs":
		return RINEX, nil
	default:
		return "", errors.ErrUnknownProductWithName(s)
	}
}

// Candidate is one hypothesised remote/local file pair.
type Candidate struct {
	// RemoteName is the (compressed) file name on the archive.
	RemoteName string
	// LocalName is the decompressed file name written locally.
	LocalName string
	// RemoteDir is the path fragment between a mirror base URL and RemoteName.
	RemoteDir string
	// Rank orders candidates; 0 is tried first.
	Rank int
}

// URL joins the candidate onto a mirror base URL.
func (c Candidate) URL(base string) string {
	return strings.TrimRight(base, "/") + "/" + path.Join(c.RemoteDir, c.RemoteName)
}

// Resolver derives the candidates for a date and agency (or station, for RINEX).
type Resolver interface {
	Resolve(d epoch.Date, agency string) []Candidate
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(d epoch.Date, agency string) []Candidate

// Resolve calls f.
func (f ResolverFunc) Resolve(d epoch.Date, agency string) []Candidate {
	return f(d, agency)
}

// rank numbers candidates in slice order.
func rank(cs []Candidate) []Candidate {
	for i := range cs {
		cs[i].Rank = i
	}
	return cs
}
