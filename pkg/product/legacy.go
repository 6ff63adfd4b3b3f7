package product

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/glorpus-work/gnssget/pkg/epoch"
)

var (
	longOrbit = regexp.MustCompile(`^([A-Z0-9]{3})0[A-Z0-9]{3}[A-Z]{3}_(\d{4})(\d{3})\d{4}_\d{2}[A-Z]_\d{2}[A-Z]_ORB\.SP3$`)
	longMap   = regexp.MustCompile(`^([A-Z0-9]{3})0[A-Z0-9]{3}[A-Z]{3}_(\d{4})(\d{3})\d{4}_\d{2}[A-Z]_\d{2}[A-Z]_GIM\.INX$`)
)

// LegacyName maps a decompressed long-format orbit or ionosphere map name to
// its legacy short name, e.g.
//
//	IGS0OPSFIN_20230150000_01D_15M_ORB.SP3 -> igs22450.sp3
//	JPL0OPSFIN_20231230000_01D_02H_GIM.INX -> jplg1230.23i
//
// The boolean is false when name is not a long-format orbit or map.
func LegacyName(name string) (string, bool) {
	if m := longOrbit.FindStringSubmatch(name); m != nil {
		d, ok := parseYearDoy(m[2], m[3])
		if !ok {
			return "", false
		}
		return sp3LegacyName(d, strings.ToLower(m[1])), true
	}
	if m := longMap.FindStringSubmatch(name); m != nil {
		d, ok := parseYearDoy(m[2], m[3])
		if !ok {
			return "", false
		}
		return ionexLegacyName(d, strings.ToLower(m[1])), true
	}
	return "", false
}

func parseYearDoy(year, doy string) (epoch.Date, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return epoch.Date{}, false
	}
	n, err := strconv.Atoi(doy)
	if err != nil || n < 1 || n > 366 || (n == 366 && !epoch.IsLeap(y)) {
		return epoch.Date{}, false
	}
	return epoch.FromDayOfYear(y, n), true
}
