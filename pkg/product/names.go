package product

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glorpus-work/gnssget/pkg/epoch"
)

// Compression suffixes used by the archives.
const (
	suffixUnixCompress = ".Z"
	suffixGzip         = ".gz"
)

// weekDir is the GPS-week directory used by the products tree.
func weekDir(d epoch.Date) string {
	week, _ := epoch.GPSWeekday(d)
	return strconv.Itoa(week)
}

// yearDoyDir is the {yyyy}/{doy} directory used by the ionex and rinex trees.
func yearDoyDir(d epoch.Date) string {
	return fmt.Sprintf("%d/%03d", d.Year, epoch.DayOfYear(d))
}

// weekName renders the legacy {agency}{week}{weekday}{ext} name.
func weekName(d epoch.Date, agency, ext string) string {
	week, weekday := epoch.GPSWeekday(d)
	return fmt.Sprintf("%s%d%d%s", agency, week, weekday, ext)
}

// sp3LegacyName is the legacy orbit name, e.g. igs22450.sp3.
func sp3LegacyName(d epoch.Date, agency string) string {
	return weekName(d, agency, ".sp3")
}

// ionexLegacyName is the legacy ionosphere map name, e.g. igsg1230.23i.
func ionexLegacyName(d epoch.Date, agency string) string {
	return fmt.Sprintf("%sg%03d0.%02di", agency, epoch.DayOfYear(d), d.Year%100)
}

// longName renders the long-format name shared by orbits and maps:
// {AAA}0{CMP}{SOL}_{yyyy}{ddd}0000_01D_{SMP}_{CNT}.{FMT}
func longName(d epoch.Date, agency, campaign, solution, sampling, content, format string) string {
	return fmt.Sprintf("%s0%s%s_%d%03d0000_01D_%s_%s.%s",
		strings.ToUpper(agency), campaign, solution, d.Year, epoch.DayOfYear(d), sampling, content, format)
}
