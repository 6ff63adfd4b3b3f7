package archive

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/glorpus-work/gnssget/pkg/errors"
)

// Compact RINEX header labels and layout.
const (
	crxVersionLabel = "CRINEX VERS   / TYPE"
	crxTypesLabel   = "# / TYPES OF OBSERV"
	crxEndLabel     = "END OF HEADER"

	// labelColumn is where RINEX header labels start.
	labelColumn = 60
	// epochHead is the width of the RINEX 2 epoch fields before the satellite list.
	epochHead = 32
	// clockColumn is where the receiver clock offset starts on the epoch line.
	clockColumn  = 68
	satsPerLine  = 12
	obsPerLine   = 5
	obsWidth     = 14
	obsDecimals  = 3
	clockWidth   = 12
	clockDecimal = 9
)

// crxSupported is the Compact RINEX generation this decoder expands.
var crxSupported = version.MustConstraints(version.NewConstraint(">= 1.0, < 2.0"))

func isCRINEX(data []byte) bool {
	line, _, _ := bytes.Cut(data, []byte{'\n'})
	return bytes.Contains(line, []byte(crxVersionLabel))
}

// diffState reconstructs one series from its differences.
// u[k] holds the latest k-th order difference; u[0] is the value.
type diffState struct {
	valid bool
	order int
	arc   int
	u     []int64
}

func (s *diffState) init(order int, v int64) {
	s.valid = true
	s.order = order
	s.arc = 0
	s.u = make([]int64, order+1)
	s.u[0] = v
}

func (s *diffState) apply(d int64) {
	if s.arc < s.order {
		s.arc++
	}
	s.u[s.arc] = d
	for k := s.arc; k > 0; k-- {
		s.u[k-1] += s.u[k]
	}
}

// update consumes one encoded field: empty, "<order>&<value>" or a difference.
func (s *diffState) update(field string) error {
	if field == "" {
		s.valid = false
		return nil
	}
	if order, value, ok := strings.Cut(field, "&"); ok {
		n, err := strconv.Atoi(order)
		if err != nil || n < 0 {
			return errors.Wrapf(ErrCorrupt, "invalid arc order %q", field)
		}
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Wrapf(ErrCorrupt, "invalid initial value %q", field)
		}
		s.init(n, v)
		return nil
	}
	d, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return errors.Wrapf(ErrCorrupt, "invalid difference %q", field)
	}
	if !s.valid {
		return errors.Wrapf(ErrCorrupt, "difference %q without initialised arc", field)
	}
	s.apply(d)
	return nil
}

type satState struct {
	obs   []diffState
	flags string
}

type crxDecoder struct {
	scanner *bufio.Scanner
	out     bytes.Buffer
	ntype   int
	epoch   string
	clock   diffState
	sats    map[string]*satState
	lineNo  int
}

// decodeCRINEX expands Compact RINEX 1.0 into RINEX 2 observation text.
func decodeCRINEX(data []byte) ([]byte, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	d := &crxDecoder{scanner: sc, sats: map[string]*satState{}}

	if err := d.header(); err != nil {
		return nil, err
	}
	for {
		more, err := d.epochRecord()
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", d.lineNo)
		}
		if !more {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "failed to read compact rinex: %v", err)
	}
	return d.out.Bytes(), nil
}

func (d *crxDecoder) next() (string, bool) {
	if !d.scanner.Scan() {
		return "", false
	}
	d.lineNo++
	return strings.TrimRight(d.scanner.Text(), "\r"), true
}

func (d *crxDecoder) writeLine(s string) {
	d.out.WriteString(strings.TrimRight(s, " "))
	d.out.WriteByte('\n')
}

func (d *crxDecoder) header() error {
	first, ok := d.next()
	if !ok {
		return errors.Wrap(ErrCorrupt, "empty compact rinex")
	}
	field := first
	if len(field) > 20 {
		field = field[:20]
	}
	v, err := version.NewVersion(strings.TrimSpace(field))
	if err != nil {
		return errors.Wrapf(ErrCorrupt, "invalid compact rinex version %q", strings.TrimSpace(field))
	}
	if !crxSupported.Check(v) {
		return errors.Wrapf(ErrUnsupportedFormat, "compact rinex version %s", v)
	}

	// program / date line is dropped with the version line
	if _, ok := d.next(); !ok {
		return errors.Wrap(ErrCorrupt, "truncated header")
	}

	for {
		line, ok := d.next()
		if !ok {
			return errors.Wrap(ErrCorrupt, "missing END OF HEADER")
		}
		d.out.WriteString(line)
		d.out.WriteByte('\n')

		label := ""
		if len(line) > labelColumn {
			label = strings.TrimSpace(line[labelColumn:])
		}
		switch label {
		case crxTypesLabel:
			if d.ntype == 0 && len(line) >= 6 {
				d.ntype, _ = strconv.Atoi(strings.TrimSpace(line[:6]))
			}
		case crxEndLabel:
			if d.ntype <= 0 {
				return errors.Wrap(ErrCorrupt, "missing observation types")
			}
			return nil
		}
	}
}

// epochRecord expands one epoch. It reports false at end of input.
func (d *crxDecoder) epochRecord() (bool, error) {
	diff, ok := d.next()
	if !ok {
		return false, nil
	}

	var line string
	switch {
	case strings.HasPrefix(diff, "&"):
		line = " " + diff[1:]
	case d.epoch == "":
		return false, errors.Wrap(ErrCorrupt, "epoch difference before initial epoch")
	default:
		line = repair(d.epoch, diff)
	}
	if len(line) < epochHead {
		return false, errors.Wrapf(ErrCorrupt, "short epoch line %q", line)
	}

	flag := line[28]
	count, err := strconv.Atoi(strings.TrimSpace(line[29:epochHead]))
	if err != nil || count < 0 {
		return false, errors.Wrapf(ErrCorrupt, "invalid satellite count in %q", line)
	}

	if flag >= '2' && flag <= '5' {
		d.writeLine(line[:epochHead])
		for i := 0; i < count; i++ {
			rec, ok := d.next()
			if !ok {
				return false, errors.Wrap(ErrCorrupt, "truncated event record")
			}
			d.out.WriteString(rec)
			d.out.WriteByte('\n')
		}
		return true, nil
	}
	d.epoch = line

	clockLine, ok := d.next()
	if !ok {
		return false, errors.Wrap(ErrCorrupt, "missing clock line")
	}
	if err := d.clock.update(strings.TrimSpace(clockLine)); err != nil {
		return false, err
	}

	sats := make([]string, count)
	for i := range sats {
		start := epochHead + 3*i
		if start+3 > len(line) {
			return false, errors.Wrapf(ErrCorrupt, "epoch lists fewer than %d satellites", count)
		}
		sats[i] = line[start : start+3]
	}
	d.writeEpoch(line[:epochHead], sats)

	current := make(map[string]*satState, count)
	for _, sat := range sats {
		data, ok := d.next()
		if !ok {
			return false, errors.Wrapf(ErrCorrupt, "missing data for %s", sat)
		}
		st, seen := d.sats[sat]
		if !seen {
			st = &satState{obs: make([]diffState, d.ntype)}
		}
		if err := d.decodeSat(st, data); err != nil {
			return false, errors.Wrapf(err, "satellite %s", sat)
		}
		current[sat] = st
		d.writeObs(st)
	}
	d.sats = current
	return true, nil
}

func (d *crxDecoder) decodeSat(st *satState, data string) error {
	pos := 0
	for j := 0; j < d.ntype; j++ {
		field := ""
		if pos < len(data) {
			if end := strings.IndexByte(data[pos:], ' '); end >= 0 {
				field = data[pos : pos+end]
				pos += end + 1
			} else {
				field = data[pos:]
				pos = len(data)
			}
		}
		if err := st.obs[j].update(field); err != nil {
			return err
		}
	}
	if pos < len(data) {
		st.flags = repair(st.flags, data[pos:])
	}
	return nil
}

func (d *crxDecoder) writeEpoch(head string, sats []string) {
	first := head
	for i := 0; i < len(sats) && i < satsPerLine; i++ {
		first += sats[i]
	}
	if d.clock.valid {
		first = fmt.Sprintf("%-*s%s", clockColumn, first, fixed(d.clock.u[0], clockDecimal, clockWidth))
	}
	d.writeLine(first)

	for i := satsPerLine; i < len(sats); i += satsPerLine {
		end := min(i+satsPerLine, len(sats))
		d.writeLine(strings.Repeat(" ", epochHead) + strings.Join(sats[i:end], ""))
	}
}

func (d *crxDecoder) writeObs(st *satState) {
	var b strings.Builder
	for j := 0; j < d.ntype; j++ {
		if j > 0 && j%obsPerLine == 0 {
			d.writeLine(b.String())
			b.Reset()
		}
		if st.obs[j].valid {
			b.WriteString(fixed(st.obs[j].u[0], obsDecimals, obsWidth))
		} else {
			b.WriteString(strings.Repeat(" ", obsWidth))
		}
		b.WriteByte(flagAt(st.flags, 2*j))
		b.WriteByte(flagAt(st.flags, 2*j+1))
	}
	d.writeLine(b.String())
}

func flagAt(flags string, i int) byte {
	if i < len(flags) {
		return flags[i]
	}
	return ' '
}

// repair applies a text difference: a space keeps the old character, '&'
// blanks it, anything else replaces it.
func repair(old, diff string) string {
	b := []byte(old)
	for i := 0; i < len(diff); i++ {
		if i >= len(b) {
			b = append(b, ' ')
		}
		switch c := diff[i]; c {
		case ' ':
		case '&':
			b[i] = ' '
		default:
			b[i] = c
		}
	}
	return string(b)
}

// fixed renders v scaled by 10^-decimals as a right-aligned fixed-point field.
func fixed(v int64, decimals, width int) string {
	scale := int64(1)
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%s%d.%0*d", sign, v/scale, decimals, v%scale)
	return fmt.Sprintf("%*s", width, s)
}
