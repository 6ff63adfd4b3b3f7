package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/gnssget/pkg/epoch"
	"github.com/glorpus-work/gnssget/pkg/errors"
)

func names(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.RemoteName
	}
	return out
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"clk", CLK},
		{"SP3", SP3},
		{" ionex ", IONEX},
		{"inx", IONEX},
		{"rinex", RINEX},
		{"obs", RINEX},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseType("nav")
	assert.ErrorIs(t, err, errors.ErrUnknownProduct)
}

func TestCLKResolver(t *testing.T) {
	d := epoch.NewDate(2023, time.January, 15)
	cs := CLKResolver{}.Resolve(d, "igs")
	require.Len(t, cs, 1)
	assert.Equal(t, Candidate{
		RemoteName: "igs22450.clk_30s.Z",
		LocalName:  "igs22450.clk_30s",
		RemoteDir:  "2245",
	}, cs[0])
	assert.Equal(t,
		"https://cddis.nasa.gov/archive/gnss/products/2245/igs22450.clk_30s.Z",
		cs[0].URL("https://cddis.nasa.gov/archive/gnss/products/"))

	assert.Empty(t, CLKResolver{}.Resolve(d, ""))
}

func TestSP3LegacyResolver(t *testing.T) {
	d := epoch.NewDate(2022, time.February, 28)
	cs := SP3LegacyResolver{}.Resolve(d, "jpl")
	require.Len(t, cs, 1)
	assert.Equal(t, "jpl21991.sp3.Z", cs[0].RemoteName)
	assert.Equal(t, "jpl21991.sp3", cs[0].LocalName)
	assert.Equal(t, "2199", cs[0].RemoteDir)
}

func TestSP3PrioritizedResolver_Order(t *testing.T) {
	d := epoch.NewDate(2023, time.January, 15)
	cs := SP3PrioritizedResolver{}.Resolve(d, "ignored")

	assert.Equal(t, []string{
		"igs22450.sp3.Z",
		"jpl22450.sp3.Z",
		"IGS0OPSFIN_20230150000_01D_15M_ORB.SP3.gz",
		"JPL0OPSFIN_20230150000_01D_05M_ORB.SP3.gz",
		"IGS0OPSRAP_20230150000_01D_15M_ORB.SP3.gz",
		"JPL0OPSRAP_20230150000_01D_05M_ORB.SP3.gz",
		"IGS0OPSULT_20230150000_01D_15M_ORB.SP3.gz",
		"JPL0OPSULT_20230150000_01D_05M_ORB.SP3.gz",
	}, names(cs))

	for i, c := range cs {
		assert.Equal(t, i, c.Rank)
		assert.Equal(t, "2245", c.RemoteDir)
	}
	assert.Equal(t, "IGS0OPSFIN_20230150000_01D_15M_ORB.SP3", cs[2].LocalName)

	// Pure: the same input always yields the same list.
	assert.Equal(t, cs, SP3PrioritizedResolver{}.Resolve(d, "other"))
}

func TestSP3PrioritizedResolver_LegacyNames(t *testing.T) {
	d := epoch.NewDate(2023, time.January, 15)
	cs := SP3PrioritizedResolver{Options: Options{LegacyNames: true}}.Resolve(d, "")
	require.Len(t, cs, 8)

	assert.Equal(t, "IGS0OPSFIN_20230150000_01D_15M_ORB.SP3.gz", cs[2].RemoteName)
	assert.Equal(t, "igs22450.sp3", cs[2].LocalName)
	assert.Equal(t, "jpl22450.sp3", cs[7].LocalName)
}

func TestIONEXResolver(t *testing.T) {
	d := epoch.NewDate(2023, time.May, 3)

	tests := []struct {
		name   string
		agency string
		want   []Candidate
	}{
		{
			name:   "both vocabularies",
			agency: "igs",
			want: []Candidate{
				{RemoteName: "IGS0OPSFIN_20231230000_01D_02H_GIM.INX.gz", LocalName: "IGS0OPSFIN_20231230000_01D_02H_GIM.INX", RemoteDir: "2023/123", Rank: 0},
				{RemoteName: "igsg1230.23i.Z", LocalName: "igsg1230.23i", RemoteDir: "2023/123", Rank: 1},
			},
		},
		{
			name:   "modern only",
			agency: "ESA",
			want: []Candidate{
				{RemoteName: "ESA0OPSFIN_20231230000_01D_02H_GIM.INX.gz", LocalName: "ESA0OPSFIN_20231230000_01D_02H_GIM.INX", RemoteDir: "2023/123"},
			},
		},
		{
			name:   "uppercase does not match the legacy set",
			agency: "IGS",
			want: []Candidate{
				{RemoteName: "IGS0OPSFIN_20231230000_01D_02H_GIM.INX.gz", LocalName: "IGS0OPSFIN_20231230000_01D_02H_GIM.INX", RemoteDir: "2023/123"},
			},
		},
		{
			name:   "topex nests",
			agency: "ckm",
			want: []Candidate{
				{RemoteName: "ckmg1230.23i.Z", LocalName: "ckmg1230.23i", RemoteDir: "2023/123/topex"},
			},
		},
		{
			name:   "unknown agency",
			agency: "xyz",
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IONEXResolver{}.Resolve(d, tt.agency)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIONEXResolver_LegacyNames(t *testing.T) {
	d := epoch.NewDate(2023, time.May, 3)
	cs := IONEXResolver{Options: Options{LegacyNames: true}}.Resolve(d, "jpl")
	require.Len(t, cs, 2)
	assert.Equal(t, "jplg1230.23i", cs[0].LocalName)
	assert.Equal(t, "jplg1230.23i", cs[1].LocalName)
}

func TestIONEXLegacyResolver(t *testing.T) {
	d := epoch.NewDate(2009, time.January, 1)
	cs := IONEXLegacyResolver{}.Resolve(d, "cod")
	require.Len(t, cs, 1)
	assert.Equal(t, "codg0010.09i.Z", cs[0].RemoteName)
	assert.Equal(t, "2009/001", cs[0].RemoteDir)
}

func TestRINEXResolver(t *testing.T) {
	d := epoch.NewDate(2023, time.May, 3)
	cs := RINEXResolver{}.Resolve(d, "P494")
	require.Len(t, cs, 1)
	assert.Equal(t, Candidate{
		RemoteName: "p4941230.23d.Z",
		LocalName:  "p4941230.23o",
		RemoteDir:  "2023/123",
	}, cs[0])
	assert.Equal(t,
		"https://garner.ucsd.edu/archive/garner/rinex/2023/123/p4941230.23d.Z",
		cs[0].URL("https://garner.ucsd.edu/archive/garner/rinex"))

	assert.Empty(t, RINEXResolver{}.Resolve(d, " "))
}

func TestNew(t *testing.T) {
	d := epoch.NewDate(2023, time.January, 15)
	assert.Len(t, New(SP3, Options{}).Resolve(d, "igs"), 8)
	assert.Len(t, New(CLK, Options{}).Resolve(d, "igs"), 1)
	assert.Len(t, New(IONEX, Options{}).Resolve(d, "igs"), 2)
	assert.Len(t, New(RINEX, Options{}).Resolve(d, "p494"), 1)
	assert.Empty(t, New(Type("nav"), Options{}).Resolve(d, "igs"))
}

func TestLegacyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"IGS0OPSFIN_20230150000_01D_15M_ORB.SP3", "igs22450.sp3", true},
		{"JPL0OPSRAP_20220590000_01D_05M_ORB.SP3", "jpl21991.sp3", true},
		{"JPL0OPSFIN_20231230000_01D_02H_GIM.INX", "jplg1230.23i", true},
		{"COD0OPSFIN_20243660000_01D_02H_GIM.INX", "codg3660.24i", true},
		{"COD0OPSFIN_20233660000_01D_02H_GIM.INX", "", false},
		{"igs22450.sp3", "", false},
		{"IGS0OPSFIN_20230150000_01D_15M_ORB.SP3.gz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := LegacyName(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
