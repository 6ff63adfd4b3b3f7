package archive

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compressSegments encodes each segment as an independent LZW run, separated
// by CLEAR codes, in the layout written by Unix compress.
func compressSegments(maxBits int, segments ...[]byte) []byte {
	var (
		buf      []byte
		bitPos   int
		groupPos int
		nBits    = lzwInitBits
		maxCode  = 1<<nBits - 1
		free     = lzwClear + 1
		maxMax   = 1 << maxBits
	)
	write := func(code int) {
		for i := 0; i < nBits; i++ {
			if bitPos%8 == 0 {
				buf = append(buf, 0)
			}
			if code>>i&1 == 1 {
				buf[len(buf)-1] |= 1 << (bitPos % 8)
			}
			bitPos++
		}
	}
	pad := func() {
		n := nBits * 8
		if rel := bitPos - groupPos; rel%n != 0 {
			target := groupPos + (rel/n+1)*n
			for bitPos < target {
				if bitPos%8 == 0 {
					buf = append(buf, 0)
				}
				bitPos++
			}
		}
		groupPos = bitPos
	}
	emit := func(code int) {
		write(code)
		if free > maxCode && nBits < maxBits {
			pad()
			nBits++
			if nBits == maxBits {
				maxCode = maxMax
			} else {
				maxCode = 1<<nBits - 1
			}
		}
	}

	for i, seg := range segments {
		if i > 0 {
			write(lzwClear)
			pad()
			nBits, maxCode, free = lzwInitBits, 1<<lzwInitBits-1, lzwClear+1
		}
		if len(seg) == 0 {
			continue
		}
		dict := map[[2]int]int{}
		w := int(seg[0])
		for _, c := range seg[1:] {
			key := [2]int{w, int(c)}
			if code, ok := dict[key]; ok {
				w = code
				continue
			}
			emit(w)
			if free < maxMax {
				dict[key] = free
				free++
			}
			w = int(c)
		}
		emit(w)
	}

	return append([]byte{lzwMagic0, lzwMagic1, byte(lzwBlockMode | maxBits)}, buf...)
}

func TestUnlzw_Golden(t *testing.T) {
	// TOBEORNOTTOBEORTOBEORNOT\n as written by compress -b16.
	golden := []byte{
		0x1f, 0x9d, 0x90, 0x54, 0x9e, 0x08, 0x29, 0xf2, 0x44, 0x8a, 0x93, 0x27,
		0x54, 0x02, 0x0e, 0x2c, 0xa8, 0x90, 0xa0, 0x41, 0x84, 0x0a, 0x00,
	}
	out, err := unlzw(golden)
	require.NoError(t, err)
	assert.Equal(t, "TOBEORNOTTOBEORTOBEORNOT\n", string(out))
	assert.Equal(t, golden, compressSegments(16, []byte("TOBEORNOTTOBEORTOBEORNOT\n")))
}

// clockRecords renders the plaintext of testdata/clk_widths.Z.
func clockRecords() []byte {
	var b bytes.Buffer
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "AS G%02d  2023 01 15 %02d %02d 00.000000  2  %6d  %4d\n",
			i%32+1, i/12, i*5%60, i*7919%100000, i*37%1000)
	}
	return b.Bytes()
}

func TestUnlzw_GoldenWidthChange(t *testing.T) {
	// 620 codes, the last 364 of them 10 bits wide. gzip -d decodes this
	// file to the same plaintext.
	golden, err := os.ReadFile(filepath.Join("testdata", "clk_widths.Z"))
	require.NoError(t, err)
	require.Len(t, golden, 746)

	out, err := unlzw(golden)
	require.NoError(t, err)
	assert.Equal(t, string(clockRecords()), string(out))
	assert.Equal(t, golden, compressSegments(16, clockRecords()))
}

func TestUnlzw_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	words := [][]byte{[]byte("GPS"), []byte(" week "), []byte("igs"), []byte("\n"), []byte("-4567.891")}

	var text bytes.Buffer
	for i := 0; i < 20000; i++ {
		text.Write(words[rng.IntN(len(words))])
	}
	noise := make([]byte, 150000)
	for i := range noise {
		noise[i] = byte(rng.IntN(256))
	}

	tests := []struct {
		name     string
		maxBits  int
		segments [][]byte
	}{
		{"empty", 16, [][]byte{nil}},
		{"single byte", 16, [][]byte{[]byte("a")}},
		{"repeated byte", 16, [][]byte{bytes.Repeat([]byte("a"), 100)}},
		{"text grows widths", 16, [][]byte{text.Bytes()}},
		{"noise fills table", 16, [][]byte{noise}},
		{"narrow table", 12, [][]byte{text.Bytes()}},
		{"clear codes", 16, [][]byte{text.Bytes()[:5000], []byte("short"), noise[:70000], []byte("end")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := unlzw(compressSegments(tt.maxBits, tt.segments...))
			require.NoError(t, err)
			assert.Equal(t, bytes.Join(tt.segments, nil), out)
		})
	}
}

func TestUnlzw_Corrupt(t *testing.T) {
	_, err := unlzw([]byte{0x1f, 0x8b, 0x08})
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = unlzw([]byte{0x1f, 0x9d, 0x80 | 20, 0x00})
	assert.ErrorIs(t, err, ErrCorrupt)

	// First code 300 cannot be a literal.
	_, err = unlzw([]byte{0x1f, 0x9d, 0x90, 0x2c, 0x01})
	assert.ErrorIs(t, err, ErrCorrupt)
}
