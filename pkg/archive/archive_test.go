package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	ctx := context.Background()
	orbit := []byte("#dP2023  1 15  0  0  0.00000000      96 ORBIT IGS20 FIT  IGS\n*  2023  1 15  0  0  0.00000000\n")

	t.Run("unix compress", func(t *testing.T) {
		out, err := Decompress(ctx, "igs22450.sp3.Z", compressSegments(16, orbit))
		require.NoError(t, err)
		assert.Equal(t, orbit, out)
	})

	t.Run("gzip", func(t *testing.T) {
		out, err := Decompress(ctx, "IGS0OPSFIN_20230150000_01D_15M_ORB.SP3.gz", gzipBytes(t, orbit))
		require.NoError(t, err)
		assert.Equal(t, orbit, out)
	})

	t.Run("gzip content without extension", func(t *testing.T) {
		out, err := Decompress(ctx, "download.bin", gzipBytes(t, orbit))
		require.NoError(t, err)
		assert.Equal(t, orbit, out)
	})

	t.Run("plain passes through", func(t *testing.T) {
		out, err := Decompress(ctx, "igs22450.sp3", orbit)
		require.NoError(t, err)
		assert.Equal(t, orbit, out)
	})

	t.Run("broken gzip", func(t *testing.T) {
		broken := gzipBytes(t, orbit)
		broken = broken[:len(broken)/2]
		_, err := Decompress(ctx, "x.gz", broken)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("compressed compact rinex", func(t *testing.T) {
		body := []string{
			"&23  1 15  0  0  0.0000000  0  1G01",
			"",
			"3&20000000 3&100000000",
		}
		crx := joinLines(crxHeader("1.0"), rinexHeader, body)

		out, err := Decompress(ctx, "p4940150.23d.Z", compressSegments(16, []byte(crx)))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(out), rinexHeader[0]+"\n"))
		assert.Contains(t, string(out), " 23  1 15  0  0  0.0000000  0  1G01\n     20000.000      100000.000\n")
	})
}
