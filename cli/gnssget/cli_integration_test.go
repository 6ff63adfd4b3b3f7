//go:build integration

package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/gnssget/internal/logger"
	"github.com/glorpus-work/gnssget/test/testutil"
)

func TestMain(m *testing.M) {
	logger.SetTestOutput(io.Discard)
	code := m.Run()
	logger.UnsetTestOutput()
	os.Exit(code)
}

// run executes the root command with args and returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "gnssget version")
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "help")
	require.NoError(t, err)
	assert.Contains(t, output, "gnssget downloads GNSS analysis products")
	assert.Contains(t, output, "Available Commands")
}

func TestConfigInitAndShow(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gnssget", "config.yaml")

	_, err := run(t, "--config", configPath, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, configPath)

	_, err = run(t, "--config", configPath, "config", "init")
	assert.Error(t, err, "init refuses to overwrite without --force")

	_, err = run(t, "--config", configPath, "config", "set", "max_parallel", "4")
	require.NoError(t, err)

	output, err := run(t, "--config", configPath, "config", "get", "max_parallel")
	require.NoError(t, err)
	assert.Equal(t, "4\n", output)

	output, err = run(t, "--config", configPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "SETTING")
	assert.Contains(t, output, "Products:")
	assert.Regexp(t, `clk\s+CLK\s+download_clk\.log\s+igs\s+https://cddis`, output)

	output, err = run(t, "--config", configPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, configPath+"\n", output)
}

func TestConfigSetKeepsOverridesOut(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := run(t, "--config", configPath, "--output-dir", "/scratch", "config", "set", "attempts", "5")
	require.NoError(t, err)

	output, err := run(t, "--config", configPath, "config", "get", "output_dir")
	require.NoError(t, err)
	assert.Equal(t, ".\n", output)

	output, err = run(t, "--config", configPath, "config", "get", "attempts")
	require.NoError(t, err)
	assert.Equal(t, "5\n", output)

	output, err = run(t, "--config", configPath, "--output-dir", "/scratch", "config", "show")
	require.NoError(t, err)
	assert.Regexp(t, `output_dir\s+/scratch`, output)
}

func TestResolveCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "absent.yaml")

	output, err := run(t, "--config", configPath, "resolve", "clk", "--date", "2023-01-15", "--mirror", "https://a/products")
	require.NoError(t, err)
	assert.Contains(t, output, "igs22450.clk_30s")
	assert.Contains(t, output, "https://a/products/2245/igs22450.clk_30s.Z")

	output, err = run(t, "--config", configPath, "resolve", "rinex", "--station", "P494", "--date", "2023-015", "--mirror", "https://g")
	require.NoError(t, err)
	assert.Contains(t, output, "https://g/2023/015/p4940150.23d.Z")

	_, err = run(t, "--config", configPath, "resolve", "nav", "--date", "2023-01-15")
	assert.Error(t, err)

	_, err = run(t, "--config", configPath, "--log-format", "json", "resolve", "clk", "--date", "2023-01-15")
	require.NoError(t, err)
	_, err = run(t, "--config", configPath, "--log-format", "xml", "resolve", "clk", "--date", "2023-01-15")
	assert.Error(t, err)
}

func TestDatesCommand(t *testing.T) {
	output, err := run(t, "dates", "--from", "2023-01-14", "--to", "2023-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2023-01-14  week 2244 day 6  doy 014\n2023-01-15  week 2245 day 0  doy 015\n", output)

	_, err = run(t, "dates")
	assert.Error(t, err)
}

func TestCLKDownload(t *testing.T) {
	server := testutil.NewArchiveServer(t, map[string][]byte{
		"/2245/igs22450.clk_30s.Z": []byte("clock body"),
	})

	root := t.TempDir()
	args := []string{
		"--config", filepath.Join(root, "absent.yaml"),
		"--output-dir", filepath.Join(root, "out"),
		"--temp-dir", filepath.Join(root, "TEMP"),
		"clk", "--date", "2023-01-15", "--date", "2023-01-16", "--mirror", server.URL,
	}

	output, err := run(t, args...)
	require.NoError(t, err, "partial failure still completes the batch")
	assert.Contains(t, output, "clk: 2 tasks, 1 downloaded, 0 already present, 1 missing")

	data, err := os.ReadFile(filepath.Join(root, "out", "CLK", "igs22450.clk_30s"))
	require.NoError(t, err)
	assert.Equal(t, "clock body", string(data))

	log, err := os.ReadFile(filepath.Join(root, "TEMP", "download_clk.log"))
	require.NoError(t, err)
	assert.Equal(t, "missing : 2023-01-16 "+server.URL+"/2245/igs22451.clk_30s.Z\n", string(log))

	output, err = run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, output, "clk: 1 tasks, 0 downloaded, 1 already present, 1 missing")
	assert.Equal(t, 1, server.Hits(http.MethodGet, "/2245/igs22450.clk_30s.Z"), "present file is not fetched again")
}

func TestSP3AndStoreCommands(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte("orbit body"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	server := testutil.NewArchiveServer(t, map[string][]byte{
		"/2245/IGS0OPSFIN_20230150000_01D_15M_ORB.SP3.gz": gz.Bytes(),
	})
	root := t.TempDir()
	configPath := testutil.SetupTestConfig(t, root, server.URL, "")

	output, err := run(t, "--config", configPath, "sp3", "--date", "2023-01-15", "--date", "2023-01-16")
	require.NoError(t, err)
	assert.Contains(t, output, "sp3: 1 tasks, 1 downloaded, 0 already present, 0 missing, 1 unavailable")

	long := filepath.Join(root, "out", "SP3", "IGS0OPSFIN_20230150000_01D_15M_ORB.SP3")
	data, err := os.ReadFile(long)
	require.NoError(t, err)
	assert.Equal(t, "orbit body", string(data))

	_, err = run(t, "--config", configPath, "clk", "--date", "2023-01-15")
	require.NoError(t, err)

	output, err = run(t, "--config", configPath, "store", "info")
	require.NoError(t, err)
	assert.Contains(t, output, "1 missing records")

	output, err = run(t, "--config", configPath, "store", "legacy-names", "sp3")
	require.NoError(t, err)
	assert.Equal(t, "IGS0OPSFIN_20230150000_01D_15M_ORB.SP3 -> igs22450.sp3\n", output)
	assert.FileExists(t, filepath.Join(root, "out", "SP3", "igs22450.sp3"))
	assert.NoFileExists(t, long)

	_, err = run(t, "--config", configPath, "store", "legacy-names", "clk")
	assert.Error(t, err)

	output, err = run(t, "--config", configPath, "store", "clean")
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 failure logs\n", output)
	assert.NoFileExists(t, filepath.Join(root, "TEMP", "download_clk.log"))
}

func TestRINEXRequiresStation(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "rinex", "--date", "2023-01-15")
	assert.Error(t, err)
}
