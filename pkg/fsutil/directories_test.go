package fsutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureFileDir_ProductTree(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"product below output root", filepath.Join(root, "out", "CLK", "igs22450.clk_30s")},
		{"failure log below temp root", filepath.Join(root, "TEMP", "download_clk.log")},
		{"existing parent", filepath.Join(root, "out", "CLK", "igs22451.clk_30s")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, EnsureFileDir(tt.path))
			assert.DirExists(t, filepath.Dir(tt.path))
			assert.NoFileExists(t, tt.path)
		})
	}
}

func TestEnsureDir_Mode(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "SP3")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	// umask can only clear bits.
	assert.Zero(t, info.Mode().Perm()&^os.FileMode(DirModeDefault))
}

func TestEnsureFileDir_ConcurrentWorkers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "ION")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = EnsureFileDir(filepath.Join(dir, "igsg0150.23i"))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.DirExists(t, dir)
}

func TestEnsureFileDir_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "CLK")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), FileModeDefault))

	err := EnsureFileDir(filepath.Join(blocker, "igs22450.clk_30s"))
	assert.Error(t, err)
}
