package store

import (
	"bufio"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/glorpus-work/gnssget/internal/logger"
	"github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/fsutil"
	"github.com/glorpus-work/gnssget/pkg/product"
)

// logExtension marks failure logs inside the temp directory.
const logExtension = ".log"

// missingPrefix starts every failure record.
const missingPrefix = "missing : "

// DefaultManager implements Manager on the local filesystem.
type DefaultManager struct {
	outputRoot string
	tempRoot   string
}

var _ Manager = (*DefaultManager)(nil)

// NewManager creates a manager for the tree below outputRoot whose failure
// logs live in tempRoot.
func NewManager(outputRoot, tempRoot string) *DefaultManager {
	return &DefaultManager{outputRoot: outputRoot, tempRoot: tempRoot}
}

// GetInfo returns usage per product directory (relative to the output root)
// and a summary of the failure logs.
func (m *DefaultManager) GetInfo(dirs map[product.Type]string) (*Info, error) {
	info := &Info{OutputRoot: m.outputRoot, LogDir: m.tempRoot}

	types := make([]product.Type, 0, len(dirs))
	for t := range dirs {
		types = append(types, t)
	}
	slices.Sort(types)

	for _, t := range types {
		path := filepath.Join(m.outputRoot, dirs[t])
		size, files, err := getDirSizeAndFiles(path, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get %s directory info", t)
		}
		info.Products = append(info.Products, DirInfo{Product: t, Path: path, Size: size, Files: files})
		info.TotalSize += size
	}

	logs, err := m.logFiles()
	if err != nil {
		return nil, err
	}
	for _, path := range logs {
		st, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stat %s", path)
		}
		n, err := countMissing(path)
		if err != nil {
			return nil, err
		}
		info.LogFiles++
		info.LogSize += st.Size()
		info.Missing += n
	}

	return info, nil
}

// CleanLogs removes every failure log from the temp directory. Other files
// are left alone.
func (m *DefaultManager) CleanLogs() (*CleanResult, error) {
	if m.tempRoot == "" {
		return nil, ErrStoreDirectory
	}
	logs, err := m.logFiles()
	if err != nil {
		return nil, err
	}

	result := &CleanResult{}
	for _, path := range logs {
		st, err := os.Stat(path)
		if err != nil {
			return result, errors.Wrapf(err, "failed to stat %s", path)
		}
		if err := os.Remove(path); err != nil {
			return result, errors.Wrapf(err, "failed to remove %s", path)
		}
		result.Files++
		result.Freed += st.Size()
	}

	logger.Debug("Cleaned failure logs", logger.Fields{"dir": m.tempRoot, "files": result.Files})
	return result, nil
}

// RenameLegacy moves every long-format orbit or ionosphere map in dir to its
// legacy short name. Files whose legacy name is already taken are skipped
// and reported in the returned error; the other renames still happen.
func (m *DefaultManager) RenameLegacy(dir string) ([]Rename, error) {
	if dir == "" {
		return nil, ErrStoreDirectory
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}

	var (
		renames []Rename
		skipped []string
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		short, ok := product.LegacyName(entry.Name())
		if !ok {
			continue
		}
		from := filepath.Join(dir, entry.Name())
		to := filepath.Join(dir, short)
		if fsutil.FileExists(to) {
			skipped = append(skipped, entry.Name())
			continue
		}
		if err := fsutil.Move(from, to); err != nil {
			return renames, errors.Wrapf(err, "failed to rename %s", from)
		}
		renames = append(renames, Rename{From: from, To: to})
	}

	if len(skipped) > 0 {
		return renames, errors.Wrapf(ErrLegacyTargetExists, "skipped %s", strings.Join(skipped, ", "))
	}
	return renames, nil
}

func (m *DefaultManager) logFiles() ([]string, error) {
	if m.tempRoot == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(m.tempRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", m.tempRoot)
	}

	var out []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && filepath.Ext(entry.Name()) == logExtension {
			out = append(out, filepath.Join(m.tempRoot, entry.Name()))
		}
	}
	return out, nil
}

func countMissing(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), missingPrefix) {
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return n, errors.Wrapf(err, "failed to read %s", path)
	}
	return n, nil
}

// getDirSizeAndFiles calculates directory size and file count. A missing
// directory is empty.
func getDirSizeAndFiles(dir string, skip func(string) bool) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || (skip != nil && skip(path)) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		size += fi.Size()
		count++
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
