// Package testutil provides a fake product archive and config helpers for
// end-to-end tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glorpus-work/gnssget/internal/logger"
)

// ArchiveServer serves a fixed set of files and answers 404 for anything
// else. It records how often each path was requested per method.
type ArchiveServer struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string][]byte
	hits  map[string]int
}

// NewArchiveServer starts a server with files keyed by URL path. The server
// is closed when the test ends.
func NewArchiveServer(t *testing.T, files map[string][]byte) *ArchiveServer {
	t.Helper()
	s := &ArchiveServer{files: make(map[string][]byte), hits: make(map[string]int)}
	for p, data := range files {
		s.files["/"+strings.TrimPrefix(p, "/")] = data
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *ArchiveServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.Method+" "+r.URL.Path]++
	data, ok := s.files[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}

// Add publishes another file.
func (s *ArchiveServer) Add(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files["/"+strings.TrimPrefix(path, "/")] = data
}

// Hits returns how often path was requested with method.
func (s *ArchiveServer) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" /"+strings.TrimPrefix(path, "/")]
}

// SetupTestConfig writes a config file into a temporary directory that
// points every product at mirror and keeps output below root. Extra YAML is
// appended verbatim.
func SetupTestConfig(t *testing.T, root, mirror, extra string) string {
	t.Helper()

	configStr := fmt.Sprintf(`settings:
  output_dir: %[1]s
  temp_dir: %[2]s
  max_parallel: 2
  attempts: 1
products:
  clk:
    mirrors: [%[3]q]
  sp3:
    mirrors: [%[3]q]
  ionex:
    mirrors: [%[3]q]
  rinex:
    mirrors: [%[3]q]
`, filepath.Join(root, "out"), filepath.Join(root, "TEMP"), mirror) + extra

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	logger.Debug("Writing test config", logger.Fields{"path": configPath})
	if err := os.WriteFile(configPath, []byte(configStr), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
