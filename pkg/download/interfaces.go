//go:generate mockgen -destination=mocks/download.go -package=mocks . Manager,Persister
package download

import (
	"context"

	"github.com/glorpus-work/gnssget/pkg/epoch"
)

// Manager executes download tasks.
type Manager interface {
	// FetchAll runs every task through a bounded worker pool. The returned
	// outcomes are index-aligned with tasks. A failed task never stops the others.
	FetchAll(ctx context.Context, tasks []Task, opts Options) []Outcome

	// Fetch runs a single task.
	Fetch(ctx context.Context, task Task) Outcome
}

// Persister turns fetched bytes into a product file.
type Persister interface {
	// Persist decompresses raw and publishes it atomically at dest. An existing
	// dest is returned unchanged. name is the remote file name, used as a
	// format hint.
	Persist(ctx context.Context, name string, raw []byte, dest string) (string, error)
}

// Task is one destination to materialise.
type Task struct {
	URL string
	// Mirrors are further URLs for the same destination, tried in order after URL.
	Mirrors     []string
	Destination string
	Date        epoch.Date
}

// URLs lists URL followed by Mirrors.
func (t Task) URLs() []string {
	urls := make([]string, 0, 1+len(t.Mirrors))
	if t.URL != "" {
		urls = append(urls, t.URL)
	}
	return append(urls, t.Mirrors...)
}

// Outcome reports what happened to a task.
type Outcome struct {
	Destination string
	// URL is the URL that produced the file, or the first URL tried on failure.
	URL     string
	Success bool
	// Skipped is set when the destination already existed.
	Skipped bool
	Err     error
}

// Options control a FetchAll run.
type Options struct {
	// Concurrency is the number of workers; if <=0, max(1, NumCPU/2) is used.
	Concurrency int
	// OnPersist is called from the worker after each task that wrote a file.
	OnPersist func(Task, Outcome)
}
