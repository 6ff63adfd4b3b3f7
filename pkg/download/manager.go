package download

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"sync"

	pkgerrors "github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/fsutil"
	"github.com/glorpus-work/gnssget/pkg/http"
)

// ManagerImpl fetches tasks with a Fetcher and hands the bytes to a Persister.
type ManagerImpl struct {
	fetcher   http.Fetcher
	persister Persister
}

var _ Manager = (*ManagerImpl)(nil)

// NewManager creates a download manager.
func NewManager(fetcher http.Fetcher, persister Persister) *ManagerImpl {
	if persister == nil {
		persister = NewPersister()
	}
	return &ManagerImpl{fetcher: fetcher, persister: persister}
}

// DefaultConcurrency is half the available cores, at least one.
func DefaultConcurrency() int {
	return max(1, runtime.NumCPU()/2)
}

// FetchAll implements Manager.
func (m *ManagerImpl) FetchAll(ctx context.Context, tasks []Task, opts Options) []Outcome {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency()
	}
	outcomes := make([]Outcome, len(tasks))
	if len(tasks) == 0 {
		return outcomes
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(opts.Concurrency, len(tasks)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out := m.fetchOne(ctx, tasks[i])
				outcomes[i] = out
				if out.Success && !out.Skipped && opts.OnPersist != nil {
					opts.OnPersist(tasks[i], out)
				}
			}
		}()
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return outcomes
}

// Fetch implements Manager.
func (m *ManagerImpl) Fetch(ctx context.Context, task Task) Outcome {
	return m.fetchOne(ctx, task)
}

func (m *ManagerImpl) fetchOne(ctx context.Context, task Task) Outcome {
	urls := task.URLs()
	out := Outcome{Destination: task.Destination}
	if len(urls) > 0 {
		out.URL = urls[0]
	}

	if fsutil.FileExists(task.Destination) {
		out.Success = true
		out.Skipped = true
		return out
	}
	if len(urls) == 0 {
		out.Err = fmt.Errorf("no url for %s: %w", task.Destination, pkgerrors.ErrDownloadFailed)
		return out
	}

	var last error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			last = err
			break
		}
		raw, err := m.fetcher.Fetch(ctx, u)
		if err != nil {
			last = err
			continue
		}
		if _, err := m.persister.Persist(ctx, path.Base(u), raw, task.Destination); err != nil {
			last = err
			continue
		}
		out.URL = u
		out.Success = true
		return out
	}

	out.Err = fmt.Errorf("%w: %s: %w", pkgerrors.ErrDownloadFailed, task.Destination, last)
	return out
}
