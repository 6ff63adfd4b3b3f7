package orchestrator

import (
	"context"
	"fmt"

	"github.com/glorpus-work/gnssget/pkg/download"
	"github.com/glorpus-work/gnssget/pkg/epoch"
	"github.com/glorpus-work/gnssget/pkg/hooks"
	"github.com/glorpus-work/gnssget/pkg/http"
	"github.com/glorpus-work/gnssget/pkg/product"
)

// Downloader executes download tasks.
type Downloader interface {
	FetchAll(ctx context.Context, tasks []download.Task, opts download.Options) []download.Outcome
}

// Orchestrator expands dates into download tasks, runs them and accounts for
// every destination that is still missing afterwards.
type Orchestrator struct {
	Config  Config
	Prober  http.Prober
	DL      Downloader
	Scripts hooks.HookManager // optional post-persist / batch-complete scripts
	Hooks   Hooks             // Hooks for progress and event notifications
}

// Config holds the settings shared by every batch.
type Config struct {
	// OutputRoot is the directory product directories are created in.
	OutputRoot string
	// TempRoot is the directory failure logs are appended to.
	TempRoot string
	// MaxParallelism bounds both probing and downloading; if <=0,
	// max(1, NumCPU/2) is used.
	MaxParallelism int
	// LegacyNames persists long-format products under their legacy names.
	LegacyNames bool
}

// Request describes one batch.
type Request struct {
	Dates    []epoch.Date
	Agencies []string
	// Mirrors are archive base URLs, most preferred first.
	Mirrors []string
	// Dir is the product directory below OutputRoot.
	Dir string
	// LogFile is the failure log name below TempRoot; defaults to download_<product>.log.
	LogFile string
}

// FailureRecord names a destination that was still missing after a batch.
type FailureRecord struct {
	Date epoch.Date
	URL  string
}

// String renders the record as a failure log line.
func (f FailureRecord) String() string {
	return fmt.Sprintf("missing : %s %s", f.Date, f.URL)
}

// Unavailable is a (date, agency) pair for which no candidate could be found
// on any mirror.
type Unavailable struct {
	Date   epoch.Date
	Agency string
}

// Report summarises a batch.
type Report struct {
	BatchID  string
	Product  product.Type
	Tasks    []download.Task
	Outcomes []download.Outcome
	// Failures are the tasks whose destination is still missing.
	Failures []FailureRecord
	// Skipped counts destinations that already existed before any network activity.
	Skipped int
	// Unavailable lists pairs where probing found nothing to download.
	Unavailable []Unavailable
	// LogPath is the failure log that Failures were appended to.
	LogPath string
}

// Downloaded counts the tasks that produced a file.
func (r *Report) Downloaded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success && !o.Skipped {
			n++
		}
	}
	return n
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // expanding|downloading|reconciling|done
	ID    string // batch ID
	Msg   string
}

// Batch phases reported through Hooks.
const (
	PhaseExpanding   = "expanding"
	PhaseDownloading = "downloading"
	PhaseReconciling = "reconciling"
	PhaseDone        = "done"
)

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}
