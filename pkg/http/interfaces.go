//go:generate mockgen -destination=mocks/http.go -package=mocks . Prober,Fetcher
package http

import "context"

// Prober answers whether a remote file exists.
type Prober interface {
	// Exists reports whether url answers a metadata request with a 2xx status.
	// Transport failures count as absence.
	Exists(ctx context.Context, url string) bool
}

// Fetcher retrieves remote files.
type Fetcher interface {
	// Fetch returns the body of url. A missing file yields an error wrapping
	// ErrNotFound; exhausted retries yield an error wrapping ErrTransport.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
