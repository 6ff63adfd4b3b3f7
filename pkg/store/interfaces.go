// Package store inspects and maintains the local product tree: per-product
// usage, failure logs and the renaming of long-format files to legacy names.
//
//go:generate mockgen -destination=./mocks/store.go -package=mocks . Manager
package store

import "github.com/glorpus-work/gnssget/pkg/product"

// Manager defines the product tree maintenance operations.
type Manager interface {
	GetInfo(dirs map[product.Type]string) (*Info, error)
	CleanLogs() (*CleanResult, error)
	RenameLegacy(dir string) ([]Rename, error)
}

// DirInfo describes one product directory.
type DirInfo struct {
	Product product.Type
	Path    string
	Size    int64
	Files   int
}

// Info represents the state of the product tree.
type Info struct {
	OutputRoot string
	Products   []DirInfo
	TotalSize  int64

	LogDir   string
	LogSize  int64
	LogFiles int
	// Missing counts failure records across all logs.
	Missing int
}

// CleanResult contains information about removed failure logs.
type CleanResult struct {
	Files int
	Freed int64
}

// Rename records a file moved to its legacy name.
type Rename struct {
	From string
	To   string
}
