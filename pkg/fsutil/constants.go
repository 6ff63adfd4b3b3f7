package fsutil

// File and directory permission constants used for product trees, failure logs and config files.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: decompressed products and logs
	FileModeSecure  = 0o640 // -rw-r-----: config files

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: product roots
	DirModeSecure  = 0o750 // drwxr-x---: state and config directories
)
