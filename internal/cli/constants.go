package cli

// Default values for CLI flags and formatted output.
const (
	// DefaultWindowLen is the number of consecutive days in a sampled window.
	DefaultWindowLen = 3
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
)
