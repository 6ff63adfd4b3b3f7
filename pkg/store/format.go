package store

import (
	"fmt"
	"strings"
)

// FormatInfo renders info for the terminal.
func FormatInfo(info *Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Products below %s:\n", info.OutputRoot)
	for _, p := range info.Products {
		fmt.Fprintf(&b, "  %-6s %10s (%d files)  %s\n", p.Product, formatBytes(p.Size), p.Files, p.Path)
	}
	fmt.Fprintf(&b, "  total  %10s\n", formatBytes(info.TotalSize))
	fmt.Fprintf(&b, "Failure logs in %s: %d files, %s, %d missing records",
		info.LogDir, info.LogFiles, formatBytes(info.LogSize), info.Missing)
	return b.String()
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
