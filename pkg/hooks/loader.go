package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/gnssget/pkg/errors"
)

// HookFileExtension is the extension of hook script files.
const HookFileExtension = ".tengo"

// LoadHooksFromDir adds every <hook-type>.tengo file found in dir.
// Files with other names are ignored; a missing dir is not an error.
func LoadHooksFromDir(manager HookManager, dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(ErrHookLoad, "failed to read hook directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue // Skip unknown hook types
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return errors.Wrapf(ErrHookLoad, "error reading hook file %s: %v", hookPath, err)
		}

		if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
			return errors.Wrapf(err, "error adding hook %s", hookType)
		}
	}

	return nil
}

// LoadHooks adds inline scripts keyed by hook type name.
func LoadHooks(manager HookManager, scripts map[string]string) error {
	for name, content := range scripts {
		if strings.TrimSpace(content) == "" {
			continue
		}
		if err := manager.AddHook(Hook{Type: HookType(name), Content: content}); err != nil {
			return errors.Wrapf(err, "error adding hook %s", name)
		}
	}
	return nil
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostPersist:
		return `// Post-persist hook
// This script runs after a product file has been written
// Available variables:
// - product: string - product type (clk, sp3, ionex, rinex)
// - date: string - product date, YYYY-MM-DD
// - url: string - URL the product was fetched from
// - path: string - local path of the decompressed product
// - batchID: string - identifier of the running batch
// Set err to a non-empty string to report a failure.

// Example: log every new file
/*
fmt := import("fmt")
fmt.println(product, " ", date, " -> ", path)
*/`
	case BatchComplete:
		return `// Batch-complete hook
// This script runs once after a batch has been reconciled
// Available variables:
// - product: string - product type
// - batchID: string - identifier of the batch
// - tasks: int - number of download tasks
// - failures: int - number of destinations still missing
// Set err to a non-empty string to report a failure.

// Example: flag incomplete batches
/*
if failures > 0 {
    err = "batch " + batchID + " left " + failures + " files missing"
}
*/`
	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
