//go:generate mockgen -destination=mocks/hooks.go -package=mocks . HookManager
package hooks

// HookType names the pipeline event a script is attached to.
type HookType string

// Supported hook types.
const (
	// PostPersist runs after each product file is written.
	PostPersist HookType = "post-persist"
	// BatchComplete runs once after a batch has been reconciled.
	BatchComplete HookType = "batch-complete"
)

// HookTypes lists every supported hook type.
func HookTypes() []HookType {
	return []HookType{PostPersist, BatchComplete}
}

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	switch t {
	case PostPersist, BatchComplete:
		return true
	default:
		return false
	}
}

// Hook is a Tengo script bound to one hook type.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext is exposed to scripts as the variables product, date, url,
// path, batchID, tasks and failures.
type HookContext struct {
	Product  string
	Date     string
	URL      string
	Path     string
	BatchID  string
	Tasks    int
	Failures int
}

// HookManager runs the scripts registered for pipeline events.
type HookManager interface {
	// Execute runs the script for hookType, if any.
	Execute(hookType HookType, ctx HookContext) error

	// AddHook compiles and registers a script, replacing any previous one of the same type.
	AddHook(hook Hook) error

	// HasHook reports whether a script is registered for hookType.
	HasHook(hookType HookType) bool
}
