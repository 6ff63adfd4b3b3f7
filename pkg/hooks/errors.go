package hooks

import (
	"fmt"

	"github.com/glorpus-work/gnssget/pkg/errors"
)

var (
	// ErrHookTypeEmpty is returned when a hook has no type.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")

	// ErrHookExecution is returned when a script fails at runtime.
	ErrHookExecution = fmt.Errorf("error executing hook")

	// ErrHookScript is returned when a script reports an error through err.
	ErrHookScript = fmt.Errorf("hook script error")

	// ErrHookLoad is returned when a script cannot be read or compiled.
	ErrHookLoad = fmt.Errorf("failed to load hook")
)

// ErrUnsupportedHookType is returned for a hook type other than post-persist or batch-complete.
func ErrUnsupportedHookType(hookType HookType) error {
	return errors.Wrapf(ErrHookLoad, "unsupported hook type: %s", hookType)
}
