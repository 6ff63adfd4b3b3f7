package hooks

// DefaultHookManager validates hook types and hands scripts to a TengoExecutor.
type DefaultHookManager struct {
	executor *TengoExecutor
}

var _ HookManager = (*DefaultHookManager)(nil)

// NewHookManager creates a manager with no scripts.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{
		executor: NewTengoExecutor(),
	}
}

// Execute runs the script for hookType. Unregistered types are a no-op.
func (m *DefaultHookManager) Execute(hookType HookType, ctx HookContext) error {
	return m.executor.Execute(hookType, ctx)
}

// AddHook compiles hook and registers it, replacing any script of the same type.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	if !hook.Type.Valid() {
		return ErrUnsupportedHookType(hook.Type)
	}
	return m.executor.AddScript(hook.Type, hook.Content)
}

// HasHook reports whether a script is registered for hookType.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	return m.executor.HasScript(hookType)
}
