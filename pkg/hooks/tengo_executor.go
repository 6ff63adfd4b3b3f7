package hooks

import (
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// scriptModules are the stdlib modules a hook may import.
var scriptModules = []string{"fmt", "os", "strings", "text", "times"}

// TengoExecutor keeps one compiled program per hook type. Scripts are
// compiled once when added; every run works on a clone so that workers
// persisting files in parallel never share VM globals.
type TengoExecutor struct {
	programs map[HookType]*tengo.Compiled
	mutex    sync.RWMutex
}

// NewTengoExecutor creates an executor with no scripts.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		programs: make(map[HookType]*tengo.Compiled),
	}
}

func contextVars(ctx HookContext) map[string]interface{} {
	return map[string]interface{}{
		"product":  ctx.Product,
		"date":     ctx.Date,
		"url":      ctx.URL,
		"path":     ctx.Path,
		"batchID":  ctx.BatchID,
		"tasks":    ctx.Tasks,
		"failures": ctx.Failures,
		"err":      "",
	}
}

// AddScript compiles source for hookType. A script that does not compile is
// rejected here, before any download starts.
func (e *TengoExecutor) AddScript(hookType HookType, source string) error {
	script := tengo.NewScript([]byte(source))
	script.SetImports(stdlib.GetModuleMap(scriptModules...))
	for name, zero := range contextVars(HookContext{}) {
		if err := script.Add(name, zero); err != nil {
			return fmt.Errorf("%s: %w: declare %s: %w", hookType, ErrHookLoad, name, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookLoad, err)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.programs[hookType] = compiled
	return nil
}

// Execute runs the program for hookType with ctx bound to its variables.
// A script reports failure by assigning err.
func (e *TengoExecutor) Execute(hookType HookType, ctx HookContext) error {
	e.mutex.RLock()
	program, exists := e.programs[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	run := program.Clone()
	for name, value := range contextVars(ctx) {
		if err := run.Set(name, value); err != nil {
			return fmt.Errorf("%s: %w: bind %s: %w", hookType, ErrHookExecution, name, err)
		}
	}
	if err := run.Run(); err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookExecution, err)
	}

	switch v := run.Get("err").Value().(type) {
	case error:
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookScript, v)
	case string:
		if v != "" {
			return fmt.Errorf("%s: %w: %s", hookType, ErrHookScript, v)
		}
	}
	return nil
}

// HasScript reports whether a program is registered for hookType.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.programs[hookType]
	return exists
}
