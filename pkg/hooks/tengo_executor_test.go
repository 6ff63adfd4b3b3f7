package hooks_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/gnssget/pkg/hooks"
)

func persistContext() hooks.HookContext {
	return hooks.HookContext{
		Product: "sp3",
		Date:    "2023-01-15",
		URL:     "https://cddis.nasa.gov/archive/gnss/products/2245/igs22450.sp3.Z",
		Path:    "/data/SP3/igs22450.sp3",
		BatchID: "0b5a0e53-2a1f-4c0d-8d46-3f0d8c1e2b7a",
	}
}

func TestTengoExecutor_Load(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"comment only", `// does nothing`, false},
		{"uses context", `x := product + date`, false},
		{"imports stdlib", `fmt := import("fmt"); fmt.println(path)`, false},
		{"syntax error", `if failures > {`, true},
		{"unresolved name", `notify_ops(batchID)`, true},
		{"module outside allow list", `exec := import("exec")`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := hooks.NewTengoExecutor()
			err := executor.AddScript(hooks.PostPersist, tt.source)
			if tt.wantErr {
				assert.ErrorIs(t, err, hooks.ErrHookLoad)
				assert.False(t, executor.HasScript(hooks.PostPersist))
				return
			}
			require.NoError(t, err)
			assert.True(t, executor.HasScript(hooks.PostPersist))
		})
	}
}

func TestTengoExecutor_Execute(t *testing.T) {
	ctx := persistContext()

	t.Run("runtime error", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		require.NoError(t, executor.AddScript(hooks.BatchComplete, `ratio := tasks / failures`))

		assert.ErrorIs(t, executor.Execute(hooks.BatchComplete, ctx), hooks.ErrHookExecution)
	})

	t.Run("script reports failure through err", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		require.NoError(t, executor.AddScript(hooks.BatchComplete, `
			if failures > 0 {
				err = "missing files"
			}
		`))

		assert.NoError(t, executor.Execute(hooks.BatchComplete, ctx))

		failing := ctx
		failing.Failures = 2
		err := executor.Execute(hooks.BatchComplete, failing)
		assert.ErrorIs(t, err, hooks.ErrHookScript)
		assert.Contains(t, err.Error(), "missing files")

		// err starts empty on every run.
		assert.NoError(t, executor.Execute(hooks.BatchComplete, ctx))
	})

	t.Run("unregistered type is a no-op", func(t *testing.T) {
		assert.NoError(t, hooks.NewTengoExecutor().Execute(hooks.PostPersist, ctx))
	})

	t.Run("context variables are accessible", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		require.NoError(t, executor.AddScript(hooks.PostPersist, `
			text := import("text")
			if product != "sp3" || date != "2023-01-15" {
				err = "unexpected context"
			}
			if !text.has_suffix(path, ".sp3") || !text.contains(url, "2245") || batchID == "" {
				err = "unexpected paths"
			}
		`))

		assert.NoError(t, executor.Execute(hooks.PostPersist, ctx))
	})

	t.Run("replacing a script", func(t *testing.T) {
		executor := hooks.NewTengoExecutor()
		require.NoError(t, executor.AddScript(hooks.PostPersist, `err = "old"`))
		require.NoError(t, executor.AddScript(hooks.PostPersist, `// new`))

		assert.NoError(t, executor.Execute(hooks.PostPersist, ctx))
	})
}

func TestTengoExecutor_ConcurrentRuns(t *testing.T) {
	executor := hooks.NewTengoExecutor()
	require.NoError(t, executor.AddScript(hooks.PostPersist, `
		text := import("text")
		if !text.has_suffix(path, date + ".sp3") {
			err = "context leaked between runs: " + path
		}
	`))

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := persistContext()
			ctx.Date = fmt.Sprintf("2023-01-%02d", i+1)
			ctx.Path = "/data/SP3/" + ctx.Date + ".sp3"
			errs[i] = executor.Execute(hooks.PostPersist, ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}
