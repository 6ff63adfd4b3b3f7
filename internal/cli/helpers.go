package cli

import (
	"fmt"

	"github.com/glorpus-work/gnssget/internal/logger"
	"github.com/glorpus-work/gnssget/pkg/config"
	"github.com/glorpus-work/gnssget/pkg/download"
	"github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/hooks"
	"github.com/glorpus-work/gnssget/pkg/http"
	"github.com/glorpus-work/gnssget/pkg/orchestrator"
)

// These variables will be set by the main package
var (
	ConfigPath  *string
	Verbose     *bool
	OutputDir   *string
	TempDir     *string
	Parallel    *int
	VerifyTLS   *bool
	LegacyNames *bool
	LogFormat   *string
)

// loadConfig loads the configuration file, applies the global flag
// overrides and configures the logger accordingly.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputDir != nil && *OutputDir != "" {
		cfg.Settings.OutputDir = *OutputDir
	}
	if TempDir != nil && *TempDir != "" {
		cfg.Settings.TempDir = *TempDir
	}
	if Parallel != nil && *Parallel > 0 {
		cfg.Settings.MaxParallel = *Parallel
	}
	if VerifyTLS != nil && *VerifyTLS {
		cfg.Settings.VerifyTLS = true
	}
	if LegacyNames != nil && *LegacyNames {
		cfg.Settings.LegacyNames = true
	}
	if LogFormat != nil && *LogFormat != "" {
		cfg.Settings.LogFormat = *LogFormat
	}
	format, ok := logger.ParseFormat(cfg.Settings.LogFormat)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidLogFormat, cfg.Settings.LogFormat)
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level, format)

	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig report a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err.Error()})
		return ""
	}
	return defaultPath
}

// loadHookManager registers inline scripts first so that files in the hooks
// directory replace them.
func loadHookManager(cfg *config.Config) (hooks.HookManager, error) {
	manager := hooks.NewHookManager()
	if err := hooks.LoadHooks(manager, cfg.Hooks); err != nil {
		return nil, err
	}
	if err := hooks.LoadHooksFromDir(manager, cfg.Settings.HooksDir); err != nil {
		return nil, err
	}
	return manager, nil
}

// newOrchestrator wires transport, download manager and hooks from cfg.
func newOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	client := http.NewClient(cfg.HTTPConfig())
	dl := download.NewManager(client, download.NewPersister())

	scripts, err := loadHookManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load hooks: %w", err)
	}

	progress := orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		logger.Debug("Batch "+e.Phase, logger.Fields{"batch_id": e.ID, "msg": e.Msg})
	}}

	return orchestrator.New(cfg.OrchestratorConfig(), client, dl, scripts, progress), nil
}
