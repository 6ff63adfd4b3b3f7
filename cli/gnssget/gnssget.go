package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/gnssget/internal/cli"
)

var (
	configPath  string
	verbose     bool
	outputDir   string
	tempDir     string
	parallel    int
	verifyTLS   bool
	legacyNames bool
	logFormat   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gnssget",
		Short: "Download GNSS products from public archives",
		Long: `gnssget downloads GNSS analysis products for selected dates:
- clk, sp3, ionex: clock, orbit and ionosphere products of analysis centers
- rinex: daily station observations, expanded from Hatanaka compression
Files are decompressed and written atomically; anything still missing after
a batch is appended to a failure log.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory product directories are created in")
	cmd.PersistentFlags().StringVar(&tempDir, "temp-dir", "", "directory failure logs are written to")
	cmd.PersistentFlags().IntVar(&parallel, "parallel", 0, "maximum concurrent probes and downloads (0=config)")
	cmd.PersistentFlags().BoolVar(&verifyTLS, "verify-tls", false, "verify archive TLS certificates")
	cmd.PersistentFlags().BoolVar(&legacyNames, "legacy-names", false, "store long-name products under legacy names")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output format: text or json (default: config)")

	// Set up CLI package variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.OutputDir = &outputDir
	cli.TempDir = &tempDir
	cli.Parallel = &parallel
	cli.VerifyTLS = &verifyTLS
	cli.LegacyNames = &legacyNames
	cli.LogFormat = &logFormat

	// Add subcommands
	cmd.AddCommand(
		cli.NewCLKCmd(),
		cli.NewSP3Cmd(),
		cli.NewIONEXCmd(),
		cli.NewRINEXCmd(),
		cli.NewResolveCmd(),
		cli.NewDatesCmd(),
		cli.NewStoreCmd(),
		cli.NewConfigCmd(),
		cli.NewHooksCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
