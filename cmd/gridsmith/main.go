package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gridsmith/internal/config"
	"gridsmith/internal/logging"
	"gridsmith/internal/provider"
	"gridsmith/internal/records"
	"gridsmith/internal/server"
	"gridsmith/internal/validation"
)

var (
	// Global flags
	verbose      bool
	workspace    string
	providerKind string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gridsmith",
	Short: "gridsmith - validation and AI repair for tabular resource data",
	Long: `gridsmith ingests clients, workers, and tasks decoded from spreadsheet
uploads, validates them against a fixed domain schema in one deterministic
pass, and mediates structured output from interchangeable model backends
for search, rule synthesis, and error correction.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := logging.Initialize(workspace); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// serveCmd runs the HTTP boundary
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation and generation API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watcher, err := config.NewWatcher(config.DefaultUserConfigPath(workspace), func(cfg *config.UserConfig) {
			logger.Info("config loaded", zap.String("provider", cfg.Provider))
			_ = logging.ReloadConfig()
		})
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()

		return server.New(watcher, logger).ListenAndServe(ctx, addr)
	},
}

// validateCmd runs one validation pass over a snapshot file
var validateCmd = &cobra.Command{
	Use:   "validate <snapshot.json>",
	Short: "Validate a decoded snapshot file and print the findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		var snap records.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}

		errs := validation.NewEngine().Validate(snap)
		summary := validation.Summarize(errs)

		out, err := json.MarshalIndent(map[string]any{"errors": errs, "summary": summary}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		logger.Info("validation complete",
			zap.Int("errors", summary.Errors),
			zap.Int("warnings", summary.Warnings))

		// error-severity findings gate the exit code; warnings never do
		if summary.Errors > 0 {
			os.Exit(1)
		}
		return nil
	},
}

// providersCmd probes backend reachability
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Probe the configured model backends",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.DefaultUserConfigPath(workspace))
		if err != nil {
			return err
		}

		kinds := []string{config.ProviderOllama, config.ProviderGemini, config.ProviderOpenAI}
		if providerKind != "" {
			kinds = []string{providerKind}
		}

		for _, kind := range kinds {
			pc, err := cfg.Resolve(kind)
			if err != nil {
				fmt.Printf("%-8s not configured: %v\n", kind, err)
				continue
			}
			client, err := provider.New(pc)
			if err != nil {
				fmt.Printf("%-8s %v\n", kind, err)
				continue
			}
			if client.Healthy(cmd.Context()) {
				fmt.Printf("%-8s healthy (model %s)\n", kind, pc.Model)
			} else {
				fmt.Printf("%-8s unreachable\n", kind)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVarP(&providerKind, "provider", "p", "", "provider override (ollama, gemini, openai)")

	serveCmd.Flags().String("addr", ":8080", "listen address")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
