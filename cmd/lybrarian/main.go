// Package main provides the CLI entrypoint for lybrarian.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/lybrarian/internal/batch"
	"github.com/verte-zerg/lybrarian/internal/cmudict"
	"github.com/verte-zerg/lybrarian/internal/config"
	"github.com/verte-zerg/lybrarian/internal/recovery"
)

var (
	rootVerbose    bool
	rootDBPath     string
	rootDictPath   string
	rootNoRecovery bool
	rootNoDialect  bool

	logger = zap.NewNop()
)

// settings is the effective configuration after merging the config file
// under explicitly set flags.
type settings struct {
	dbPath     string
	dictPath   string
	dictURL    string
	recovery   bool
	model      string
	apiKeyEnv  string
	apiKey     string
	delay      time.Duration
	dialect    bool
	dialectCmd string
	vaultDir   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lybrarian",
		Short:         "Lyric fragment catalog with prosodic analysis",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The inspector owns the terminal, so it keeps the no-op logger.
			if cmd.Name() == "inspect" {
				return nil
			}
			cfg := zap.NewProductionConfig()
			cfg.Encoding = "console"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			if rootVerbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			built, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = built
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&rootDBPath, "db", config.DefaultDBPath(), "catalog database path")
	flags.StringVar(&rootDictPath, "dict", config.DefaultDictionaryPath(), "pronunciation dictionary path")
	flags.BoolVar(&rootNoRecovery, "no-recovery", false, "never ask the completion model for rhyme substitutes")
	flags.BoolVar(&rootNoDialect, "no-dialect", false, "skip the espeak British transcription backend")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newReanalyzeCmd())
	rootCmd.AddCommand(newRepairCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDictCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveSettings(cmd, fileCfg), nil
}

func resolveSettings(cmd *cobra.Command, fileCfg config.FileConfig) settings {
	s := settings{
		dbPath:    rootDBPath,
		dictPath:  rootDictPath,
		dictURL:   cmudict.DefaultURL,
		recovery:  !rootNoRecovery,
		model:     recovery.DefaultModel,
		apiKeyEnv: config.DefaultAPIKeyEnv,
		dialect:   !rootNoDialect,
		vaultDir:  config.DefaultVaultDir(),
	}
	delayMs := int(batch.DefaultDelay / time.Millisecond)

	applyStringConfig(cmd, "db", &s.dbPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "dict", &s.dictPath, fileCfg.Dictionary.Path)
	applyStringConfig(cmd, "", &s.dictURL, fileCfg.Dictionary.URL)
	applyBoolConfig(cmd, "no-recovery", &s.recovery, fileCfg.Recovery.Enabled)
	applyStringConfig(cmd, "", &s.model, fileCfg.Recovery.Model)
	applyStringConfig(cmd, "", &s.apiKeyEnv, fileCfg.Recovery.APIKeyEnv)
	applyIntConfig(cmd, "", &delayMs, fileCfg.Recovery.DelayMs)
	applyBoolConfig(cmd, "no-dialect", &s.dialect, fileCfg.Dialect.Enabled)
	applyStringConfig(cmd, "", &s.dialectCmd, fileCfg.Dialect.Command)
	applyStringConfig(cmd, "", &s.vaultDir, fileCfg.Vault.Dir)

	if delayMs < 0 {
		delayMs = 0
	}
	s.delay = time.Duration(delayMs) * time.Millisecond
	s.apiKey = fileCfg.Recovery.APIKey()
	return s
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// applyStringConfig copies value into target unless the named flag was set.
// An empty name means the setting has no flag.
func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lybrarian configuration
# Uncomment a value to enable it. CLI flags override config values.

[dictionary]
# path = %q
# url = %q

[store]
# path = %q

[recovery]
# enabled = true              # Ask the completion model when no rhyme key resolves
# model = %q
# api-key-env = %q     # Environment variable holding the API key
# delay-ms = %d               # Pause after each fragment that queried the model

[dialect]
# enabled = true              # Use espeak for British rhyme keys when installed
# command = "espeak-ng"

[vault]
# dir = %q
`,
		config.DefaultDictionaryPath(),
		cmudict.DefaultURL,
		config.DefaultDBPath(),
		recovery.DefaultModel,
		config.DefaultAPIKeyEnv,
		int(batch.DefaultDelay/time.Millisecond),
		config.DefaultVaultDir(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
