package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/lybrarian/internal/batch"
	"github.com/verte-zerg/lybrarian/internal/cmudict"
	"github.com/verte-zerg/lybrarian/internal/ingest"
	"github.com/verte-zerg/lybrarian/internal/model"
	"github.com/verte-zerg/lybrarian/internal/prosody"
	"github.com/verte-zerg/lybrarian/internal/recovery"
	"github.com/verte-zerg/lybrarian/internal/report"
	"github.com/verte-zerg/lybrarian/internal/rhyme"
	"github.com/verte-zerg/lybrarian/internal/store"
	"github.com/verte-zerg/lybrarian/internal/tui"
	"github.com/verte-zerg/lybrarian/internal/vault"
)

var (
	analyzeJSON     bool
	analyzeRhythmic bool

	exportOut string

	dictForce bool
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze lines given as arguments or on stdin",
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&analyzeRhythmic, "rhythmic", true, "report stress patterns (set false for non-metrical text)")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, "\n")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cmd.Context(), s)
	if err != nil {
		return err
	}
	fp := engine.AnalyzeFragment(cmd.Context(), text)
	if !analyzeRhythmic {
		for i := range fp.Lines {
			fp.Lines[i].Stress = ""
		}
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fp); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := report.WriteFragment(out, fp, report.OptionsFor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv>",
		Short: "Import fragments from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	fragments, err := ingest.Load(args[0])
	if err != nil {
		if errors.Is(err, ingest.ErrMissingColumn) {
			logErrf("expected header: ID,Fragment,Attribution,Rhythmic,Context\n")
		}
		return err
	}
	logger.Info("parsed fragments", zap.String("path", args[0]), zap.Int("count", len(fragments)))
	return withDriver(cmd, "import", func(ctx context.Context, d *batch.Driver) (model.BatchStats, error) {
		return d.Import(ctx, fragments)
	})
}

func newReanalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reanalyze",
		Short: "Recompute prosody for every rhythmic fragment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDriver(cmd, "reanalyze", func(ctx context.Context, d *batch.Driver) (model.BatchStats, error) {
				return d.Reanalyze(ctx)
			})
		},
	}
}

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Resolve rhyme keys for lines that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDriver(cmd, "repair", func(ctx context.Context, d *batch.Driver) (model.BatchStats, error) {
				return d.Repair(ctx)
			})
		},
	}
}

func withDriver(cmd *cobra.Command, pass string, run func(context.Context, *batch.Driver) (model.BatchStats, error)) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cmd.Context(), s)
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	driver := batch.New(engine, st, s.delay, logger)
	stats, err := run(cmd.Context(), driver)
	if err != nil {
		return fmt.Errorf("%s failed: %w", pass, err)
	}
	out := cmd.OutOrStdout()
	if err := report.WriteStats(out, pass, stats, report.OptionsFor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write fragments as markdown files with YAML frontmatter",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output directory (default from config)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dir := s.vaultDir
	if exportOut != "" {
		dir = exportOut
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	fragments, err := st.ListFragments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list fragments: %w", err)
	}
	entries := make([]vault.Entry, 0, len(fragments))
	for _, f := range fragments {
		entry := vault.Entry{Fragment: f}
		if f.Rhythmic {
			rows, err := st.ListLines(ctx, f.ID)
			if err != nil {
				return fmt.Errorf("failed to list lines of %s: %w", f.ID, err)
			}
			fp := vault.ProsodyFromRows(f.FragmentType, rows)
			entry.Prosody = &fp
		}
		entries = append(entries, entry)
	}
	n, err := vault.Export(ctx, dir, entries)
	if err != nil {
		return fmt.Errorf("failed to export fragments: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d fragments to %s\n", n, dir); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog totals",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	c, err := st.Counts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count catalog: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(),
		"fragments  %d (%d rhythmic)\nlines      %d (%d without rhyme keys)\n",
		c.Fragments, c.Rhythmic, c.Lines, c.Unresolved)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Download the CMU pronouncing dictionary",
		Args:  cobra.NoArgs,
		RunE:  runDictCmd,
	}
	cmd.Flags().BoolVar(&dictForce, "force", false, "download even if the file exists")
	return cmd
}

func runDictCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger.Info("fetching pronunciation dictionary", zap.String("url", s.dictURL))
	fetch, err := cmudict.EnsureDictionary(cmd.Context(), s.dictURL, s.dictPath, dictForce)
	if err != nil {
		return err
	}
	dict, err := cmudict.Load(fetch.Path)
	if err != nil {
		return err
	}
	verb := "Downloaded"
	if fetch.Cached {
		verb = "Using cached"
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d words)\n", verb, fetch.Path, dict.Len()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Analyze lines interactively",
		Args:  cobra.NoArgs,
		RunE:  runInspectCmd,
	}
}

func runInspectCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cmd.Context(), s)
	if err != nil {
		return err
	}
	m := tui.NewModel(cmd.Context(), engine, describeCapabilities(engine.Capabilities()))
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildEngine wires the dictionary, dialect tool and completion client
// described by s. Missing optional backends are logged and skipped.
func buildEngine(ctx context.Context, s settings) (*prosody.Engine, error) {
	opts := prosody.Options{Logger: logger}

	if _, err := os.Stat(s.dictPath); err == nil {
		opts.Dictionary = cmudict.LazyFile(s.dictPath)
	} else if os.IsNotExist(err) {
		logger.Warn("pronunciation dictionary not found, run `lybrarian dict`", zap.String("path", s.dictPath))
	} else {
		return nil, fmt.Errorf("failed to stat dictionary: %w", err)
	}

	if s.dialect {
		if tool, ok := rhyme.DetectEspeak(s.dialectCmd, logger); ok {
			logger.Debug("using espeak for British rhymes", zap.String("path", tool.Path()))
			opts.Transcriber = tool
		}
	}

	if s.recovery {
		if s.apiKey == "" {
			logger.Info("rhyme recovery disabled: API key not set", zap.String("env", s.apiKeyEnv))
		} else {
			client, err := recovery.NewGenAIClient(ctx, s.apiKey, s.model)
			if err != nil {
				return nil, err
			}
			logger.Debug("rhyme recovery enabled", zap.String("client", client.Name()))
			opts.Recoverer = recovery.New(client, logger)
		}
	}
	return prosody.NewEngine(opts), nil
}

func describeCapabilities(c prosody.Capabilities) string {
	parts := []string{"dictionary"}
	if c.DialectTool {
		parts = append(parts, "espeak")
	}
	if c.Recovery {
		parts = append(parts, "recovery")
	}
	return strings.Join(parts, " + ")
}

func openStore(s settings) (*store.Store, error) {
	st, err := store.Open(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}
