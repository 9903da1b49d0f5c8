// Package vault writes fragments as markdown files with YAML frontmatter.
package vault

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/lybrarian/internal/model"
)

// DefaultSource is written when a fragment has no attribution.
const DefaultSource = "JC"

const writeConcurrency = 4

// Entry is a fragment and, for rhythmic fragments, its prosody.
type Entry struct {
	Fragment model.Fragment
	Prosody  *model.FragmentProsody
}

// Frontmatter is the YAML header of a fragment file.
type Frontmatter struct {
	ID           string              `yaml:"id"`
	Created      string              `yaml:"created"`
	Source       string              `yaml:"source"`
	Rhythmic     bool                `yaml:"rhythmic"`
	Tags         []string            `yaml:"tags"`
	ContextNote  string              `yaml:"context_note"`
	Lines        int                 `yaml:"lines,omitempty"`
	Prosody      []model.LineProsody `yaml:"prosody,omitempty"`
	FragmentType model.FragmentType  `yaml:"fragment_type,omitempty"`
}

// NewFrontmatter builds the header for e. Prosody fields are set only for
// rhythmic fragments.
func NewFrontmatter(e Entry) Frontmatter {
	f := e.Fragment
	fm := Frontmatter{
		ID:          f.ID,
		Created:     f.CreatedAt.Format(time.RFC3339),
		Source:      f.Source,
		Rhythmic:    f.Rhythmic,
		Tags:        []string{},
		ContextNote: f.Context,
	}
	if fm.Source == "" {
		fm.Source = DefaultSource
	}
	if f.Rhythmic && e.Prosody != nil {
		fm.Lines = e.Prosody.LineCount
		fm.Prosody = e.Prosody.Lines
		fm.FragmentType = e.Prosody.FragmentType
	}
	return fm
}

// Render returns the markdown document for e.
func Render(e Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewFrontmatter(e)); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter for %s: %w", e.Fragment.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n\n")
	buf.WriteString(e.Fragment.Content)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Path returns the file path of fragment id under dir.
func Path(dir, id string) string {
	return filepath.Join(dir, id+".md")
}

// Export writes one file per entry into dir, a few at a time, and returns
// the number written. The first failure cancels remaining writes.
func Export(ctx context.Context, dir string, entries []Entry) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(writeConcurrency)
	for _, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := Render(e)
			if err != nil {
				return err
			}
			return writeFile(Path(dir, e.Fragment.ID), data)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fragment-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		if rerr := os.Remove(tmpPath); rerr != nil && !os.IsNotExist(rerr) {
			// Best-effort cleanup.
			_ = rerr
		}
	}
	if _, err := tmp.Write(data); err != nil {
		if cerr := tmp.Close(); cerr != nil {
			// Best-effort close on write failure.
			_ = cerr
		}
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// ProsodyFromRows rebuilds fragment prosody from stored line rows.
func ProsodyFromRows(kind model.FragmentType, rows []model.LineRow) model.FragmentProsody {
	lines := make([]model.LineProsody, 0, len(rows))
	for _, row := range rows {
		lp := model.LineProsody{
			Line:       row.LineNumber,
			Text:       row.Text,
			Syllables:  row.Syllables,
			EndRhymeUS: row.EndRhymeUS,
			EndRhymeGB: row.EndRhymeGB,
		}
		if row.Stress != nil {
			lp.Stress = *row.Stress
		}
		lines = append(lines, lp)
	}
	return model.FragmentProsody{LineCount: len(lines), FragmentType: kind, Lines: lines}
}
