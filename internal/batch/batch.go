// Package batch drives catalog-wide prosody passes: import, full
// re-analysis and targeted rhyme repair.
package batch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/lybrarian/internal/model"
	"github.com/verte-zerg/lybrarian/internal/recovery"
)

// DefaultDelay follows every unit of work that issued a recovery request.
const DefaultDelay = 500 * time.Millisecond

// Analyzer produces prosody for fragments and rhyme keys for single lines.
type Analyzer interface {
	AnalyzeFragment(ctx context.Context, text string) model.FragmentProsody
	ResolveRhyme(ctx context.Context, text string) recovery.Result
}

// Catalog is the persistence surface used by the driver.
type Catalog interface {
	UpsertFragment(ctx context.Context, f model.Fragment) error
	ListFragments(ctx context.Context) ([]model.Fragment, error)
	ReplaceLines(ctx context.Context, fragmentID string, lines []model.LineRow) error
	ListUnresolvedLines(ctx context.Context) ([]model.LineRow, error)
	PatchRhymes(ctx context.Context, fragmentID string, lineNumber int, pair model.RhymeKeyPair) error
}

// Driver processes fragments one at a time.
type Driver struct {
	analyzer Analyzer
	catalog  Catalog
	delay    time.Duration
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// New returns a Driver. A negative delay selects DefaultDelay.
func New(analyzer Analyzer, catalog Catalog, delay time.Duration, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Driver{
		analyzer: analyzer,
		catalog:  catalog,
		delay:    delay,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Import stores each fragment and its analyzed lines. Store failures are
// logged and counted; only context cancellation stops the pass.
func (d *Driver) Import(ctx context.Context, fragments []model.Fragment) (model.BatchStats, error) {
	var stats model.BatchStats
	for i, f := range fragments {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		d.logger.Info("importing fragment",
			zap.Int("index", i+1), zap.Int("total", len(fragments)), zap.String("id", f.ID))
		if err := d.analyzeAndStore(ctx, f, &stats); err != nil {
			return stats, err
		}
	}
	d.logSummary("import", stats)
	return stats, nil
}

// Reanalyze rebuilds the lines of every rhythmic fragment from its content.
// Non-rhythmic fragments are skipped.
func (d *Driver) Reanalyze(ctx context.Context) (model.BatchStats, error) {
	var stats model.BatchStats
	fragments, err := d.catalog.ListFragments(ctx)
	if err != nil {
		return stats, err
	}
	for i, f := range fragments {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if !f.Rhythmic {
			stats.Skipped++
			d.logger.Debug("skipping non-rhythmic fragment", zap.String("id", f.ID))
			continue
		}
		d.logger.Info("reanalyzing fragment",
			zap.Int("index", i+1), zap.Int("total", len(fragments)), zap.String("id", f.ID))
		if err := d.analyzeAndStore(ctx, f, &stats); err != nil {
			return stats, err
		}
	}
	d.logSummary("reanalyze", stats)
	return stats, nil
}

// Repair resolves rhyme keys for lines where both are missing and patches
// only the rhyme columns.
func (d *Driver) Repair(ctx context.Context) (model.BatchStats, error) {
	var stats model.BatchStats
	lines, err := d.catalog.ListUnresolvedLines(ctx)
	if err != nil {
		return stats, err
	}
	seen := map[string]bool{}
	for _, row := range lines {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if !seen[row.FragmentID] {
			seen[row.FragmentID] = true
			stats.Fragments++
		}
		stats.Lines++
		res := d.analyzer.ResolveRhyme(ctx, row.Text)
		tally(&stats, res.Pair, res.Outcome)
		if !res.Pair.Empty() {
			if err := d.catalog.PatchRhymes(ctx, row.FragmentID, row.LineNumber, res.Pair); err != nil {
				d.logger.Error("failed to patch rhymes",
					zap.String("id", row.FragmentID), zap.Int("line", row.LineNumber), zap.Error(err))
				stats.Failed++
			} else {
				d.logger.Info("repaired line",
					zap.String("id", row.FragmentID), zap.Int("line", row.LineNumber),
					zap.String("substitute", res.Substitute))
			}
		}
		if queried(res.Outcome) {
			if err := d.pause(ctx); err != nil {
				return stats, err
			}
		}
	}
	d.logSummary("repair", stats)
	return stats, nil
}

func (d *Driver) analyzeAndStore(ctx context.Context, f model.Fragment, stats *model.BatchStats) error {
	fp := d.analyzer.AnalyzeFragment(ctx, f.Content)
	f.FragmentType = fp.FragmentType
	stats.Fragments++
	stats.Lines += len(fp.Lines)
	networked := false
	for _, lp := range fp.Lines {
		tally(stats, lp.Rhymes(), lp.Recovery)
		networked = networked || lp.QueriedModel()
	}

	if err := d.catalog.UpsertFragment(ctx, f); err != nil {
		d.logger.Error("failed to store fragment", zap.String("id", f.ID), zap.Error(err))
		stats.Failed++
	} else if err := d.catalog.ReplaceLines(ctx, f.ID, LineRows(f.ID, fp, f.Rhythmic)); err != nil {
		d.logger.Error("failed to store lines", zap.String("id", f.ID), zap.Error(err))
		stats.Failed++
	}

	if networked {
		return d.pause(ctx)
	}
	return nil
}

// LineRows converts fragment prosody to persisted rows. Stress is NULL for
// non-rhythmic fragments.
func LineRows(fragmentID string, fp model.FragmentProsody, rhythmic bool) []model.LineRow {
	rows := make([]model.LineRow, 0, len(fp.Lines))
	for _, lp := range fp.Lines {
		row := model.LineRow{
			FragmentID: fragmentID,
			LineNumber: lp.Line,
			Text:       lp.Text,
			Syllables:  lp.Syllables,
			EndRhymeUS: lp.EndRhymeUS,
			EndRhymeGB: lp.EndRhymeGB,
		}
		if rhythmic {
			stress := lp.Stress
			row.Stress = &stress
		}
		rows = append(rows, row)
	}
	return rows
}

func tally(stats *model.BatchStats, pair model.RhymeKeyPair, outcome model.RecoveryOutcome) {
	switch {
	case !pair.Empty() && outcome == model.RecoveryRecovered:
		stats.Recovered++
	case !pair.Empty():
		stats.Resolved++
	default:
		stats.Unresolved++
		if outcome == model.RecoveryMalformed {
			stats.Malformed++
		}
	}
}

func queried(outcome model.RecoveryOutcome) bool {
	return model.LineProsody{Recovery: outcome}.QueriedModel()
}

func (d *Driver) pause(ctx context.Context) error {
	if d.delay <= 0 {
		return nil
	}
	return d.sleep(ctx, d.delay)
}

func (d *Driver) logSummary(pass string, stats model.BatchStats) {
	d.logger.Info("batch complete",
		zap.String("pass", pass),
		zap.Int("fragments", stats.Fragments),
		zap.Int("skipped", stats.Skipped),
		zap.Int("lines", stats.Lines),
		zap.Int("resolved", stats.Resolved),
		zap.Int("recovered", stats.Recovered),
		zap.Int("unresolved", stats.Unresolved),
		zap.Int("malformed", stats.Malformed),
		zap.Int("failed", stats.Failed),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
