package batch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/lybrarian/internal/cmudict"
	"github.com/verte-zerg/lybrarian/internal/model"
	"github.com/verte-zerg/lybrarian/internal/prosody"
	"github.com/verte-zerg/lybrarian/internal/recovery"
	"github.com/verte-zerg/lybrarian/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubCompleter struct {
	reply string
	calls int
}

func (s *stubCompleter) Complete(context.Context, string) (string, error) {
	s.calls++
	return s.reply, nil
}

type failingCatalog struct {
	*store.Store
	failID string
}

func (f failingCatalog) UpsertFragment(ctx context.Context, frag model.Fragment) error {
	if frag.ID == f.failID {
		return errors.New("disk full")
	}
	return f.Store.UpsertFragment(ctx, frag)
}

func testDict() *cmudict.Lazy {
	return cmudict.NewLazy(func() (*cmudict.Dictionary, error) {
		return cmudict.New(map[string][]cmudict.Pronunciation{
			"walk":  {{"W", "AO1", "K"}},
			"into":  {{"IH1", "N", "T", "UW0"}},
			"the":   {{"DH", "AH0"}},
			"night": {{"N", "AY1", "T"}},
			"light": {{"L", "AY1", "T"}},
		}), nil
	})
}

func newEngine(client recovery.Completer) *prosody.Engine {
	opts := prosody.Options{Dictionary: testDict()}
	if client != nil {
		opts.Recoverer = recovery.New(client, nil)
	}
	return prosody.NewEngine(opts)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return s
}

func newDriver(a Analyzer, c Catalog, sleeps *int) *Driver {
	d := New(a, c, 10*time.Millisecond, nil)
	d.sleep = func(context.Context, time.Duration) error {
		*sleeps++
		return nil
	}
	return d
}

func sampleFragments() []model.Fragment {
	return []model.Fragment{
		{ID: "a", Content: "I walk into the night\nYou chase the light", Source: "JC", Rhythmic: true},
		{ID: "b", Content: "into the zorblax", Source: "JC", Rhythmic: true},
		{ID: "c", Content: "walk into the night", Source: "JC"},
	}
}

func TestImportStoresLinesAndStats(t *testing.T) {
	s := openStore(t)
	client := &stubCompleter{reply: "light"}
	sleeps := 0
	d := newDriver(newEngine(client), s, &sleeps)

	stats, err := d.Import(context.Background(), sampleFragments())
	require.NoError(t, err)
	assert.Equal(t, model.BatchStats{Fragments: 3, Lines: 4, Resolved: 3, Recovered: 1}, stats)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, sleeps, "delay only after the fragment that queried the model")

	frags, err := s.ListFragments(context.Background())
	require.NoError(t, err)
	require.Len(t, frags, 3)
	assert.Equal(t, model.Couplet, frags[0].FragmentType)

	lines, err := s.ListLines(context.Background(), "c")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].Stress, "non-rhythmic fragments store NULL stress")
	require.NotNil(t, lines[0].EndRhymeUS)

	lines, err = s.ListLines(context.Background(), "b")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Stress)
	require.NotNil(t, lines[0].EndRhymeUS)
	assert.Equal(t, "AY1 T", *lines[0].EndRhymeUS)
}

func TestImportCountsStoreFailures(t *testing.T) {
	s := openStore(t)
	sleeps := 0
	d := newDriver(newEngine(nil), failingCatalog{Store: s, failID: "b"}, &sleeps)

	stats, err := d.Import(context.Background(), sampleFragments())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Unresolved)
	assert.Zero(t, sleeps)

	frags, err := s.ListFragments(context.Background())
	require.NoError(t, err)
	assert.Len(t, frags, 2)
}

func TestImportStopsOnCancel(t *testing.T) {
	s := openStore(t)
	sleeps := 0
	d := newDriver(newEngine(nil), s, &sleeps)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Import(ctx, sampleFragments())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReanalyzeSkipsNonRhythmic(t *testing.T) {
	s := openStore(t)
	sleeps := 0
	_, err := newDriver(newEngine(nil), s, &sleeps).Import(context.Background(), sampleFragments())
	require.NoError(t, err)

	stats, err := newDriver(newEngine(nil), s, &sleeps).Reanalyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Fragments)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 3, stats.Lines)
	assert.Equal(t, 1, stats.Unresolved)

	lines, err := s.ListLines(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestRepairPatchesOnlyRhymes(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sleeps := 0
	_, err := newDriver(newEngine(nil), s, &sleeps).Import(ctx, sampleFragments())
	require.NoError(t, err)
	before, err := s.ListLines(ctx, "b")
	require.NoError(t, err)
	require.Len(t, before, 1)
	require.Nil(t, before[0].EndRhymeUS)

	client := &stubCompleter{reply: "Light."}
	stats, err := newDriver(newEngine(client), s, &sleeps).Repair(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStats{Fragments: 1, Lines: 1, Recovered: 1}, stats)
	assert.Equal(t, 1, sleeps)

	after, err := s.ListLines(ctx, "b")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].Syllables, after[0].Syllables)
	assert.Equal(t, before[0].Stress, after[0].Stress)
	require.NotNil(t, after[0].EndRhymeUS)
	assert.Equal(t, "AY1 T", *after[0].EndRhymeUS)

	unresolved, err := s.ListUnresolvedLines(ctx)
	require.NoError(t, err)
	assert.Empty(t, unresolved)
}

func TestRepairMalformedResponse(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	sleeps := 0
	_, err := newDriver(newEngine(nil), s, &sleeps).Import(ctx, sampleFragments())
	require.NoError(t, err)

	stats, err := newDriver(newEngine(&stubCompleter{reply: "42"}), s, &sleeps).Repair(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStats{Fragments: 1, Lines: 1, Unresolved: 1, Malformed: 1}, stats)

	unresolved, err := s.ListUnresolvedLines(ctx)
	require.NoError(t, err)
	assert.Len(t, unresolved, 1)
}

func TestLineRows(t *testing.T) {
	us := "AY1 T"
	fp := model.FragmentProsody{Lines: []model.LineProsody{
		{Line: 1, Text: "night", Syllables: 1, Stress: "1", EndRhymeUS: &us},
	}}
	rows := LineRows("x", fp, true)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Stress)
	assert.Equal(t, "1", *rows[0].Stress)
	assert.Equal(t, "x", rows[0].FragmentID)

	rows = LineRows("x", fp, false)
	assert.Nil(t, rows[0].Stress)
}

func TestSleepContextHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
