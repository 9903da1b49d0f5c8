// Package prosody assembles per-line phonetic signatures and classifies
// fragments by their line count.
package prosody

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/verte-zerg/lybrarian/internal/cmudict"
	"github.com/verte-zerg/lybrarian/internal/model"
	"github.com/verte-zerg/lybrarian/internal/normalize"
	"github.com/verte-zerg/lybrarian/internal/recovery"
	"github.com/verte-zerg/lybrarian/internal/rhyme"
	"github.com/verte-zerg/lybrarian/internal/stress"
	"github.com/verte-zerg/lybrarian/internal/syllable"
)

// Capabilities describes which optional backends the engine can use. It is
// resolved once when the engine is built.
type Capabilities struct {
	DialectTool bool
	Recovery    bool
}

// Options configures an Engine. Every field is optional.
type Options struct {
	Dictionary  *cmudict.Lazy
	Transcriber rhyme.Transcriber
	Recoverer   *recovery.Recoverer
	Logger      *zap.Logger
}

// Engine runs the line pipeline: syllables, stress, rhyme keys and at most
// one recovery attempt.
type Engine struct {
	dict   *cmudict.Lazy
	tool   rhyme.Transcriber
	rec    *recovery.Recoverer
	caps   Capabilities
	logger *zap.Logger

	dictOnce sync.Once
	words    *cmudict.Dictionary
	extract  *rhyme.Extractor
}

// NewEngine returns an Engine for opts.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		dict:   opts.Dictionary,
		tool:   opts.Transcriber,
		rec:    opts.Recoverer,
		logger: logger,
	}
	e.caps = Capabilities{
		DialectTool: e.tool != nil,
		Recovery:    e.rec.Available(),
	}
	logger.Debug("prosody engine ready",
		zap.Bool("dialect_tool", e.caps.DialectTool),
		zap.Bool("recovery", e.caps.Recovery),
	)
	return e
}

// Capabilities returns the backends resolved at construction.
func (e *Engine) Capabilities() Capabilities {
	return e.caps
}

// warm loads the dictionary on first use. A load failure leaves the engine
// on heuristics only.
func (e *Engine) warm() {
	e.dictOnce.Do(func() {
		if e.dict != nil {
			d, err := e.dict.Get()
			if err != nil {
				e.logger.Warn("pronunciation dictionary unavailable, using heuristics", zap.Error(err))
			} else {
				e.words = d
			}
		}
		e.extract = rhyme.NewExtractor(e.words, e.tool, e.logger)
	})
}

// AnalyzeLine returns the prosody of one line. It never fails: missing
// backends degrade to heuristics and unresolved rhymes stay nil.
func (e *Engine) AnalyzeLine(ctx context.Context, text string) model.LineProsody {
	e.warm()
	text = strings.TrimSpace(text)
	res := e.ResolveRhyme(ctx, text)
	return model.LineProsody{
		Text:       text,
		Syllables:  syllable.Line(text),
		Stress:     stress.Line(e.words, text),
		EndRhymeUS: res.Pair.US,
		EndRhymeGB: res.Pair.GB,
		Recovery:   res.Outcome,
		Substitute: res.Substitute,
	}
}

// ResolveRhyme returns the rhyme keys of the line's last word, asking the
// recoverer once when neither dialect key could be derived.
func (e *Engine) ResolveRhyme(ctx context.Context, text string) recovery.Result {
	e.warm()
	word := normalize.LastWord(text)
	pair := e.extract.Word(ctx, word)
	if !pair.Empty() || word == "" {
		return recovery.Result{Pair: pair}
	}
	if !e.caps.Recovery {
		return recovery.Result{Outcome: model.RecoveryUnavailable}
	}
	return e.rec.Recover(ctx, word, e.extract)
}

// AnalyzeFragment analyzes every non-empty line of text in order.
func (e *Engine) AnalyzeFragment(ctx context.Context, text string) model.FragmentProsody {
	lines := SplitLines(text)
	out := make([]model.LineProsody, 0, len(lines))
	for i, line := range lines {
		lp := e.AnalyzeLine(ctx, line)
		lp.Line = i + 1
		out = append(out, lp)
	}
	return model.FragmentProsody{
		LineCount:    len(out),
		FragmentType: Classify(len(out)),
		Lines:        out,
	}
}
