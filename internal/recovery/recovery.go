// Package recovery asks a text-completion model for a rhyming stand-in when
// neither dialect rhyme key could be derived for a word.
package recovery

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/verte-zerg/lybrarian/internal/model"
	"github.com/verte-zerg/lybrarian/internal/normalize"
)

const (
	minSubstituteLen = 2
	maxSubstituteLen = 15
	edgeCutset       = "\"'`“”‘’.,;:!?()[]{}<>*_-"
)

// Completer sends a prompt to a text-completion model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor resolves rhyme keys for a normalized word.
type Extractor interface {
	Word(ctx context.Context, word string) model.RhymeKeyPair
}

// Result is the outcome of a recovery attempt.
type Result struct {
	Pair       model.RhymeKeyPair
	Outcome    model.RecoveryOutcome
	Substitute string
}

// Recoverer performs at most one completion request per call.
type Recoverer struct {
	client Completer
	logger *zap.Logger
}

// New returns a Recoverer. A nil client makes every attempt unavailable.
func New(client Completer, logger *zap.Logger) *Recoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recoverer{client: client, logger: logger}
}

// Available reports whether a completion client is configured.
func (r *Recoverer) Available() bool {
	return r != nil && r.client != nil
}

// Recover asks for a word rhyming with word and returns the substitute's
// rhyme keys. The returned pair describes a phonetic neighbour of word, not
// word itself.
func (r *Recoverer) Recover(ctx context.Context, word string, extract Extractor) Result {
	if !r.Available() || word == "" {
		return Result{Outcome: model.RecoveryUnavailable}
	}
	raw, err := r.client.Complete(ctx, Prompt(word))
	if err != nil {
		r.logger.Warn("rhyme recovery request failed", zap.String("word", word), zap.Error(err))
		return Result{Outcome: model.RecoveryExhausted}
	}
	sub, ok := ParseSubstitute(raw)
	if !ok {
		r.logger.Warn("rhyme recovery returned invalid word", zap.String("word", word), zap.String("response", raw))
		return Result{Outcome: model.RecoveryMalformed}
	}
	pair := extract.Word(ctx, normalize.Word(sub))
	if pair.Empty() {
		r.logger.Info("rhyme substitute did not resolve", zap.String("word", word), zap.String("substitute", sub))
		return Result{Outcome: model.RecoveryExhausted, Substitute: sub}
	}
	r.logger.Debug("rhyme recovered", zap.String("word", word), zap.String("substitute", sub))
	return Result{Pair: pair, Outcome: model.RecoveryRecovered, Substitute: sub}
}

// ParseSubstitute validates a model response: surrounding quotes and
// punctuation are trimmed, the first whitespace-delimited token is taken,
// and it must be 2 to 15 letters long.
func ParseSubstitute(raw string) (string, bool) {
	fields := strings.Fields(strings.Trim(strings.TrimSpace(raw), edgeCutset))
	if len(fields) == 0 {
		return "", false
	}
	word := strings.ToLower(strings.Trim(fields[0], edgeCutset))
	if len(word) < minSubstituteLen || len(word) > maxSubstituteLen {
		return "", false
	}
	if !isASCIILetters(word) {
		return "", false
	}
	return word, true
}

func isASCIILetters(word string) bool {
	for _, r := range word {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
