// Package rhyme extracts end-rhyme keys for lines in American and British
// English.
package rhyme

import (
	"context"

	"go.uber.org/zap"

	"github.com/verte-zerg/lybrarian/internal/cmudict"
	"github.com/verte-zerg/lybrarian/internal/model"
	"github.com/verte-zerg/lybrarian/internal/normalize"
)

// BritishLang is the language tag passed to dialect transcribers.
const BritishLang = "en-gb"

// Dictionary looks up the primary pronunciation of a normalized word.
type Dictionary interface {
	Primary(word string) (cmudict.Pronunciation, bool)
}

// Transcriber produces a dialect-specific phonetic transcription of a word.
// It reports false when no transcription is available.
type Transcriber interface {
	Transcribe(ctx context.Context, word, lang string) (string, bool)
}

// Extractor derives rhyme key pairs. The dictionary and the transcriber are
// both optional.
type Extractor struct {
	dict   Dictionary
	tool   Transcriber
	logger *zap.Logger
}

// NewExtractor returns an Extractor. A nil logger discards output.
func NewExtractor(dict Dictionary, tool Transcriber, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{dict: dict, tool: tool, logger: logger}
}

// Line returns the rhyme keys of the line's last word.
func (e *Extractor) Line(ctx context.Context, text string) model.RhymeKeyPair {
	return e.Word(ctx, normalize.LastWord(text))
}

// Word returns the rhyme keys of a normalized word.
func (e *Extractor) Word(ctx context.Context, word string) model.RhymeKeyPair {
	if word == "" {
		return model.RhymeKeyPair{}
	}
	var pair model.RhymeKeyPair
	if us, ok := e.american(word); ok {
		pair.US = &us
	}
	if gb, ok := e.british(ctx, word, pair.US); ok {
		pair.GB = &gb
	}
	return pair
}

func (e *Extractor) american(word string) (string, bool) {
	if e.dict == nil {
		return "", false
	}
	p, ok := e.dict.Primary(word)
	if !ok {
		return "", false
	}
	key := p.RhymingPart().String()
	return key, key != ""
}

func (e *Extractor) british(ctx context.Context, word string, us *string) (string, bool) {
	if e.tool != nil {
		if out, ok := e.tool.Transcribe(ctx, word, BritishLang); ok && out != "" && out != word {
			return out, true
		}
		e.logger.Debug("british transcription unavailable, using substitution table", zap.String("word", word))
	}
	if us == nil {
		return "", false
	}
	gb := BritishFromAmerican(*us)
	return gb, gb != ""
}
