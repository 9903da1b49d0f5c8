package rhyme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lybrarian/internal/cmudict"
)

type fakeTool struct {
	out   map[string]string
	calls int
}

func (f *fakeTool) Transcribe(_ context.Context, word, lang string) (string, bool) {
	f.calls++
	if lang != BritishLang {
		return "", false
	}
	v, ok := f.out[word]
	return v, ok
}

func testDict() *cmudict.Dictionary {
	return cmudict.New(map[string][]cmudict.Pronunciation{
		"night":  {{"N", "AY1", "T"}},
		"dance":  {{"D", "AE1", "N", "S"}},
		"heart":  {{"HH", "AA1", "R", "T"}},
		"never":  {{"N", "EH1", "V", "ER0"}},
		"star":   {{"S", "T", "AA1", "R"}},
		"carry":  {{"K", "AE1", "R", "IY0"}},
		"tomato": {{"T", "AH0", "M", "EY1", "T", "OW2"}},
	})
}

func TestAmericanKeyIsRhymingPart(t *testing.T) {
	e := NewExtractor(testDict(), nil, nil)
	pair := e.Line(context.Background(), "Into the night")
	require.NotNil(t, pair.US)
	assert.Equal(t, "AY1 T", *pair.US)

	pair = e.Line(context.Background(), "I say tomato")
	require.NotNil(t, pair.US)
	assert.Equal(t, "OW2", *pair.US)
}

func TestBritishFallbackFromAmerican(t *testing.T) {
	e := NewExtractor(testDict(), nil, nil)
	tests := []struct {
		line, us, gb string
	}{
		{"let's dance", "AE1 N S", "AA1 N S"},
		{"my heart", "AA1 R T", "AO1 T"},
		{"never", "EH1 V ER0", "EH1 V AH0"},
		{"a star", "AA1 R", "AO1"},
		{"carry", "AE1 R IY0", "AA1 R IY0"},
		{"night", "AY1 T", "AY1 T"},
	}
	for _, tt := range tests {
		pair := e.Line(context.Background(), tt.line)
		require.NotNil(t, pair.US, tt.line)
		require.NotNil(t, pair.GB, tt.line)
		assert.Equal(t, tt.us, *pair.US, tt.line)
		assert.Equal(t, tt.gb, *pair.GB, tt.line)
	}
}

func TestBritishFromAmericanDoesNotChainRules(t *testing.T) {
	assert.Equal(t, "AA1 N S", BritishFromAmerican("AE1 N S"))
}

func TestBritishFromAmericanIsDeterministic(t *testing.T) {
	first := BritishFromAmerican("AA1 R T")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, BritishFromAmerican("AA1 R T"))
	}
}

func TestDialectToolPreferred(t *testing.T) {
	tool := &fakeTool{out: map[string]string{"dance": "dˈɑːns"}}
	e := NewExtractor(testDict(), tool, nil)
	pair := e.Line(context.Background(), "dance")
	require.NotNil(t, pair.GB)
	assert.Equal(t, "dˈɑːns", *pair.GB)
	assert.Equal(t, "AE1 N S", *pair.US)
}

func TestDialectToolEchoIsFailure(t *testing.T) {
	tool := &fakeTool{out: map[string]string{"dance": "dance"}}
	e := NewExtractor(testDict(), tool, nil)
	pair := e.Line(context.Background(), "dance")
	require.NotNil(t, pair.GB)
	assert.Equal(t, "AA1 N S", *pair.GB)
}

func TestDialectToolCanResolveUnknownWord(t *testing.T) {
	tool := &fakeTool{out: map[string]string{"zorblax": "zˈɔːblaks"}}
	e := NewExtractor(testDict(), tool, nil)
	pair := e.Line(context.Background(), "the zorblax")
	assert.Nil(t, pair.US)
	require.NotNil(t, pair.GB)
	assert.Equal(t, "zˈɔːblaks", *pair.GB)
}

func TestUnknownWordWithoutToolIsEmpty(t *testing.T) {
	e := NewExtractor(testDict(), nil, nil)
	pair := e.Line(context.Background(), "the zorblax")
	assert.True(t, pair.Empty())
}

func TestDegenerateLineHasNoKeys(t *testing.T) {
	tool := &fakeTool{}
	e := NewExtractor(testDict(), tool, nil)
	pair := e.Line(context.Background(), "-- 42 --")
	assert.True(t, pair.Empty())
	assert.Equal(t, 0, tool.calls)
}

func TestNilDictionary(t *testing.T) {
	e := NewExtractor(nil, nil, nil)
	assert.True(t, e.Line(context.Background(), "night").Empty())
}

func TestDetectEspeakMissingCommand(t *testing.T) {
	_, ok := DetectEspeak("definitely-not-an-espeak-binary", nil)
	assert.False(t, ok)
}
