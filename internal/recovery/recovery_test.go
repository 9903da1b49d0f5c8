package recovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lybrarian/internal/model"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeExtractor map[string]model.RhymeKeyPair

func (f fakeExtractor) Word(_ context.Context, word string) model.RhymeKeyPair {
	return f[word]
}

func strPtr(s string) *string { return &s }

func TestParseSubstitute(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"light", "light", true},
		{"  \"Light.\"\n", "light", true},
		{"**bright**", "bright", true},
		{"night is a good rhyme", "night", true},
		{"'moon'", "moon", true},
		{"a", "", false},
		{"supercalifragilistic", "", false},
		{"l1ght", "", false},
		{"i'd", "", false},
		{"café", "", false},
		{"", "", false},
		{"...", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSubstitute(tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseSubstitute(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "ParseSubstitute(%q)", tt.raw)
	}
}

func TestPromptMentionsWordAndExamples(t *testing.T) {
	p := Prompt("zorblax")
	assert.Contains(t, p, `"zorblax"`)
	assert.Contains(t, p, "one-syllable")
	assert.Contains(t, p, "night -> light")
}

func TestRecoverAdoptsSubstituteKeys(t *testing.T) {
	client := &fakeCompleter{reply: "Light"}
	extract := fakeExtractor{"light": {US: strPtr("AY1 T"), GB: strPtr("AY1 T")}}
	r := New(client, nil)

	res := r.Recover(context.Background(), "zorblight", extract)
	assert.Equal(t, model.RecoveryRecovered, res.Outcome)
	assert.Equal(t, "light", res.Substitute)
	require.NotNil(t, res.Pair.US)
	assert.Equal(t, "AY1 T", *res.Pair.US)
	require.Len(t, client.prompts, 1)
	assert.True(t, strings.Contains(client.prompts[0], "zorblight"))
}

func TestRecoverMalformedResponse(t *testing.T) {
	client := &fakeCompleter{reply: "1234"}
	res := New(client, nil).Recover(context.Background(), "zorb", fakeExtractor{})
	assert.Equal(t, model.RecoveryMalformed, res.Outcome)
	assert.True(t, res.Pair.Empty())
	assert.Len(t, client.prompts, 1)
}

func TestRecoverSubstituteUnresolved(t *testing.T) {
	client := &fakeCompleter{reply: "blorp"}
	res := New(client, nil).Recover(context.Background(), "zorb", fakeExtractor{})
	assert.Equal(t, model.RecoveryExhausted, res.Outcome)
	assert.Equal(t, "blorp", res.Substitute)
	assert.True(t, res.Pair.Empty())
}

func TestRecoverClientError(t *testing.T) {
	client := &fakeCompleter{err: errors.New("rate limited")}
	res := New(client, nil).Recover(context.Background(), "zorb", fakeExtractor{})
	assert.Equal(t, model.RecoveryExhausted, res.Outcome)
	assert.Len(t, client.prompts, 1)
}

func TestRecoverWithoutClient(t *testing.T) {
	r := New(nil, nil)
	assert.False(t, r.Available())
	res := r.Recover(context.Background(), "zorb", fakeExtractor{})
	assert.Equal(t, model.RecoveryUnavailable, res.Outcome)
}

func TestNewGenAIClientRequiresKey(t *testing.T) {
	_, err := NewGenAIClient(context.Background(), "", "")
	assert.Error(t, err)
}
