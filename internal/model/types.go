// Package model defines shared data structures.
package model

import "time"

// FragmentType is the coarse shape of a fragment derived from its line count.
type FragmentType string

// Fragment shapes.
const (
	SingleLine FragmentType = "single-line"
	Couplet    FragmentType = "couplet"
	Quatrain   FragmentType = "quatrain"
	Verse      FragmentType = "verse"
	Stanza     FragmentType = "stanza"
)

// RecoveryOutcome records what the rhyme recovery fallback did for a line.
type RecoveryOutcome string

// Recovery outcomes. An empty outcome means recovery was not needed.
const (
	RecoveryNone        RecoveryOutcome = ""
	RecoveryRecovered   RecoveryOutcome = "recovered"
	RecoveryExhausted   RecoveryOutcome = "exhausted"
	RecoveryMalformed   RecoveryOutcome = "malformed"
	RecoveryUnavailable RecoveryOutcome = "unavailable"
)

// RhymeKeyPair holds the end-rhyme fingerprint of a word in both dialects.
// Either field may be nil independently.
type RhymeKeyPair struct {
	US *string `json:"us"`
	GB *string `json:"gb"`
}

// Empty reports whether neither dialect key is set.
func (p RhymeKeyPair) Empty() bool {
	return p.US == nil && p.GB == nil
}

// LineProsody is the phonetic signature of one line.
type LineProsody struct {
	Line       int             `json:"line" yaml:"line"`
	Text       string          `json:"text" yaml:"text"`
	Syllables  int             `json:"syllables" yaml:"syllables"`
	Stress     string          `json:"stress" yaml:"stress"`
	EndRhymeUS *string         `json:"end_rhyme_us" yaml:"end_rhyme_us"`
	EndRhymeGB *string         `json:"end_rhyme_gb" yaml:"end_rhyme_gb"`
	Recovery   RecoveryOutcome `json:"recovery,omitempty" yaml:"-"`
	Substitute string          `json:"substitute,omitempty" yaml:"-"`
}

// Rhymes returns the line's rhyme keys as a pair.
func (l LineProsody) Rhymes() RhymeKeyPair {
	return RhymeKeyPair{US: l.EndRhymeUS, GB: l.EndRhymeGB}
}

// QueriedModel reports whether analysing the line issued a recovery request.
func (l LineProsody) QueriedModel() bool {
	switch l.Recovery {
	case RecoveryRecovered, RecoveryExhausted, RecoveryMalformed:
		return true
	default:
		return false
	}
}

// FragmentProsody is the per-line analysis of a whole fragment.
type FragmentProsody struct {
	LineCount    int           `json:"line_count" yaml:"lines"`
	FragmentType FragmentType  `json:"fragment_type" yaml:"fragment_type"`
	Lines        []LineProsody `json:"lines" yaml:"prosody"`
}

// Fragment is a cataloged unit of lyric text.
type Fragment struct {
	ID           string
	Content      string
	Source       string
	Context      string
	Rhythmic     bool
	FragmentType FragmentType
	CreatedAt    time.Time
}

// LineRow is a persisted line record keyed by fragment id and line number.
type LineRow struct {
	FragmentID string
	LineNumber int
	Text       string
	Syllables  int
	Stress     *string
	EndRhymeUS *string
	EndRhymeGB *string
}

// BatchStats aggregates the outcome of a batch pass.
type BatchStats struct {
	Fragments  int
	Skipped    int
	Lines      int
	Resolved   int
	Recovered  int
	Unresolved int
	Malformed  int
	Failed     int
}
