// Package cmudict loads and queries the CMU pronouncing dictionary.
package cmudict

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/lybrarian/internal/normalize"
)

// ErrEmptyDictionary is returned when a dictionary source holds no entries.
var ErrEmptyDictionary = errors.New("pronunciation dictionary is empty")

// Pronunciation is an ordered list of ARPAbet phonemes. Vowels carry a
// trailing stress digit: 0 none, 1 primary, 2 secondary.
type Pronunciation []string

// String joins the phonemes with single spaces.
func (p Pronunciation) String() string {
	return strings.Join(p, " ")
}

// Dictionary maps normalized words to their pronunciations. It is never
// mutated after construction and is safe for concurrent reads.
type Dictionary struct {
	entries map[string][]Pronunciation
}

// New builds a dictionary from headwords and pronunciations. Headwords are
// normalized the same way lookup keys are.
func New(entries map[string][]Pronunciation) *Dictionary {
	b := newBuilder()
	for word, prons := range entries {
		for _, p := range prons {
			b.add(word, p)
		}
	}
	return b.dict()
}

// Parse reads CMUdict formatted text. Both the classic upper-case layout
// with ";;;" comments and the cmusphinx layout with "#" comments and
// "word(2)" variants are accepted.
func Parse(r io.Reader) (*Dictionary, error) {
	b := newBuilder()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		phones := make(Pronunciation, 0, len(fields)-1)
		for _, f := range fields[1:] {
			if strings.HasPrefix(f, "#") {
				break
			}
			phones = append(phones, strings.ToUpper(f))
		}
		if len(phones) == 0 {
			continue
		}
		b.add(stripVariant(fields[0]), phones)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	d := b.dict()
	if d.Len() == 0 {
		return nil, ErrEmptyDictionary
	}
	return d, nil
}

// Load parses the dictionary file at path.
func Load(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Best-effort close for read-only dictionary.
		_ = file.Close()
	}()
	return Parse(file)
}

// Lookup returns every pronunciation of a normalized word in source order.
func (d *Dictionary) Lookup(word string) ([]Pronunciation, bool) {
	if d == nil || word == "" {
		return nil, false
	}
	prons, ok := d.entries[word]
	return prons, ok
}

// Primary returns the first pronunciation of a normalized word.
func (d *Dictionary) Primary(word string) (Pronunciation, bool) {
	prons, ok := d.Lookup(word)
	if !ok || len(prons) == 0 {
		return nil, false
	}
	return prons[0], true
}

// Len returns the number of distinct lookup keys.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

func stripVariant(head string) string {
	if i := strings.IndexByte(head, '('); i > 0 && strings.HasSuffix(head, ")") {
		return head[:i]
	}
	return head
}

// builder indexes headwords under their normalized key. A headword that is
// already its own key ("hell") wins over one that only normalizes to it
// ("he'll").
type builder struct {
	entries map[string][]Pronunciation
	exact   map[string]bool
}

func newBuilder() *builder {
	return &builder{
		entries: map[string][]Pronunciation{},
		exact:   map[string]bool{},
	}
}

func (b *builder) add(head string, p Pronunciation) {
	key := normalize.Word(head)
	if key == "" || len(p) == 0 {
		return
	}
	isExact := strings.ToLower(head) == key
	switch {
	case isExact && !b.exact[key]:
		b.exact[key] = true
		b.entries[key] = []Pronunciation{clonePron(p)}
	case isExact == b.exact[key]:
		b.entries[key] = append(b.entries[key], clonePron(p))
	}
}

func (b *builder) dict() *Dictionary {
	return &Dictionary{entries: b.entries}
}

func clonePron(p Pronunciation) Pronunciation {
	return append(Pronunciation(nil), p...)
}
