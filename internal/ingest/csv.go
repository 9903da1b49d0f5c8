// Package ingest reads fragment spreadsheets exported as CSV.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/lybrarian/internal/model"
)

// DefaultSource is the attribution used when a row has none.
const DefaultSource = "JC"

// ErrMissingColumn is returned when the header lacks the Fragment column.
var ErrMissingColumn = errors.New("missing required column")

const (
	colID          = "id"
	colFragment    = "fragment"
	colAttribution = "attribution"
	colRhythmic    = "rhythmic"
	colContext     = "context"
)

// Load parses the CSV file at path.
func Load(path string) ([]model.Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close on read path.
			_ = cerr
		}
	}()
	return Parse(f, time.Now())
}

// Parse reads fragments from CSV with the header ID, Fragment, Attribution,
// Rhythmic, Context in any order and case. Rows with empty fragment text
// are dropped; rows without an ID get a random UUID.
func Parse(r io.Reader, now time.Time) ([]model.Fragment, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, "Fragment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	if _, ok := cols[colFragment]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, "Fragment")
	}

	var fragments []model.Fragment
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		text := field(colFragment)
		if text == "" {
			continue
		}
		f := model.Fragment{
			ID:        field(colID),
			Content:   text,
			Source:    field(colAttribution),
			Context:   field(colContext),
			Rhythmic:  strings.EqualFold(field(colRhythmic), "y"),
			CreatedAt: now,
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.Source == "" {
			f.Source = DefaultSource
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}
