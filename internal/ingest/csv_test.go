package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	input := "ID,Fragment,Attribution,Rhythmic,Context\n" +
		"frag-001,\"I walk into the night\nYou chase the light\",,Y,late drive\n" +
		",just a thought,Anon,n,\n" +
		"frag-003,   ,JC,Y,\n"

	frags, err := Parse(strings.NewReader(input), now)
	require.NoError(t, err)
	require.Len(t, frags, 2)

	assert.Equal(t, "frag-001", frags[0].ID)
	assert.Equal(t, "I walk into the night\nYou chase the light", frags[0].Content)
	assert.Equal(t, DefaultSource, frags[0].Source)
	assert.True(t, frags[0].Rhythmic)
	assert.Equal(t, "late drive", frags[0].Context)
	assert.Equal(t, now, frags[0].CreatedAt)

	_, err = uuid.Parse(frags[1].ID)
	assert.NoError(t, err, "generated id should be a UUID")
	assert.Equal(t, "Anon", frags[1].Source)
	assert.False(t, frags[1].Rhythmic)
}

func TestParseHeaderCaseAndOrder(t *testing.T) {
	input := "\ufeffrhythmic,FRAGMENT,id\ny,one line,x1\n"
	frags, err := Parse(strings.NewReader(input), time.Now())
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "x1", frags[0].ID)
	assert.True(t, frags[0].Rhythmic)
}

func TestParseMissingFragmentColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("ID,Text\n1,hello\n"), time.Now())
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = Parse(strings.NewReader(""), time.Now())
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragments.csv")
	require.NoError(t, os.WriteFile(path, []byte("Fragment\nhello there\n"), 0o644))
	frags, err := Load(path)
	require.NoError(t, err)
	require.Len(t, frags, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
