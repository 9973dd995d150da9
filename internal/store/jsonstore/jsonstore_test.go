package jsonstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/notish/internal/model"
)

func TestLoad_MissingFile(t *testing.T) {
	notes, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestSave_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "notes.json")
	ts := time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)

	require.NoError(t, Save(path, []model.Note{{ID: 2, Text: "Call bank", Timestamp: ts}}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2,"note":"Call bank","timestamp":"2026-10-15T08:30:00Z"}]`, string(b))

	notes, err := Load(path)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Call bank", notes[0].Text)
	assert.True(t, ts.Equal(notes[0].Timestamp))
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "json unmarshal")
}
