package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"--history", "h.json", "--connect-tries", "0", "--migrate=false"})
	require.NoError(t, err)
	assert.Equal(t, "h.json", o.historyPath)
	assert.Equal(t, uint(1), o.connectTries)
	assert.False(t, o.migrate)

	_, err = parseFlags(nil)
	assert.Error(t, err)

	_, err = parseFlags([]string{"--unknown"})
	assert.Error(t, err)
}

func TestReadHistory(t *testing.T) {
	path := writeFile(t, `{
		"7": {"comment": "imported from sheet", "daily_history": {"2025-05-01": 12, "2025-05-02": 0}},
		"8": {"daily_history": {}}
	}`)

	in, err := readHistory(path)
	require.NoError(t, err)
	require.Len(t, in.Entries, 2)
	assert.Equal(t, int64(12), in.Entries[7].DailyHistory["2025-05-01"])
	assert.Equal(t, "imported from sheet", in.Entries[7].Comment)
}

func TestReadHistory_BadUserID(t *testing.T) {
	path := writeFile(t, `{"abc": {"daily_history": {"2025-05-01": 1}}}`)

	_, err := readHistory(path)
	assert.ErrorContains(t, err, "not an integer")
}

func TestReadActivity(t *testing.T) {
	path := writeFile(t, `{"7": "2025-06-01", "8": "2025-06-14"}`)

	in, err := readActivity(path)
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{7: "2025-06-01", 8: "2025-06-14"}, in.Markers)
}

func TestReadJSON_Errors(t *testing.T) {
	var v map[string]string
	assert.Error(t, readJSON(filepath.Join(t.TempDir(), "missing.json"), &v))
	assert.Error(t, readJSON(writeFile(t, `{broken`), &v))
}
