package jsonl

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-io/internal/domain"
)

func writeFixture(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRead_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "in.jsonl",
		`{"type":"post_seen","n":1.50}`,
		``,
		`   `,
		`{"broken":`,
		`[1,2,3]`,
		`{"a":1} {"b":2}`,
		`{"type":"profile_seen"}`,
	)

	items, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, items, 5)

	first := items[0]
	require.NotNil(t, first.Record)
	assert.Nil(t, first.Issue)
	assert.Equal(t, 1, first.Record.LineNumber)
	assert.Equal(t, path, first.Record.InputFile)
	assert.Equal(t, "post_seen", first.Record.Fields["type"])
	assert.Equal(t, json.Number("1.50"), first.Record.Fields["n"])

	invalid := items[1]
	require.NotNil(t, invalid.Issue)
	assert.Equal(t, 4, invalid.Issue.InputLineNumber)
	assert.True(t, strings.HasPrefix(invalid.Issue.Message, "invalid json: "))
	assert.Equal(t, `{"broken":`, invalid.Issue.RawLine)
	assert.Equal(t, domain.IssueKindStructural, invalid.Issue.Kind)

	array := items[2]
	require.NotNil(t, array.Issue)
	assert.Equal(t, 5, array.Issue.InputLineNumber)
	assert.Equal(t, "json line must be an object", array.Issue.Message)

	trailing := items[3]
	require.NotNil(t, trailing.Issue)
	assert.True(t, strings.HasPrefix(trailing.Issue.Message, "invalid json: "))

	last := items[4]
	require.NotNil(t, last.Record)
	assert.Equal(t, 7, last.Record.LineNumber)
}

func TestRead_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "b.jsonl", `{"file":"b"}`)
	writeFixture(t, dir, "a.jsonl", `{"file":"a"}`, `{"file":"a2"}`)
	writeFixture(t, dir, "notes.txt", `{"file":"txt"}`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jsonl"), 0o755))

	items, err := ReadAll(dir)
	require.NoError(t, err)
	require.Len(t, items, 3)

	var got []string
	for _, it := range items {
		got = append(got, it.Record.Fields["file"].(string))
	}
	assert.Equal(t, []string{"a", "a2", "b"}, got)
	assert.Equal(t, filepath.Join(dir, "a.jsonl"), items[0].Record.InputFile)
}

func TestRead_MissingPath(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.jsonl")
}

func TestRead_VisitErrorStops(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "in.jsonl", `{"a":1}`, `{"a":2}`)

	stop := errors.New("stop")
	calls := 0
	err := Read(path, func(Item) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestRead_LongLine(t *testing.T) {
	dir := t.TempDir()
	long := `{"text":"` + strings.Repeat("x", 20<<20) + `"}`
	path := writeFixture(t, dir, "long.jsonl", `{"a":1}`, long, `{"a":2}`)

	items, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.NotNil(t, items[1].Record)
	assert.Equal(t, 2, items[1].Record.LineNumber)
	assert.Len(t, items[1].Record.Fields["text"], 20<<20)
	assert.Equal(t, 3, items[2].Record.LineNumber)
}

func TestRead_LongMalformedLineIsAnIssue(t *testing.T) {
	dir := t.TempDir()
	long := `{"text":"` + strings.Repeat("x", 20<<20)
	path := writeFixture(t, dir, "long.jsonl", `{"a":1}`, long, `{"a":2}`)

	items, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.NotNil(t, items[0].Record)
	require.NotNil(t, items[1].Issue)
	assert.Equal(t, 2, items[1].Issue.InputLineNumber)
	assert.Equal(t, domain.IssueKindStructural, items[1].Issue.Kind)
	assert.NotNil(t, items[2].Record)
}

func TestRead_CRLFAndMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\r\n\r\n{\"a\":2}"), 0o644))

	items, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, `{"a":1}`, items[0].Record.RawLine)
	assert.Equal(t, 3, items[1].Record.LineNumber)
}
