package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ocnotify/internal/model"
)

func testEntry(t *testing.T, kind model.EventKind, mechanism string) model.Entry {
	t.Helper()
	e, err := model.NewEntry(kind)
	require.NoError(t, err)
	e.Played = mechanism != ""
	e.Mechanism = mechanism
	if mechanism != "" {
		e.Attempts = []string{mechanism}
	}
	return *e
}

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	j, err := OpenJournal(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func TestOpenJournal(t *testing.T) {
	_, path := openTestJournal(t)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ocnotify_schema_version")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestOpenJournal_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocnotify", "nested", "history.jsonl")

	j, err := OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, path, j.Path())
}

func TestJournal_AppendAndLoad(t *testing.T) {
	j, _ := openTestJournal(t)

	e1 := testEntry(t, model.KindPermission, "paplay")
	e2 := testEntry(t, model.KindCompletion, "")
	require.NoError(t, j.Append(e1))
	require.NoError(t, j.Append(e2))

	entries, err := j.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, e1, entries[0])
	assert.Equal(t, e2, entries[1])
}

func TestJournal_AppendRejectsInvalid(t *testing.T) {
	j, _ := openTestJournal(t)

	err := j.Append(model.Entry{Kind: model.KindPermission, Timestamp: time.Now().Unix()})
	assert.ErrorIs(t, err, model.ErrEmptyID)
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	j1, err := OpenJournal(path)
	require.NoError(t, err)
	require.NoError(t, j1.Append(testEntry(t, model.KindPermission, "bell")))
	require.NoError(t, j1.Close())

	j2, err := OpenJournal(path)
	require.NoError(t, err)
	defer j2.Close()
	require.NoError(t, j2.Append(testEntry(t, model.KindCompletion, "bell")))

	entries, err := j2.Load()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJournal_Recent(t *testing.T) {
	j, _ := openTestJournal(t)

	var ids []string
	for range 5 {
		e := testEntry(t, model.KindPermission, "bell")
		ids = append(ids, e.ID)
		require.NoError(t, j.Append(e))
	}

	recent, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[4], recent[0].ID)
	assert.Equal(t, ids[3], recent[1].ID)

	all, err := j.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, ids[0], all[4].ID)
}

func TestJournal_Prune(t *testing.T) {
	j, path := openTestJournal(t)

	var ids []string
	for range 4 {
		e := testEntry(t, model.KindCompletion, "afplay")
		ids = append(ids, e.ID)
		require.NoError(t, j.Append(e))
	}

	removed, err := j.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := j.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[2], entries[0].ID)
	assert.Equal(t, ids[3], entries[1].ID)

	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))

	// Appends still land after a rewrite.
	require.NoError(t, j.Append(testEntry(t, model.KindPermission, "bell")))
	entries, err = j.Load()
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	removed, err = j.Prune(10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestJournal_Clear(t *testing.T) {
	j, path := openTestJournal(t)
	require.NoError(t, j.Append(testEntry(t, model.KindPermission, "bell")))

	require.NoError(t, j.Clear())

	entries, err := j.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ocnotify_schema_version")
}

func TestJournal_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	content := `{"ocnotify_schema_version":1,"created_at":1703577600}
{"id":"01HQ0000000000000000000001","kind":"permission","timestamp":1703577600,"played":true,"mechanism":"bell","duration_ms":3}
{invalid json}
{"id":"01HQ0000000000000000000002","kind":"bogus","timestamp":1703577601}
{"id":"01HQ0000000000000000000003","kind":"completion","timestamp":1703577602,"played":false,"attempts":["paplay","bell"],"duration_ms":40}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	j, err := OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "exhausted", entries[1].Outcome())
}

func TestJournal_SchemaVersionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	content := `{"ocnotify_schema_version":999,"created_at":1703577600}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	j, err := OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = j.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version")
}

func TestJournal_Closed(t *testing.T) {
	j, _ := openTestJournal(t)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Append(testEntry(t, model.KindPermission, "bell")), ErrJournalClosed)
	_, err := j.Load()
	assert.ErrorIs(t, err, ErrJournalClosed)
	_, err = j.Prune(1)
	assert.ErrorIs(t, err, ErrJournalClosed)
	assert.ErrorIs(t, j.Clear(), ErrJournalClosed)
}

func TestJournal_ConcurrentAppend(t *testing.T) {
	j, _ := openTestJournal(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, j.Append(testEntry(t, model.KindCompletion, "bell")))
		}()
	}
	wg.Wait()

	entries, err := j.Load()
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
