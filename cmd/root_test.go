package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnames/gnbundle/internal/iotesting"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	cmd := getRootCmd()
	assert.Equal(t, "gnbundle", cmd.Use)

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, n := range []string{"import", "preview", "export", "history", "undo", "migrate", "optimize"} {
		assert.True(t, names[n], n)
	}
}

func TestVersionFlag(t *testing.T) {
	for _, flag := range []string{"--version", "-V"} {
		cmd := getRootCmd()
		cmd.Version = "version: v1.2.3\nbuild:   abc123"
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{flag})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "v1.2.3")
		assert.Contains(t, buf.String(), "abc123")
	}
}

func TestWriteHistory(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	list := []bundle.HistoryEntry{
		{ID: "b", Time: now, Action: bundle.ActionUndo, Actor: "ann", Source: "a", OK: true},
		{ID: "a", Time: now, Action: bundle.ActionImport, Actor: "ann",
			Source: "animals.zip", OK: true, UndoneAt: &now},
	}

	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, list, "text"))
	assert.Contains(t, buf.String(), "animals.zip (ok, undone 2025-03-01 10:00:00)")

	buf.Reset()
	require.NoError(t, writeHistory(&buf, list, "yaml"))
	assert.Contains(t, buf.String(), "source: animals.zip")

	buf.Reset()
	require.NoError(t, writeHistory(&buf, list, "json"))
	assert.Contains(t, buf.String(), `"source": "animals.zip"`)

	buf.Reset()
	require.NoError(t, writeHistory(&buf, nil, "text"))
	assert.Contains(t, buf.String(), "empty")
}

func TestImportExportCommands(t *testing.T) {
	homeDir = t.TempDir()
	t.Cleanup(func() { homeDir = "" })
	dir := t.TempDir()
	archive := iotesting.WriteZip(t, filepath.Join(dir, "animals.zip"),
		[]iotesting.Entry{
			{Name: "quiz.tsv", Body: []byte("quiz\timage\tanswer\nAnimals\tcat.png\tCat\n")},
			{Name: "images/cat.png", Body: iotesting.PNG},
		})

	run := func(args ...string) (string, error) {
		cmd := getRootCmd()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return buf.String(), err
	}

	_, err := run("import", "--quiet", "--actor", "ann", archive)
	require.NoError(t, err)

	out, err := run("history", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "actor: ann")
	assert.Contains(t, out, "source: animals.zip")

	dest := filepath.Join(dir, "out.zip")
	_, err = run("export", dest, "--root", "animals")
	require.NoError(t, err)
	assert.FileExists(t, dest)

	_, err = run("undo", "no-such-id")
	assert.Error(t, err)

	_, err = run("optimize", "--quiet")
	require.NoError(t, err)
}

func TestShownLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, shownLines([]string{"a", "b"}))

	long := make([]string, maxShown+5)
	for i := range long {
		long[i] = fmt.Sprintf("row %d", i)
	}
	got := shownLines(long)
	require.Len(t, got, maxShown+1)
	assert.Equal(t, "row 0", got[0])
	assert.Equal(t, "... 5 more", got[maxShown])
}
