package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/ebb/internal/config"
	"github.com/bethropolis/ebb/internal/syntax"
)

func newApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return New(nil, out), out
}

func run(t *testing.T, a *App, script string) {
	t.Helper()
	require.NoError(t, a.Run(context.Background(), strings.NewReader(script), true))
}

func text(a *App) string { return string(a.Editor().GetBuffer().Bytes()) }

func TestExecuteUnknownCommand(t *testing.T) {
	a, _ := newApp(t)
	err := a.Execute("frobnicate now")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.NoError(t, a.Execute("   "))
	assert.NoError(t, a.Execute("# a comment"))
}

func TestRegisterCommandTwice(t *testing.T) {
	a, _ := newApp(t)
	err := a.RegisterCommand("insert", func(args []string) error { return nil })
	assert.ErrorIs(t, err, ErrCommandExists)
}

func TestInsertUndoPrint(t *testing.T) {
	a, out := newApp(t)
	run(t, a, "insert hello  world\nnewline\ninsert x\\ty\nundo\nprint\n")
	assert.Equal(t, "hello  world\n", text(a))
	assert.Contains(t, out.String(), "Undid Operations.InsertText")
	assert.True(t, strings.HasSuffix(out.String(), "hello  world\n\n"))
}

func TestBeginEndGroupsEdits(t *testing.T) {
	a, _ := newApp(t)
	run(t, a, "begin Words\ninsert a\ninsert b\nnewline\nend\n")
	undo, _ := a.Editor().GetHistory().Len()
	assert.Equal(t, 1, undo)
	assert.Equal(t, "Words", a.Editor().GetHistory().UndoLabel())

	run(t, a, "undo\n")
	assert.Equal(t, "", text(a))
}

func TestCancelDropsRecording(t *testing.T) {
	a, _ := newApp(t)
	run(t, a, "begin Scratch\ninsert a\ncancel\n")
	assert.Equal(t, "a", text(a))
	assert.False(t, a.Editor().GetHistory().CanUndo())
}

func TestEndWithoutBegin(t *testing.T) {
	a, _ := newApp(t)
	assert.ErrorIs(t, a.Execute("end"), ErrNoOpenBatch)
	assert.ErrorIs(t, a.Execute("cancel"), ErrNoOpenBatch)
}

func TestHistoryAndLoadRejectedInsideOpenBatch(t *testing.T) {
	a, _ := newApp(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("HELLO WORLD"), 0o644))

	run(t, a, "begin B\ninsert hello\n")
	assert.ErrorIs(t, a.Execute("load "+path), ErrBatchOpen)
	assert.ErrorIs(t, a.Execute("undo"), ErrBatchOpen)
	assert.ErrorIs(t, a.Execute("redo"), ErrBatchOpen)

	require.NoError(t, a.Execute("key ctrl+z"))
	assert.Contains(t, a.TakeStatusMessage(), "Cannot undo")
	assert.Equal(t, "hello", text(a))

	run(t, a, "end\nload "+path+"\n")
	assert.Equal(t, "HELLO WORLD", text(a))
	assert.False(t, a.Editor().GetHistory().CanUndo(), "no closure from the old document survives the load")

	run(t, a, "undo\n")
	assert.Equal(t, "HELLO WORLD", text(a))
}

func TestPreviewRejectRestores(t *testing.T) {
	a, _ := newApp(t)
	a.Editor().LoadBytes([]byte("foo bar foo"))
	run(t, a, "preview /foo/X/g\n")
	assert.Equal(t, "X bar X", text(a))
	assert.True(t, a.Editor().HasPreview())

	run(t, a, "reject\n")
	assert.Equal(t, "foo bar foo", text(a))
	assert.False(t, a.Editor().GetHistory().CanUndo())
}

func TestPreviewAcceptedByNextEdit(t *testing.T) {
	a, _ := newApp(t)
	a.Editor().LoadBytes([]byte("foo bar foo"))
	run(t, a, "preview /foo/X/g\nstatus\ngoto 1 8\ninsert !\n")
	assert.Equal(t, "X bar X!", text(a))
	assert.False(t, a.Editor().HasPreview())

	h := a.Editor().GetHistory()
	require.True(t, h.Undo())
	assert.Equal(t, "Find.Replace", h.UndoLabel())
	require.True(t, h.Undo())
	assert.Equal(t, "foo bar foo", text(a))
}

func TestReplaceCommand(t *testing.T) {
	a, out := newApp(t)
	a.Editor().LoadBytes([]byte("a-a-a"))
	run(t, a, "replace /a/b/g\n")
	assert.Equal(t, "b-b-b", text(a))
	assert.Contains(t, out.String(), "Replaced 3 occurrence(s)")
	assert.Error(t, a.Execute("replace nonsense"))
}

func TestTypeAndKeys(t *testing.T) {
	a, _ := newApp(t)
	run(t, a, "type hi\n")
	assert.Equal(t, "hi", text(a))
	undo, _ := a.Editor().GetHistory().Len()
	assert.Equal(t, 2, undo)

	run(t, a, "key ctrl+z\n")
	assert.Equal(t, "h", text(a))
	run(t, a, "key ctrl+y\n")
	assert.Equal(t, "hi", text(a))
	assert.Error(t, a.Execute("key hyper+q"))
}

func TestShiftSelectYankPaste(t *testing.T) {
	a, _ := newApp(t)
	a.Editor().LoadBytes([]byte("hello"))
	run(t, a, "goto 1 1\nkey shift+right shift+right\n")
	start, end, ok := a.Editor().GetSelection()
	require.True(t, ok)
	assert.Equal(t, "he", string(a.Editor().TextRange(start, end)))

	run(t, a, "yank\nkey end\npaste\n")
	assert.Equal(t, "hellohe", text(a))
	assert.Equal(t, "Clipboard.Paste", a.Editor().GetHistory().UndoLabel())

	run(t, a, "undo\n")
	assert.Equal(t, "hello", text(a))
}

func TestBackspaceAndDeleteCounts(t *testing.T) {
	a, _ := newApp(t)
	a.Editor().LoadBytes([]byte("abcdef"))
	run(t, a, "goto 1 4\nbackspace 2\ndelete\n")
	assert.Equal(t, "aef", text(a))
	assert.Error(t, a.Execute("backspace zero"))
}

func TestStrictRunStopsAtFirstError(t *testing.T) {
	a, _ := newApp(t)
	err := a.Run(context.Background(), strings.NewReader("insert a\nbogus\ninsert b\n"), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, "a", text(a))
}

func TestLenientRunReportsAndContinues(t *testing.T) {
	a, out := newApp(t)
	err := a.Run(context.Background(), strings.NewReader("insert a\nbogus\ninsert b\n"), false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "error: unknown command: bogus")
	assert.Equal(t, "ab", text(a))
}

func TestQuitStopsRun(t *testing.T) {
	a, _ := newApp(t)
	run(t, a, "insert a\nquit\ninsert b\n")
	assert.True(t, a.Quitting())
	assert.Equal(t, "a", text(a))
}

func TestRunHonoursContext(t *testing.T) {
	a, _ := newApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.Run(ctx, strings.NewReader("insert a\n"), true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "", text(a))
}

func TestSaveAndLoad(t *testing.T) {
	a, out := newApp(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	run(t, a, "insert one\nsave "+path+"\n")
	assert.Contains(t, out.String(), "Buffer saved to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", strings.TrimRight(string(data), "\n"))

	run(t, a, "insert two\nload "+path+"\n")
	assert.Equal(t, "one", text(a))
	assert.False(t, a.Editor().GetHistory().CanUndo())
	assert.Error(t, a.Execute("load"))
}

func TestStatusLine(t *testing.T) {
	a, out := newApp(t)
	run(t, a, "insert ab\nbegin Outer\nstatus\nend\n")
	assert.Contains(t, out.String(), "Ln 1, Col 3 [+] | undo 1 (Operations.InsertText) | redo 0 | open Outer")
}

func TestStatsReportsHistoryMetrics(t *testing.T) {
	a, out := newApp(t)
	run(t, a, "insert a\ninsert b\nundo\nstats\n")
	assert.Contains(t, out.String(), "ebb_history_commits_total 2")
	assert.Contains(t, out.String(), `ebb_history_replays_total{op="undo"} 1`)
	assert.Contains(t, out.String(), "ebb_history_unit_actions_count 2")
}

func TestHelpListsCommands(t *testing.T) {
	a, out := newApp(t)
	run(t, a, "help\n")
	for _, name := range []string{"insert", "undo", "preview", "stats"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestTabExpandsToSpaces(t *testing.T) {
	a, _ := newApp(t)
	run(t, a, "type a\\tb\n")
	assert.Equal(t, "a    b", text(a))
	run(t, a, "undo 2\n")
	assert.Equal(t, "a", text(a))
}

func TestWordCountPluginCommand(t *testing.T) {
	a, out := newApp(t)
	a.Editor().LoadBytes([]byte("one two\nthree"))
	run(t, a, "wc\n")
	assert.Contains(t, out.String(), "Lines: 2, Words: 3, Chars: 13, Bytes: 13")
}

func TestAutoSavePlugin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	cfg := config.NewDefaultConfig()
	cfg.Plugins = map[string]map[string]interface{}{
		"autosave": {"enabled": true, "every": int64(2)},
	}
	a := New(cfg, &bytes.Buffer{})
	run(t, a, "load "+path+"\ninsert a\n")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data), "one change is below the threshold")

	run(t, a, "insert b\n")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abx", string(data))
	assert.False(t, a.Editor().GetBuffer().IsModified())
}

func TestSyntaxCommands(t *testing.T) {
	a, out := newApp(t)
	t.Cleanup(a.Close)
	a.Editor().LoadBytes([]byte("package main\n"))

	run(t, a, "syntax\n")
	assert.Contains(t, out.String(), "Language: none (available: Go, JSON, JavaScript, Python, Rust)")
	assert.ErrorIs(t, a.Execute("tree"), syntax.ErrNoLanguage)

	out.Reset()
	run(t, a, "syntax go\ntree\ninsert func f() {}\nundo\nsyntax\n")
	assert.Contains(t, out.String(), "(source_file (package_clause (package_identifier)))")
	assert.Contains(t, out.String(), "Language: Go, errors: false, parses: full=1 incremental=1")
}

func TestInsertKeepsTrailingSpaces(t *testing.T) {
	a, _ := newApp(t)
	run(t, a, "insert a  \r\ninsert b\n")
	assert.Equal(t, "a  b", text(a))
}
