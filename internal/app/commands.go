package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/ebb/internal/core/find"
	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/input"
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/types"
)

// previewSafe lists the commands that run without first accepting a
// pending replace preview.
var previewSafe = map[string]bool{
	"preview": true,
	"accept":  true,
	"reject":  true,
	"print":   true,
	"status":  true,
	"stats":   true,
	"tree":    true,
	"help":    true,
}

var unescaper = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`)

// registerAppCommands registers the built-in commands.
func registerAppCommands(app *App) {
	ed := app.editor

	// --- Editing ---
	raw := map[string]CommandFunc{
		"insert": func(args []string) error {
			return ed.InsertText([]byte(unescaper.Replace(args[0])))
		},
		"type": func(args []string) error {
			for _, r := range unescaper.Replace(args[0]) {
				switch r {
				case '\n':
					app.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
				case '\t':
					app.HandleKey(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
				default:
					app.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
				}
			}
			return nil
		},
		"replace": func(args []string) error {
			pattern, replacement, global, err := find.ParseSubstituteCommand(args[0])
			if err != nil {
				return err
			}
			count, err := ed.Replace(pattern, replacement, global)
			if err != nil {
				return err
			}
			app.SetStatusMessage("Replaced %d occurrence(s)", count)
			return nil
		},
		"preview": func(args []string) error {
			pattern, replacement, global, err := find.ParseSubstituteCommand(args[0])
			if err != nil {
				return err
			}
			count, err := ed.PreviewReplace(pattern, replacement, global)
			if err != nil {
				return err
			}
			app.SetStatusMessage("Previewing %d replacement(s)", count)
			return nil
		},
		"begin": func(args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				name = "Script.Batch"
			}
			app.userBatches = append(app.userBatches, ed.GetHistory().StartBatch(name))
			return nil
		},
	}

	words := map[string]CommandFunc{
		"newline": func(args []string) error { return ed.InsertNewLine() },
		"backspace": func(args []string) error {
			return repeat(args, ed.DeleteBackward)
		},
		"delete": func(args []string) error {
			return repeat(args, ed.DeleteForward)
		},
		"goto": func(args []string) error {
			pos, err := parsePosition(args)
			if err != nil {
				return err
			}
			ed.ClearSelection()
			ed.SetCursor(pos)
			return nil
		},
		"select": func(args []string) error {
			if len(args) == 1 && args[0] == "none" {
				ed.ClearSelection()
				return nil
			}
			if len(args) != 4 {
				return fmt.Errorf("%w: select <line> <col> <line> <col> | select none", ErrUsage)
			}
			anchor, err := parsePosition(args[:2])
			if err != nil {
				return err
			}
			head, err := parsePosition(args[2:])
			if err != nil {
				return err
			}
			ed.SetSelection(anchor, head)
			return nil
		},
		"accept": func(args []string) error {
			if !ed.CommitPreview() {
				app.SetStatusMessage("No preview pending")
			}
			return nil
		},
		"reject": func(args []string) error {
			if !ed.CancelPreview() {
				app.SetStatusMessage("No preview pending")
			}
			return nil
		},
		"yank": func(args []string) error {
			app.executeAction(input.ActionEvent{Action: input.ActionYank})
			return nil
		},
		"paste": func(args []string) error {
			app.executeAction(input.ActionEvent{Action: input.ActionPaste})
			return nil
		},

		// --- History ---
		"undo": func(args []string) error {
			if err := app.checkNoUserBatch(); err != nil {
				return err
			}
			return repeatUntil(args, app.undo)
		},
		"redo": func(args []string) error {
			if err := app.checkNoUserBatch(); err != nil {
				return err
			}
			return repeatUntil(args, app.redo)
		},
		"end": func(args []string) error {
			b, err := app.popUserBatch()
			if err != nil {
				return err
			}
			b.End()
			return nil
		},
		"cancel": func(args []string) error {
			b, err := app.popUserBatch()
			if err != nil {
				return err
			}
			b.Cancel()
			return nil
		},

		// --- Keys ---
		"key": func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: key <spec>...", ErrUsage)
			}
			for _, spec := range args {
				ev, err := input.ParseKey(spec)
				if err != nil {
					return err
				}
				app.HandleKey(ev)
			}
			return nil
		},

		// --- Output ---
		"print": func(args []string) error {
			fmt.Fprintln(app.out, string(ed.GetBuffer().Bytes()))
			return nil
		},
		"status": func(args []string) error {
			fmt.Fprintln(app.out, app.statusLine())
			return nil
		},
		"stats": func(args []string) error {
			return app.writeStats()
		},
		"tree": func(args []string) error {
			sexpr, err := app.syntax.SExpr(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, sexpr)
			return nil
		},
		"syntax": func(args []string) error {
			if len(args) > 0 {
				return app.syntax.SetLanguage(strings.Join(args, " "))
			}
			return app.writeSyntaxStatus()
		},
		"help": func(args []string) error {
			names := make([]string, 0, len(app.commands))
			for name := range app.commands {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintln(app.out, strings.Join(names, " "))
			return nil
		},

		// --- Files ---
		"load": func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: load <path>", ErrUsage)
			}
			if err := app.checkNoUserBatch(); err != nil {
				return err
			}
			return ed.LoadFile(args[0])
		},
		"save": func(args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return ed.SaveBuffer(path)
		},
		"quit": func(args []string) error {
			app.quit = true
			return nil
		},
	}

	// --- Register the commands ---
	for name, fn := range raw {
		if err := app.RegisterRawCommand(name, fn); err != nil {
			logger.Warnf("Failed to register '%s' command: %v", name, err)
		}
	}
	for name, fn := range words {
		if err := app.RegisterCommand(name, fn); err != nil {
			logger.Warnf("Failed to register '%s' command: %v", name, err)
		}
	}
}

func (a *App) popUserBatch() (*history.Batch, error) {
	if len(a.userBatches) == 0 {
		return nil, ErrNoOpenBatch
	}
	b := a.userBatches[len(a.userBatches)-1]
	a.userBatches = a.userBatches[:len(a.userBatches)-1]
	return b, nil
}

// statusLine summarises the cursor, buffer and history state.
func (a *App) statusLine() string {
	ed := a.editor
	h := ed.GetHistory()
	cursor := ed.GetCursor()
	undo, redo := h.Len()

	var b strings.Builder
	fmt.Fprintf(&b, "Ln %d, Col %d", cursor.Line+1, cursor.Col+1)
	if ed.GetBuffer().IsModified() {
		b.WriteString(" [+]")
	}
	fmt.Fprintf(&b, " | undo %d", undo)
	if label := h.UndoLabel(); label != "" {
		fmt.Fprintf(&b, " (%s)", label)
	}
	fmt.Fprintf(&b, " | redo %d", redo)
	if label := h.RedoLabel(); label != "" {
		fmt.Fprintf(&b, " (%s)", label)
	}
	if depth := h.Depth(); depth > 0 {
		fmt.Fprintf(&b, " | open %s", strings.Join(h.OpenBatches(), ","))
	}
	if ed.HasPreview() {
		b.WriteString(" | preview")
	}
	if op := a.lastHistoryOp.Op; op != "" {
		fmt.Fprintf(&b, " | last %s", op)
	}
	return b.String()
}

func (a *App) writeSyntaxStatus() error {
	lang := a.syntax.Language()
	if lang == nil {
		fmt.Fprintf(a.out, "Language: none (available: %s)\n", strings.Join(a.syntax.Registry().Names(), ", "))
		return nil
	}
	hasErrors, err := a.syntax.HasErrors(context.Background())
	if err != nil {
		return err
	}
	stats := a.syntax.Stats()
	fmt.Fprintf(a.out, "Language: %s, errors: %v, parses: full=%d incremental=%d\n",
		lang.Name, hasErrors, stats.Full, stats.Incremental)
	return nil
}

// parsePosition reads a 1-based "<line> <col>" pair.
func parsePosition(args []string) (types.Position, error) {
	if len(args) != 2 {
		return types.Position{}, fmt.Errorf("%w: expected <line> <col>", ErrUsage)
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return types.Position{}, fmt.Errorf("%w: bad line %q", ErrUsage, args[0])
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return types.Position{}, fmt.Errorf("%w: bad column %q", ErrUsage, args[1])
	}
	return types.Position{Line: line - 1, Col: col - 1}, nil
}

func count(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: bad count %q", ErrUsage, args[0])
	}
	return n, nil
}

func repeat(args []string, fn func() error) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// checkNoUserBatch fails while a begin is unmatched. Replaying history or
// replacing the document under an open batch would leave its recorded
// positions pointing at text that is no longer there.
func (a *App) checkNoUserBatch() error {
	if n := len(a.userBatches); n > 0 {
		return fmt.Errorf("%w: %q", ErrBatchOpen, a.userBatches[n-1].Name())
	}
	return nil
}

// repeatUntil calls fn up to n times, stopping early once it reports false.
func repeatUntil(args []string, fn func() bool) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	for i := 0; i < n && fn(); i++ {
	}
	return nil
}
