// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bethropolis/ebb/internal/buffer"
	"github.com/bethropolis/ebb/internal/config"
	"github.com/bethropolis/ebb/internal/core"
	"github.com/bethropolis/ebb/internal/core/history"
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/input"
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/plugin"
	"github.com/bethropolis/ebb/internal/syntax"
)

var (
	// ErrUnknownCommand is returned by Execute for a command name with no handler.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command gets the wrong arguments.
	ErrUsage = errors.New("usage")
	// ErrNoOpenBatch is returned by end/cancel without a matching begin.
	ErrNoOpenBatch = errors.New("no open batch")
	// ErrBatchOpen is returned by commands that would invalidate the
	// actions recorded in an open user batch.
	ErrBatchOpen = errors.New("close open batch first")
	// ErrCommandExists is returned when registering a name twice.
	ErrCommandExists = errors.New("command already registered")
)

// CommandFunc handles one command. args are the whitespace-separated words
// after the command name, or the raw remainder for raw commands.
type CommandFunc func(args []string) error

type command struct {
	fn  CommandFunc
	raw bool
}

// App wires an editor to an input processor and a command interpreter. It
// has no screen; commands come from a script or stdin and output goes to out.
// An App, like its editor, must be driven from a single goroutine.
type App struct {
	cfg            *config.Config
	editor         *core.Editor
	eventManager   *event.Manager
	inputProcessor *input.InputProcessor
	pluginManager  *plugin.Manager
	syntax         *syntax.Tracker
	registry       *prometheus.Registry
	out            io.Writer
	tabWidth       int

	commands    map[string]command
	userBatches []*history.Batch // opened by "begin"

	statusMessage string
	lastHistoryOp event.HistoryChangedData
	quit          bool
}

// New creates an App from cfg. Output of print/status/stats goes to out.
func New(cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	eventManager := event.NewManager()
	registry := prometheus.NewRegistry()

	hist := history.New(
		history.WithMaxHistory(cfg.History.MaxUndo),
		history.WithEventManager(eventManager),
		history.WithMetrics(history.NewMetrics(registry)),
	)
	editor := core.NewEditor(buffer.NewSliceBuffer(),
		core.WithEventManager(eventManager),
		core.WithHistory(hist),
		core.WithSystemClipboard(cfg.Editor.SystemClipboard),
	)

	a := &App{
		cfg:            cfg,
		editor:         editor,
		eventManager:   eventManager,
		inputProcessor: input.NewInputProcessor(),
		pluginManager:  plugin.NewManager(),
		syntax:         syntax.NewTracker(syntax.DefaultRegistry(), func() []byte { return editor.GetBuffer().Bytes() }),
		registry:       registry,
		out:            out,
		tabWidth:       cfg.Editor.TabWidth,
		commands:       make(map[string]command),
	}

	// --- Subscribe App-level handlers ---
	eventManager.Subscribe(event.TypeHistoryChanged, a.handleHistoryChanged)
	eventManager.Subscribe(event.TypeBufferSaved, a.handleBufferSaved)
	eventManager.Subscribe(event.TypeBufferLoaded, a.handleBufferLoaded)
	a.syntax.Subscribe(eventManager)

	registerAppCommands(a)

	// --- Register and Initialize Plugins (triggers RegisterCommand via API) ---
	if err := registerPlugins(a.pluginManager); err != nil {
		logger.Errorf("App: Plugin registration: %v", err)
	}
	if err := a.pluginManager.InitializePlugins(newEditorAPI(a)); err != nil {
		logger.Warnf("App: Some plugins failed to initialize: %v", err)
	}

	eventManager.Dispatch(event.TypeAppReady, event.AppReadyData{})
	return a
}

// Editor returns the editor driven by the app.
func (a *App) Editor() *core.Editor { return a.editor }

// EventManager returns the app's event bus.
func (a *App) EventManager() *event.Manager { return a.eventManager }

// Registry returns the prometheus registry holding the app's metrics.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Syntax returns the tracker keeping the document's syntax tree current.
func (a *App) Syntax() *syntax.Tracker { return a.syntax }

// Close releases parser resources. The App must not be used afterwards.
func (a *App) Close() {
	a.syntax.Close()
}

// Quitting reports whether a quit command or key has been handled.
func (a *App) Quitting() bool { return a.quit }

// RegisterCommand adds a command whose arguments are split on whitespace.
func (a *App) RegisterCommand(name string, fn CommandFunc) error {
	return a.register(name, command{fn: fn})
}

// RegisterRawCommand adds a command that receives the rest of the line,
// unsplit, as its single argument.
func (a *App) RegisterRawCommand(name string, fn CommandFunc) error {
	return a.register(name, command{fn: fn, raw: true})
}

func (a *App) register(name string, cmd command) error {
	if _, exists := a.commands[name]; exists {
		return fmt.Errorf("%w: %s", ErrCommandExists, name)
	}
	a.commands[name] = cmd
	logger.Debugf("App: Registered command '%s'", name)
	return nil
}

// SetStatusMessage records a message for the caller to show after the
// current command.
func (a *App) SetStatusMessage(format string, args ...interface{}) {
	a.statusMessage = fmt.Sprintf(format, args...)
}

// TakeStatusMessage returns and clears the pending status message.
func (a *App) TakeStatusMessage() string {
	msg := a.statusMessage
	a.statusMessage = ""
	return msg
}

// Execute runs one command line. Blank lines and lines starting with '#'
// are ignored. Trailing spaces are kept for raw commands such as insert.
func (a *App) Execute(line string) error {
	line = strings.TrimRight(strings.TrimLeft(line, " \t"), "\r\n")
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, rest, _ := strings.Cut(line, " ")
	cmd, exists := a.commands[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if a.editor.HasPreview() && !previewSafe[name] {
		a.editor.CommitPreview()
		logger.Debugf("App: Pending preview accepted before '%s'", name)
	}

	args := strings.Fields(rest)
	if cmd.raw {
		args = []string{strings.TrimPrefix(rest, " ")}
	}
	logger.Debugf("App: Executing command '%s' with args %q", name, args)
	if err := cmd.fn(args); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Run executes commands read line by line from r until EOF, a quit command
// or ctx is done. Status messages and errors are written to out. With strict
// set, the first failing command stops the run and its error is returned.
func (a *App) Run(ctx context.Context, r io.Reader, strict bool) error {
	defer a.shutdown()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		err := a.Execute(scanner.Text())
		if msg := a.TakeStatusMessage(); msg != "" {
			fmt.Fprintln(a.out, msg)
		}
		if err != nil {
			if strict {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			logger.Warnf("App: line %d: %v", lineNo, err)
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
		if a.quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading commands: %w", err)
	}
	return nil
}

func (a *App) shutdown() {
	if len(a.userBatches) > 0 {
		logger.Warnf("App: %d batch(es) still open at exit: %v", len(a.userBatches), a.editor.GetHistory().OpenBatches())
	}
	if a.editor.GetBuffer().IsModified() {
		logger.Warnf("App: Exiting with unsaved changes.")
	}
	a.pluginManager.ShutdownPlugins()
	a.eventManager.Dispatch(event.TypeAppQuit, event.AppQuitData{})
}
