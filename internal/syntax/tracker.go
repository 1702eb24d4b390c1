package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/logger"
)

var (
	ErrNoLanguage      = errors.New("no language selected")
	ErrUnknownLanguage = errors.New("unknown language")
)

const logTag = "syntax"

// Stats counts parses since the tree was last reset.
type Stats struct {
	Full        int // parses without a previous tree
	Incremental int // parses reusing an edited tree
	Edits       int // edits applied to the tree
}

// Tracker keeps a tree-sitter syntax tree in step with a buffer. It listens
// for BufferModified events and applies each edit to the old tree, so undo
// and redo replays keep the tree valid just like ordinary typing. Parsing is
// deferred until the tree is asked for.
//
// Like the editor it observes, a Tracker must be used from one goroutine.
type Tracker struct {
	registry *Registry
	source   func() []byte
	parser   *sitter.Parser

	lang  *Language
	tree  *sitter.Tree
	dirty bool
	stats Stats
}

// NewTracker creates a tracker that reads document text from source.
func NewTracker(registry *Registry, source func() []byte) *Tracker {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Tracker{
		registry: registry,
		source:   source,
		parser:   sitter.NewParser(),
	}
}

// Subscribe attaches the tracker to an editor's event bus.
func (t *Tracker) Subscribe(m *event.Manager) {
	m.Subscribe(event.TypeBufferLoaded, t.handleBufferLoaded)
	m.Subscribe(event.TypeBufferModified, t.handleBufferModified)
}

// Registry returns the languages the tracker can select.
func (t *Tracker) Registry() *Registry { return t.registry }

// Language returns the selected language, or nil.
func (t *Tracker) Language() *Language { return t.lang }

// SetLanguage selects a language by name and drops the current tree.
func (t *Tracker) SetLanguage(name string) error {
	lang := t.registry.ByName(name)
	if lang == nil {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
	}
	t.use(lang)
	return nil
}

func (t *Tracker) use(lang *Language) {
	t.reset()
	t.lang = lang
	if lang != nil {
		t.parser.SetLanguage(lang.TreeSitterLang)
		logger.DebugTagf(logTag, "Syntax: Language set to %s", lang.Name)
	}
}

func (t *Tracker) reset() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
	t.dirty = true
	t.stats = Stats{}
}

// handleBufferLoaded picks the language from the file extension. Content
// loaded without a path keeps the current language.
func (t *Tracker) handleBufferLoaded(e event.Event) bool {
	data, ok := e.Data.(event.BufferLoadedData)
	if !ok {
		return false
	}
	if data.FilePath == "" {
		t.reset()
		return false
	}
	lang := t.registry.ForFile(data.FilePath)
	if lang == nil {
		logger.DebugTagf(logTag, "Syntax: No language for '%s'", data.FilePath)
	}
	t.use(lang)
	return false
}

func (t *Tracker) handleBufferModified(e event.Event) bool {
	data, ok := e.Data.(event.BufferModifiedData)
	if !ok || t.lang == nil || data.Edit.IsZero() {
		return false
	}
	if t.tree != nil {
		t.tree.Edit(data.Edit.TreeEdit())
		t.stats.Edits++
	}
	t.dirty = true
	return false
}

// Tree returns the up-to-date tree, reparsing if edits arrived since the
// last call. The tree stays owned by the tracker.
func (t *Tracker) Tree(ctx context.Context) (*sitter.Tree, error) {
	if t.lang == nil {
		return nil, ErrNoLanguage
	}
	if !t.dirty && t.tree != nil {
		return t.tree, nil
	}

	old := t.tree
	tree, err := t.parser.ParseCtx(ctx, old, t.source())
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	if old != nil {
		t.stats.Incremental++
		old.Close()
	} else {
		t.stats.Full++
	}
	t.tree = tree
	t.dirty = false
	logger.DebugTagf(logTag, "Syntax: Parsed %s (full=%d incremental=%d)", t.lang.Name, t.stats.Full, t.stats.Incremental)
	return tree, nil
}

// SExpr returns the tree as an S-expression.
func (t *Tracker) SExpr(ctx context.Context) (string, error) {
	tree, err := t.Tree(ctx)
	if err != nil {
		return "", err
	}
	return tree.RootNode().String(), nil
}

// HasErrors reports whether the document currently fails to parse cleanly.
func (t *Tracker) HasErrors(ctx context.Context) (bool, error) {
	tree, err := t.Tree(ctx)
	if err != nil {
		return false, err
	}
	return tree.RootNode().HasError(), nil
}

// Stats returns parse counters since the last reset.
func (t *Tracker) Stats() Stats { return t.stats }

// Close releases the tree and parser.
func (t *Tracker) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
	t.parser.Close()
}
