// internal/plugin/plugin.go
package plugin

import (
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/types"
)

// CommandFunc defines the signature for commands registered by plugins.
// It takes arguments (e.g., from user input) and returns an error.
type CommandFunc func(args []string) error

// EditorAPI defines the methods plugins can use to interact with the editor core.
// This acts as a controlled interface, preventing plugins from accessing everything.
type EditorAPI interface {
	// --- Buffer Access ---
	GetBufferLine(line int) ([]byte, error)
	GetBufferLineCount() int
	GetBufferFilePath() string
	IsBufferModified() bool
	GetBufferBytes() []byte

	// --- Buffer Modification ---
	// Edits are recorded in the undo history like any user edit.
	InsertText(pos types.Position, text []byte) error
	DeleteRange(start, end types.Position) error
	// RunBatch runs fn in a history batch named name, so every edit it
	// makes undoes as one step. An error from fn cancels the batch.
	RunBatch(name string, fn func() error) error
	SaveBuffer() error

	// --- Cursor ---
	GetCursor() types.Position
	SetCursor(pos types.Position)

	// --- Event Bus Interaction ---
	DispatchEvent(eventType event.Type, data interface{})
	SubscribeEvent(eventType event.Type, handler event.Handler)

	// --- Command Registration ---
	RegisterCommand(name string, cmdFunc CommandFunc) error

	// --- Status ---
	SetStatusMessage(format string, args ...interface{})

	// --- Configuration ---
	// GetPluginConfigValue reads key from the [plugins.<pluginName>] table.
	GetPluginConfigValue(pluginName, key string) (interface{}, bool)
}

// Plugin defines the interface that all plugins must implement.
type Plugin interface {
	// Name returns the unique identifier name of the plugin.
	Name() string

	// Initialize is called once when the plugin is loaded.
	// Used for setup, subscribing to events, registering commands.
	Initialize(api EditorAPI) error

	// Shutdown is called once when the editor is closing.
	Shutdown() error
}
