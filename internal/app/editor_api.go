// internal/app/editor_api.go
package app

import (
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/plugin"
	"github.com/bethropolis/ebb/internal/types"
)

// Ensure appEditorAPI implements the plugin.EditorAPI interface.
var _ plugin.EditorAPI = (*appEditorAPI)(nil)

// appEditorAPI provides the concrete implementation of the EditorAPI interface.
type appEditorAPI struct {
	app *App // Reference back to the main application
}

func newEditorAPI(app *App) *appEditorAPI {
	return &appEditorAPI{app: app}
}

// --- Buffer Access ---

func (api *appEditorAPI) GetBufferLine(line int) ([]byte, error) {
	return api.app.editor.GetBuffer().Line(line)
}

func (api *appEditorAPI) GetBufferLineCount() int {
	return api.app.editor.GetBuffer().LineCount()
}

func (api *appEditorAPI) GetBufferFilePath() string {
	return api.app.editor.GetBuffer().FilePath()
}

func (api *appEditorAPI) IsBufferModified() bool {
	return api.app.editor.GetBuffer().IsModified()
}

func (api *appEditorAPI) GetBufferBytes() []byte {
	return api.app.editor.GetBuffer().Bytes()
}

// --- Buffer Modification ---

// InsertText inserts at pos and leaves the cursor after the text.
func (api *appEditorAPI) InsertText(pos types.Position, text []byte) error {
	ed := api.app.editor
	return api.RunBatch("Plugin.InsertText", func() error {
		ed.ClearSelection()
		ed.SetCursor(pos)
		return ed.InsertText(text)
	})
}

func (api *appEditorAPI) DeleteRange(start, end types.Position) error {
	return api.app.editor.DeleteRange(start, end)
}

func (api *appEditorAPI) RunBatch(name string, fn func() error) error {
	return api.app.editor.GetHistory().Do(name, fn)
}

func (api *appEditorAPI) SaveBuffer() error {
	return api.app.editor.SaveBuffer("")
}

// --- Cursor ---

func (api *appEditorAPI) GetCursor() types.Position {
	return api.app.editor.GetCursor()
}

func (api *appEditorAPI) SetCursor(pos types.Position) {
	api.app.editor.SetCursor(pos)
}

// --- Event Bus Interaction ---

func (api *appEditorAPI) DispatchEvent(eventType event.Type, data interface{}) {
	api.app.eventManager.Dispatch(eventType, data)
}

func (api *appEditorAPI) SubscribeEvent(eventType event.Type, handler event.Handler) {
	api.app.eventManager.Subscribe(eventType, handler)
}

// --- Command Registration ---

func (api *appEditorAPI) RegisterCommand(name string, cmdFunc plugin.CommandFunc) error {
	return api.app.RegisterCommand(name, CommandFunc(cmdFunc))
}

// --- Status ---

func (api *appEditorAPI) SetStatusMessage(format string, args ...interface{}) {
	api.app.SetStatusMessage(format, args...)
}

// --- Configuration ---

func (api *appEditorAPI) GetPluginConfigValue(pluginName, key string) (interface{}, bool) {
	return api.app.cfg.PluginValue(pluginName, key)
}
