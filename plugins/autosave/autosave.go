package autosave

import (
	"github.com/bethropolis/ebb/internal/event"
	"github.com/bethropolis/ebb/internal/logger"
	"github.com/bethropolis/ebb/internal/plugin"
)

// Ensure AutoSave implements plugin.Plugin
var _ plugin.Plugin = (*AutoSave)(nil)

const (
	// Default configuration values
	defaultEnabled = false
	defaultEvery   = 10
)

// AutoSave writes a modified buffer back to its file after every N history
// changes (commits, undos and redos). It runs on the event bus, in the
// editor's goroutine, so it needs no locking.
type AutoSave struct {
	api plugin.EditorAPI

	// Configuration
	enabled bool
	every   int

	// Runtime state
	pending int // history changes since the last save
}

// New creates a new instance of the AutoSave plugin.
func New() plugin.Plugin {
	return &AutoSave{
		enabled: defaultEnabled,
		every:   defaultEvery,
	}
}

// Name returns the unique name of the plugin.
func (p *AutoSave) Name() string {
	return "autosave"
}

// Initialize reads [plugins.autosave] and subscribes to history changes
// when enabled.
func (p *AutoSave) Initialize(api plugin.EditorAPI) error {
	p.api = api
	pluginName := p.Name()

	// --- Read Configuration ---
	if enabledVal, ok := api.GetPluginConfigValue(pluginName, "enabled"); ok {
		if boolVal, isBool := enabledVal.(bool); isBool {
			p.enabled = boolVal
		} else {
			logger.Warnf("%s: Invalid type for 'enabled' config (%T), using default (%v)", pluginName, enabledVal, p.enabled)
		}
	}

	if everyVal, ok := api.GetPluginConfigValue(pluginName, "every"); ok {
		n, isInt := toInt(everyVal)
		switch {
		case !isInt:
			logger.Warnf("%s: Invalid type for 'every' config (%T), using default (%d)", pluginName, everyVal, p.every)
		case n <= 0:
			logger.Warnf("%s: 'every' config must be positive (%d). Using default (%d)", pluginName, n, p.every)
		default:
			p.every = n
		}
	}

	logger.Infof("%s initialized. Enabled: %v, Every: %d", pluginName, p.enabled, p.every)

	if p.enabled {
		api.SubscribeEvent(event.TypeHistoryChanged, p.handleHistoryChanged)
		api.SubscribeEvent(event.TypeBufferSaved, p.handleBufferSaved)
	}
	return nil
}

// toInt accepts the integer types a TOML decoder or a caller may produce.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// Shutdown has nothing to stop; saving happens inline.
func (p *AutoSave) Shutdown() error {
	return nil
}

func (p *AutoSave) handleHistoryChanged(e event.Event) bool {
	data, ok := e.Data.(event.HistoryChangedData)
	if !ok || data.Op == event.HistoryClear {
		return false
	}
	p.pending++
	if p.pending >= p.every {
		p.saveIfModified()
	}
	return false
}

func (p *AutoSave) handleBufferSaved(e event.Event) bool {
	p.pending = 0
	return false
}

// saveIfModified checks if the buffer is modified and saves it.
func (p *AutoSave) saveIfModified() {
	if !p.api.IsBufferModified() {
		logger.Debugf("%s: Buffer not modified, skipping auto-save.", p.Name())
		return
	}
	filePath := p.api.GetBufferFilePath()
	if filePath == "" {
		logger.Debugf("%s: Buffer is modified but has no name, skipping auto-save.", p.Name())
		return
	}

	logger.Infof("%s: Auto-saving modified buffer: %s", p.Name(), filePath)
	if err := p.api.SaveBuffer(); err != nil {
		logger.Errorf("%s: Auto-save failed for '%s': %v", p.Name(), filePath, err)
		return
	}
	logger.Debugf("%s: Auto-save successful for '%s'", p.Name(), filePath)
}
