// internal/plugin/manager.go
package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bethropolis/ebb/internal/logger"
)

var (
	ErrEmptyName         = errors.New("plugin name cannot be empty")
	ErrAlreadyRegistered = errors.New("plugin already registered")
)

// Manager handles the registration, initialization, and lifecycle of plugins.
// Plugins are initialized and shut down in registration order.
type Manager struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
}

// NewManager creates a new plugin manager.
func NewManager() *Manager {
	return &Manager{
		plugins: make(map[string]Plugin),
	}
}

// Register adds a plugin instance to the manager.
// This should be called before InitializePlugins.
func (m *Manager) Register(plugin Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := plugin.Name()
	if name == "" {
		return fmt.Errorf("plugin registration failed: %w", ErrEmptyName)
	}
	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("plugin registration failed: %w: '%s'", ErrAlreadyRegistered, name)
	}

	m.plugins[name] = plugin
	m.order = append(m.order, name)
	logger.DebugTagf("plugin", "Plugin Manager: Registered plugin '%s'", name)
	return nil
}

func (m *Manager) snapshot() []Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]Plugin, 0, len(m.order))
	for _, name := range m.order {
		list = append(list, m.plugins[name])
	}
	return list
}

// InitializePlugins calls Initialize on every registered plugin. A failing
// plugin is logged and skipped; the joined errors are returned.
func (m *Manager) InitializePlugins(api EditorAPI) error {
	plugins := m.snapshot()
	logger.DebugTagf("plugin", "Plugin Manager: Initializing %d plugins...", len(plugins))

	var errs []error
	for _, plugin := range plugins {
		if err := plugin.Initialize(api); err != nil {
			logger.Errorf("Plugin Manager: ERROR initializing plugin '%s': %v", plugin.Name(), err)
			errs = append(errs, fmt.Errorf("plugin '%s': %w", plugin.Name(), err))
			continue
		}
		logger.DebugTagf("plugin", "Plugin Manager: Initialized plugin '%s'", plugin.Name())
	}
	return errors.Join(errs...)
}

// ShutdownPlugins calls Shutdown on all registered plugins.
func (m *Manager) ShutdownPlugins() {
	plugins := m.snapshot()
	logger.DebugTagf("plugin", "Plugin Manager: Shutting down %d plugins...", len(plugins))
	for _, plugin := range plugins {
		if err := plugin.Shutdown(); err != nil {
			logger.Errorf("Plugin Manager: ERROR shutting down plugin '%s': %v", plugin.Name(), err)
		}
	}
}

// GetPlugin returns a registered plugin by name (e.g., for inter-plugin communication). Use cautiously.
func (m *Manager) GetPlugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, exists := m.plugins[name]
	return p, exists
}
