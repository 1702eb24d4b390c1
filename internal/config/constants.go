package config

// Base application details
const AppName = "ebb"
const DefaultConfigFileName = "config.toml" // Main config file
const Version = "0.1.0"

// These could be moved to NewDefaultConfig(), keeping here for now
const DefaultTabWidth = 4
const DefaultMaxUndo = 100
const SystemClipboard = false
