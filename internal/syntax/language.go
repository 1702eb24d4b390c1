// internal/syntax/language.go
package syntax

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	gosrc "github.com/smacker/go-tree-sitter/golang"
	jssrc "github.com/smacker/go-tree-sitter/javascript" // JS parser used for JS and JSON
	pythonsrc "github.com/smacker/go-tree-sitter/python"
	rustsrc "github.com/smacker/go-tree-sitter/rust"

	"github.com/bethropolis/ebb/internal/logger"
)

// Language pairs a tree-sitter grammar with the file extensions it handles.
type Language struct {
	Name           string
	TreeSitterLang *sitter.Language
	Extensions     []string
}

// Registry maps file extensions and names to languages.
type Registry struct {
	languages     []*Language
	extToLanguage map[string]*Language
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extToLanguage: make(map[string]*Language)}
}

// DefaultRegistry returns a registry with the bundled grammars.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&Language{Name: "Go", TreeSitterLang: gosrc.GetLanguage(), Extensions: []string{".go"}})
	r.Register(&Language{Name: "Python", TreeSitterLang: pythonsrc.GetLanguage(), Extensions: []string{".py", ".pyw"}})
	r.Register(&Language{Name: "JavaScript", TreeSitterLang: jssrc.GetLanguage(), Extensions: []string{".js", ".mjs", ".cjs"}})
	r.Register(&Language{Name: "JSON", TreeSitterLang: jssrc.GetLanguage(), Extensions: []string{".json"}})
	r.Register(&Language{Name: "Rust", TreeSitterLang: rustsrc.GetLanguage(), Extensions: []string{".rs"}})
	return r
}

// Register adds a language. A later registration wins an extension.
func (r *Registry) Register(lang *Language) {
	r.languages = append(r.languages, lang)
	for _, ext := range lang.Extensions {
		lowerExt := strings.ToLower(ext)
		if existing, ok := r.extToLanguage[lowerExt]; ok {
			logger.Warnf("Extension %s already registered to %s, overriding with %s", lowerExt, existing.Name, lang.Name)
		}
		r.extToLanguage[lowerExt] = lang
	}
	logger.DebugTagf("syntax", "Registered language: %s with extensions: %v", lang.Name, lang.Extensions)
}

// ForFile returns the language for filePath's extension, or nil.
func (r *Registry) ForFile(filePath string) *Language {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return nil
	}
	return r.extToLanguage[ext]
}

// ByName finds a language by case-insensitive name, or nil.
func (r *Registry) ByName(name string) *Language {
	for _, lang := range r.languages {
		if strings.EqualFold(lang.Name, name) {
			return lang
		}
	}
	return nil
}

// Names lists the registered language names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.languages))
	for i, lang := range r.languages {
		names[i] = lang.Name
	}
	sort.Strings(names)
	return names
}
