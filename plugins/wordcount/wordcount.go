// plugins/wordcount/wordcount.go
package wordcount

import (
	"fmt"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/bethropolis/ebb/internal/plugin"
)

// Ensure WordCount implements plugin.Plugin
var _ plugin.Plugin = (*WordCount)(nil)

// WordCount is a simple plugin to count lines, words, characters and bytes.
type WordCount struct {
	api plugin.EditorAPI
}

// New creates a new instance of the WordCount plugin.
func New() plugin.Plugin {
	return &WordCount{}
}

// Name returns the unique name of the plugin.
func (p *WordCount) Name() string {
	return "wordcount"
}

// Initialize registers the wc command.
func (p *WordCount) Initialize(api plugin.EditorAPI) error {
	p.api = api
	if err := api.RegisterCommand("wc", p.executeWordCount); err != nil {
		return fmt.Errorf("failed to register 'wc' command: %w", err)
	}
	return nil
}

// Shutdown performs cleanup (nothing needed for this simple plugin).
func (p *WordCount) Shutdown() error {
	return nil
}

func (p *WordCount) executeWordCount(args []string) error {
	if p.api == nil {
		return fmt.Errorf("wordcount plugin not initialized with API")
	}

	content := p.api.GetBufferBytes()
	p.api.SetStatusMessage("Lines: %d, Words: %d, Chars: %d, Bytes: %d",
		p.api.GetBufferLineCount(),
		countWords(content),
		uniseg.GraphemeClusterCount(string(content)),
		len(content))
	return nil
}

// countWords counts Unicode word segments that contain a letter or digit.
func countWords(data []byte) int {
	count := 0
	state := -1
	var word []byte
	for len(data) > 0 {
		word, data, state = uniseg.FirstWord(data, state)
		for _, r := range string(word) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				count++
				break
			}
		}
	}
	return count
}
