package data

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/willfong/fund-playground/internal/utils"
)

//go:embed words/*.json
var dataFiles embed.FS

// WordList holds the vocabulary used for transaction descriptions
type WordList struct {
	Words []string `json:"words"`
}

var (
	instance *WordList
	once     sync.Once
	loadErr  error
)

// Load loads the word list from embedded files
// This is thread-safe and will only load data once
func Load() (*WordList, error) {
	once.Do(func() {
		instance = &WordList{}
		loadErr = instance.loadAll()
	})

	if loadErr != nil {
		return nil, loadErr
	}
	return instance, nil
}

func (w *WordList) loadAll() error {
	data, err := dataFiles.ReadFile("words/lorem.json")
	if err != nil {
		return fmt.Errorf("failed to read lorem.json: %w", err)
	}
	if err := json.Unmarshal(data, w); err != nil {
		return fmt.Errorf("failed to parse lorem.json: %w", err)
	}
	if len(w.Words) == 0 {
		return fmt.Errorf("lorem.json contains no words")
	}
	return nil
}

// Sentence returns a capitalized sentence ending in a period. The word count
// varies between 60% and 140% of nbWords, never below one.
func (w *WordList) Sentence(rng *utils.Random, nbWords int) string {
	if nbWords <= 0 {
		return ""
	}

	n := rng.IntRange(nbWords*60/100, nbWords*140/100)
	if n < 1 {
		n = 1
	}

	words := make([]string, n)
	for i := range words {
		words[i] = rng.PickString(w.Words)
	}

	sentence := strings.Join(words, " ")
	first, size := utf8.DecodeRuneInString(sentence)
	return string(unicode.ToUpper(first)) + sentence[size:] + "."
}
