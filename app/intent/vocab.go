package intent

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veslov/newspulse/app/geo"
)

// Vocabulary is the rule classifier's knowledge of the dataset: category
// labels, source names, and a small gazetteer of place names.
type Vocabulary struct {
	Categories []string                `yaml:"categories"`
	Sources    []string                `yaml:"sources"`
	Locations  map[string]geo.Location `yaml:"-"`

	RawLocations map[string][2]float64 `yaml:"locations"`
}

// DefaultVocabulary covers the bundled dataset.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Categories: []string{
			"technology", "business", "world", "general",
			"local", "environment", "policy", "sustainability",
		},
		Sources: []string{
			"New York Times", "Reuters", "BBC News", "The Guardian",
			"Hindustan Times", "Times of India",
		},
		Locations: map[string]geo.Location{
			"palo alto":     {Lat: 37.4419, Lon: -122.1430},
			"san francisco": {Lat: 37.7749, Lon: -122.4194},
			"fresno":        {Lat: 36.7378, Lon: -119.7871},
			"new york":      {Lat: 40.7128, Lon: -74.0060},
			"london":        {Lat: 51.5074, Lon: -0.1278},
			"paris":         {Lat: 48.8566, Lon: 2.3522},
			"berlin":        {Lat: 52.5200, Lon: 13.4050},
			"tokyo":         {Lat: 35.6762, Lon: 139.6503},
		},
	}
}

// LoadVocabulary merges a YAML override file into the default vocabulary.
// Lists replace the defaults when present; locations are added to the
// gazetteer.
func LoadVocabulary(path string) (*Vocabulary, error) {
	vocab := DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}

	if len(override.Categories) > 0 {
		vocab.Categories = override.Categories
	}
	if len(override.Sources) > 0 {
		vocab.Sources = override.Sources
	}
	for name, coords := range override.RawLocations {
		vocab.Locations[strings.ToLower(name)] = geo.Location{Lat: coords[0], Lon: coords[1]}
	}

	return vocab, nil
}

// MatchCategory returns the known category mentioned in the text, if any.
func (v *Vocabulary) MatchCategory(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, category := range v.Categories {
		if containsWord(lowered, strings.ToLower(category)) {
			return category, true
		}
	}
	return "", false
}

// MatchSource returns the canonical source name mentioned in the text, if any.
func (v *Vocabulary) MatchSource(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, source := range v.Sources {
		if containsWord(lowered, strings.ToLower(source)) {
			return source, true
		}
	}
	return "", false
}

// MatchLocation returns gazetteer coordinates for a place mentioned in the
// text, if any.
func (v *Vocabulary) MatchLocation(text string) (*geo.Location, bool) {
	lowered := strings.ToLower(text)
	for name, location := range v.Locations {
		if containsWord(lowered, name) {
			loc := location
			return &loc, true
		}
	}
	return nil, false
}

// containsWord matches on word boundaries so "local" does not match
// "location".
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
