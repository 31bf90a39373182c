// Package lexicon holds the category keyword table and the per-user overlays
// layered on top of it at lookup time.
package lexicon

import (
	"fmt"
	"os"

	"github.com/Veraticus/finshare-ai/internal/model"
	"gopkg.in/yaml.v3"
)

// Entry is one category and its trigger keywords.
type Entry struct {
	Category model.Category `yaml:"name"`
	Keywords []string       `yaml:"keywords"`
}

// Lexicon is the process-wide base keyword table. It is read-only once built.
type Lexicon struct {
	keywords   map[model.Category][]string
	categories []model.Category
}

// New builds a lexicon from entries. Keywords are normalized and de-duplicated
// per category; the Other fallback is appended when missing.
func New(entries []Entry) (*Lexicon, error) {
	l := &Lexicon{keywords: make(map[model.Category][]string, len(entries)+1)}

	for i, e := range entries {
		if e.Category == "" {
			return nil, fmt.Errorf("lexicon entry %d: category name is required", i)
		}
		if _, dup := l.keywords[e.Category]; dup {
			return nil, fmt.Errorf("lexicon entry %d: duplicate category %q", i, e.Category)
		}
		l.categories = append(l.categories, e.Category)
		l.keywords[e.Category] = dedupe(e.Keywords)
	}

	if _, ok := l.keywords[model.CategoryOther]; !ok {
		l.categories = append(l.categories, model.CategoryOther)
		l.keywords[model.CategoryOther] = nil
	}

	return l, nil
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	l, err := New(DefaultEntries())
	if err != nil {
		panic(fmt.Sprintf("built-in lexicon is invalid: %v", err))
	}
	return l
}

type lexiconFile struct {
	Categories []Entry `yaml:"categories"`
}

// LoadFile reads a YAML lexicon of the form
//
//	categories:
//	  - name: Food & Dining
//	    keywords: [restaurant, cafe]
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("lexicon file %s defines no categories", path)
	}

	return New(f.Categories)
}

// Loaded reports whether the lexicon is ready to serve lookups.
func (l *Lexicon) Loaded() bool {
	return l != nil && len(l.categories) > 0
}

// Categories returns the category labels in catalog order.
func (l *Lexicon) Categories() []model.Category {
	out := make([]model.Category, len(l.categories))
	copy(out, l.categories)
	return out
}

// Keywords returns the base keywords of a category.
func (l *Lexicon) Keywords(category model.Category) []string {
	return l.keywords[category]
}

// Has reports whether the lexicon knows a category.
func (l *Lexicon) Has(category model.Category) bool {
	_, ok := l.keywords[category]
	return ok
}

// HasKeyword reports whether token is one of the category's base keywords.
func (l *Lexicon) HasKeyword(category model.Category, token string) bool {
	for _, kw := range l.keywords[category] {
		if kw == token {
			return true
		}
	}
	return false
}

// Effective returns base ∪ overlay for one user, in catalog order. A nil
// overlay or unknown user yields the base lexicon.
func (l *Lexicon) Effective(overlay *Overlay, userID string) []Entry {
	var extra map[model.Category][]string
	if overlay != nil && userID != "" {
		extra = overlay.Snapshot(userID)
	}

	entries := make([]Entry, 0, len(l.categories))
	for _, cat := range l.categories {
		base := l.keywords[cat]
		added := extra[cat]
		if len(added) == 0 {
			entries = append(entries, Entry{Category: cat, Keywords: base})
			continue
		}

		merged := make([]string, 0, len(base)+len(added))
		merged = append(merged, base...)
		for _, tok := range added {
			if !l.HasKeyword(cat, tok) {
				merged = append(merged, tok)
			}
		}
		entries = append(entries, Entry{Category: cat, Keywords: merged})
	}

	return entries
}

func dedupe(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = Normalize(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
