package domain

import "sort"

// LanguageShare is a language's accumulated size and its share of the total.
type LanguageShare struct {
	Name       string  `json:"name"`
	Color      string  `json:"color,omitempty"`
	Size       int64   `json:"size"`
	Percentage float64 `json:"percentage"`
}

type languageEntry struct {
	size  int64
	color string
}

// LanguageTally accumulates language sizes across repositories.
// The color of a language is the one seen first.
type LanguageTally struct {
	entries map[string]*languageEntry
}

// NewLanguageTally returns an empty tally.
func NewLanguageTally() *LanguageTally {
	return &LanguageTally{entries: make(map[string]*languageEntry)}
}

// Add folds a single edge into the tally. Edges without a name are ignored.
func (t *LanguageTally) Add(edge LanguageEdge) {
	if edge.Name == "" {
		return
	}
	if e, ok := t.entries[edge.Name]; ok {
		e.size += edge.Size
		return
	}
	t.entries[edge.Name] = &languageEntry{size: edge.Size, color: edge.Color}
}

// AddRepository folds every language edge of repo into the tally.
func (t *LanguageTally) AddRepository(repo RepositoryDescriptor) {
	for _, edge := range repo.Languages {
		t.Add(edge)
	}
}

// Total returns the accumulated size across all languages.
func (t *LanguageTally) Total() int64 {
	var total int64
	for _, e := range t.entries {
		total += e.size
	}
	return total
}

// Shares returns every language sorted by size, largest first, ties by name.
// Percentages are 0 when the total size is 0.
func (t *LanguageTally) Shares() []LanguageShare {
	total := t.Total()
	shares := make([]LanguageShare, 0, len(t.entries))
	for name, e := range t.entries {
		var pct float64
		if total > 0 {
			pct = float64(e.size) / float64(total) * 100
		}
		shares = append(shares, LanguageShare{Name: name, Color: e.color, Size: e.size, Percentage: pct})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Size != shares[j].Size {
			return shares[i].Size > shares[j].Size
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}
