package domain

import (
	"slices"
	"strconv"
)

type Complexity string

const (
	ComplexityBasic        Complexity = "basic"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// Valid reports whether c is unset or one of the known levels.
func (c Complexity) Valid() bool {
	switch c {
	case "", ComplexityBasic, ComplexityIntermediate, ComplexityAdvanced:
		return true
	}
	return false
}

type SearchStrategy string

const (
	StrategyExact    SearchStrategy = "exact"
	StrategyFuzzy    SearchStrategy = "fuzzy"
	StrategyFullText SearchStrategy = "fulltext"
)

// CommandRecord is one documented command page. Records are never mutated
// once they are part of a loaded snapshot.
type CommandRecord struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Section       int        `json:"section"`
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	Complexity    Complexity `json:"complexity,omitempty"`
	IsCommon      bool       `json:"isCommon"`
	Keywords      []string   `json:"keywords,omitempty"`
	SearchContent string     `json:"searchContent,omitempty"`
}

// CommandID derives the stable record key from a name and section.
func CommandID(name string, section int) string {
	return name + "." + strconv.Itoa(section)
}

// IndexSnapshot is the unit of lifecycle handed to the engine by the
// index-building pipeline. Index values are sets; duplicates are ignored.
type IndexSnapshot struct {
	Commands        map[string]CommandRecord `json:"commands"`
	InvertedIndex   map[string][]string      `json:"invertedIndex"`
	CategoryIndex   map[string][]string      `json:"categoryIndex"`
	ComplexityIndex map[string][]string      `json:"complexityIndex"`
}

// Match names the field and token that satisfied a query.
type Match struct {
	Field string `json:"field"`
	Token string `json:"token"`
}

type SearchResult struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Section        int            `json:"section"`
	Title          string         `json:"title,omitempty"`
	Description    string         `json:"description,omitempty"`
	Category       string         `json:"category,omitempty"`
	Complexity     Complexity     `json:"complexity,omitempty"`
	IsCommon       bool           `json:"isCommon"`
	Keywords       []string       `json:"keywords,omitempty"`
	Score          float64        `json:"score"`
	IsExactMatch   bool           `json:"isExactMatch"`
	SearchStrategy SearchStrategy `json:"searchStrategy"`
	Matches        []Match        `json:"matches,omitempty"`
}

type RelatedCommand struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Section     int        `json:"section"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Complexity  Complexity `json:"complexity,omitempty"`
	IsCommon    bool       `json:"isCommon"`
	Score       float64    `json:"score"`
}

// SearchOptions mirrors the search call contract. Section and Limit are
// pointers so that an explicit zero can be told apart from "not given".
type SearchOptions struct {
	Query          string     `json:"query"`
	Section        *int       `json:"section,omitempty"`
	Complexity     Complexity `json:"complexity,omitempty"`
	Category       string     `json:"category,omitempty"`
	CommonOnly     bool       `json:"commonOnly,omitempty"`
	Limit          *int       `json:"limit,omitempty"`
	IncludeMatches bool       `json:"includeMatches,omitempty"`
}

// Int returns a pointer to n, for the optional integer options.
func Int(n int) *int {
	return &n
}

type Stats struct {
	Commands     int                `json:"commands"`
	Names        int                `json:"names"`
	Tokens       int                `json:"tokens"`
	Categories   int                `json:"categories"`
	ByComplexity map[Complexity]int `json:"byComplexity,omitempty"`
	Generation   uint64             `json:"generation"`
}

// NewSearchResult projects a record into a result without strategy data.
// The result owns its slices.
func NewSearchResult(rec CommandRecord) SearchResult {
	return SearchResult{
		ID:          rec.ID,
		Name:        rec.Name,
		Section:     rec.Section,
		Title:       rec.Title,
		Description: rec.Description,
		Category:    rec.Category,
		Complexity:  rec.Complexity,
		IsCommon:    rec.IsCommon,
		Keywords:    slices.Clone(rec.Keywords),
	}
}

func NewRelatedCommand(rec CommandRecord, score float64) RelatedCommand {
	return RelatedCommand{
		ID:          rec.ID,
		Name:        rec.Name,
		Section:     rec.Section,
		Title:       rec.Title,
		Description: rec.Description,
		Category:    rec.Category,
		Complexity:  rec.Complexity,
		IsCommon:    rec.IsCommon,
		Score:       score,
	}
}
