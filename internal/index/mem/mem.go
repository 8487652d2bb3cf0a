// Package mem provides an in-memory reference implementation of the
// index.Searcher contract. It exists so the planning and cursor layers
// can run end to end without an external index engine; matching and
// scoring are deliberately naive.
package mem

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"quarry/internal/index"
	"quarry/internal/pathutil"
	"quarry/pkg/model"
)

// Document is one indexed document: a path and flat string fields.
type Document struct {
	Path   string            `yaml:"path"`
	Fields map[string]string `yaml:"fields"`
}

// documentsFile is the YAML document-set shape consumed by LoadDocuments.
type documentsFile struct {
	Documents []Document `yaml:"documents"`
}

// LoadDocuments reads a YAML document set from a file.
func LoadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document set: %w", err)
	}
	var file documentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse document set: %w", err)
	}
	return file.Documents, nil
}

// Index is an in-memory searcher over a document set.
type Index struct {
	mu   sync.RWMutex
	def  *index.Definition
	docs []Document
}

// New creates an empty in-memory index for the definition.
func New(def *index.Definition) *Index {
	return &Index{def: def}
}

// Add indexes one document.
func (i *Index) Add(doc Document) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs = append(i.docs, doc)
}

// Load replaces the document set.
func (i *Index) Load(docs []Document) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs = append([]Document(nil), docs...)
}

// RequestString serializes the request in the engine's own syntax.
func (i *Index) RequestString(req *index.Request) string {
	var b strings.Builder
	b.WriteString("mem{")
	if req.SuggestText != "" {
		fmt.Fprintf(&b, "suggest=%q", req.SuggestText)
		b.WriteString("}")
		return b.String()
	}
	fmt.Fprintf(&b, "q=%q", req.Query)
	if req.ScopeMode != model.RestrictionNone && req.ScopeMode != "" {
		fmt.Fprintf(&b, " scope=%s:%s", req.ScopeMode, req.ScopePath)
	}
	for _, c := range req.Constraints {
		fmt.Fprintf(&b, " %s=%v", c.Field, c.Value)
	}
	for _, s := range req.Sort {
		dir := "asc"
		if s.Descending {
			dir = "desc"
		}
		fmt.Fprintf(&b, " sort=%s:%s", s.Field, dir)
	}
	for _, f := range req.FacetFields {
		fmt.Fprintf(&b, " facet=%s", f)
	}
	b.WriteString("}")
	return b.String()
}

// Estimate returns the exact match count; the in-memory engine can
// afford to compute it.
func (i *Index) Estimate(req *index.Request) int64 {
	return int64(len(i.matches(req)))
}

// Execute runs the request and returns the raw hit sequence.
func (i *Index) Execute(ctx context.Context, req *index.Request) (index.RowSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.SuggestText != "" {
		return index.NewSliceSource(i.suggest(req.SuggestText)), nil
	}

	matched := i.matches(req)
	tokens := tokenize(req.Query)

	var facets []index.Facet
	if len(req.FacetFields) > 0 {
		facets = i.countFacets(matched, req.FacetFields)
	}

	rows := make([]index.Row, 0, len(matched))
	for _, doc := range matched {
		score, hits := i.score(doc, tokens)
		rows = append(rows, &index.Match{
			Path:        doc.Path,
			Score:       score,
			Excerpts:    i.excerpts(doc, tokens),
			Facets:      facets,
			Explanation: fmt.Sprintf("sum of %d term hits", hits),
		})
	}
	sortRows(rows, matched, req.Sort)
	return index.NewSliceSource(rows), nil
}

// matches returns the documents satisfying the request, in document
// order.
func (i *Index) matches(req *index.Request) []Document {
	i.mu.RLock()
	defer i.mu.RUnlock()

	tokens := tokenize(req.Query)
	var out []Document
	for _, doc := range i.docs {
		if !inScope(doc.Path, req) {
			continue
		}
		if !i.containsAll(doc, tokens) {
			continue
		}
		ok := true
		for _, c := range req.Constraints {
			if doc.Fields[c.Field] != fmt.Sprint(c.Value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out
}

func inScope(docPath string, req *index.Request) bool {
	switch req.ScopeMode {
	case model.RestrictionExact:
		return docPath == req.ScopePath
	case model.RestrictionDirectChildren:
		return pathutil.Parent(docPath) == req.ScopePath
	case model.RestrictionAllChildren:
		return docPath == req.ScopePath || pathutil.IsAncestor(req.ScopePath, docPath)
	}
	return true
}

// containsAll checks that every token occurs in some analyzed field.
func (i *Index) containsAll(doc Document, tokens []string) bool {
	for _, tok := range tokens {
		found := false
		for _, p := range i.def.Properties {
			if !p.Analyzed {
				continue
			}
			if strings.Contains(strings.ToLower(doc.Fields[p.Name]), tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// score counts token occurrences across analyzed fields.
func (i *Index) score(doc Document, tokens []string) (float64, int) {
	hits := 0
	for _, tok := range tokens {
		for _, p := range i.def.Properties {
			if !p.Analyzed {
				continue
			}
			hits += strings.Count(strings.ToLower(doc.Fields[p.Name]), tok)
		}
	}
	if len(tokens) == 0 {
		return 1, 0
	}
	return float64(hits) / float64(len(tokens)), hits
}

// excerpts builds highlighted fragments per analyzed field containing
// a token. The bare excerpt column carries the first fragment.
func (i *Index) excerpts(doc Document, tokens []string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string)
	for _, p := range i.def.Properties {
		if !p.Analyzed {
			continue
		}
		value := doc.Fields[p.Name]
		if h, ok := highlight(value, tokens); ok {
			out[index.ExcerptColumn(p.Name)] = h
			if _, seen := out[index.ColumnExcerptPrefix]; !seen {
				out[index.ColumnExcerptPrefix] = h
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// highlight wraps the first occurrence of each token in <b> tags.
func highlight(value string, tokens []string) (string, bool) {
	lower := strings.ToLower(value)
	matched := false
	for _, tok := range tokens {
		idx := strings.Index(lower, tok)
		if idx < 0 {
			continue
		}
		matched = true
		value = value[:idx] + "<b>" + value[idx:idx+len(tok)] + "</b>" + value[idx+len(tok):]
		lower = strings.ToLower(value)
	}
	return value, matched
}

// countFacets counts field values across the matched documents,
// ordered by count descending then label, capped at the definition's
// facet limit.
func (i *Index) countFacets(docs []Document, fields []string) []index.Facet {
	counts := make(map[string]int)
	var labels []string
	for _, f := range fields {
		for _, doc := range docs {
			v, ok := doc.Fields[f]
			if !ok || v == "" {
				continue
			}
			if _, seen := counts[v]; !seen {
				labels = append(labels, v)
			}
			counts[v]++
		}
	}
	sort.Slice(labels, func(a, b int) bool {
		if counts[labels[a]] != counts[labels[b]] {
			return counts[labels[a]] > counts[labels[b]]
		}
		return labels[a] < labels[b]
	})
	limit := i.def.TopFacetCount
	if len(labels) > limit {
		labels = labels[:limit]
	}
	facets := make([]index.Facet, len(labels))
	for n, l := range labels {
		facets[n] = index.Facet{Label: l, Count: counts[l]}
	}
	return facets
}

// suggest returns vocabulary words extending the input, weighted by
// frequency.
func (i *Index) suggest(input string) []index.Row {
	i.mu.RLock()
	defer i.mu.RUnlock()

	prefix := strings.ToLower(input)
	freq := make(map[string]int)
	var words []string
	for _, doc := range i.docs {
		for _, p := range i.def.Properties {
			if !p.Analyzed {
				continue
			}
			for _, w := range strings.Fields(strings.ToLower(doc.Fields[p.Name])) {
				w = strings.Trim(w, ".,;:!?\"'()")
				if len(w) < 3 || !strings.HasPrefix(w, prefix) || w == prefix {
					continue
				}
				if _, seen := freq[w]; !seen {
					words = append(words, w)
				}
				freq[w]++
			}
		}
	}
	sort.Slice(words, func(a, b int) bool {
		if freq[words[a]] != freq[words[b]] {
			return freq[words[a]] > freq[words[b]]
		}
		return words[a] < words[b]
	})
	rows := make([]index.Row, len(words))
	for n, w := range words {
		rows[n] = &index.Suggestion{Text: w, Weight: float64(freq[w])}
	}
	return rows
}

// tokenize lowercases the query and strips the escaping applied by the
// query-text rewrite.
func tokenize(query string) []string {
	query = strings.ReplaceAll(query, "\\", "")
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		t = strings.Trim(t, "\"")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// sortRows orders rows by the requested sort fields, falling back to
// score descending then path.
func sortRows(rows []index.Row, docs []Document, fields []index.SortField) {
	byPath := make(map[string]Document, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
	}
	sort.SliceStable(rows, func(a, b int) bool {
		ra := rows[a].(*index.Match)
		rb := rows[b].(*index.Match)
		for _, f := range fields {
			va := byPath[ra.Path].Fields[f.Field]
			vb := byPath[rb.Path].Fields[f.Field]
			if va == vb {
				continue
			}
			if f.Descending {
				return va > vb
			}
			return va < vb
		}
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return ra.Path < rb.Path
	})
}
