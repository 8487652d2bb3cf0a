// Package index provides the registry of full-text index instances:
// static definitions loaded from YAML, a reference-counted handle
// tracker, candidate lookup for a filter, and the opaque searcher
// contract the planning layer executes against.
package index

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"quarry/internal/pathutil"
)

// Errors
var (
	ErrDefinitionLoadFailed = errors.New("failed to load index definitions")
	ErrEmptyPath            = errors.New("index path cannot be empty")
	ErrRelativePath         = errors.New("index path must be absolute")
	ErrEmptyType            = errors.New("index type cannot be empty")
	ErrNoProperties         = errors.New("index must declare at least one property")
	ErrDuplicateProperty    = errors.New("duplicate property in index definition")
	ErrDuplicateDefinition  = errors.New("duplicate index definition")
)

// PropertyDefinition describes one indexed property.
type PropertyDefinition struct {
	// Name is the property name as queries reference it.
	Name string `yaml:"name"`
	// Field is the index-side field name. Defaults to Name; a resolved
	// restriction is reported under this name.
	Field string `yaml:"field"`
	// Analyzed properties participate in full-text matching.
	Analyzed bool `yaml:"analyzed"`
	// Ordered properties can serve sort orders.
	Ordered bool `yaml:"ordered"`
	// Sync properties can be resolved synchronously against index
	// metadata at planning time.
	Sync bool `yaml:"sync"`
	// Facets enables facet counting on the property.
	Facets bool `yaml:"facets"`
}

// ResolvedField returns the index-side field name for the property.
func (p PropertyDefinition) ResolvedField() string {
	if p.Field != "" {
		return p.Field
	}
	return p.Name
}

// Definition holds the static metadata of one index.
type Definition struct {
	// Path is the logical index path, e.g. "/indexes/articles".
	Path string `yaml:"path"`
	// Type is the index-type tag, e.g. "fulltext".
	Type string `yaml:"type"`
	// EntryCount approximates the number of indexed documents.
	EntryCount int64 `yaml:"entryCount"`
	// CostPerQuery and CostPerEntry parameterize plan cost.
	CostPerQuery float64 `yaml:"costPerQuery"`
	CostPerEntry float64 `yaml:"costPerEntry"`
	// DeclaringTypes restricts the index to node types. Empty indexes
	// everything.
	DeclaringTypes []string `yaml:"declaringTypes"`
	// IncludedPaths restricts the index scope to subtrees. Empty covers
	// the whole store.
	IncludedPaths []string `yaml:"includedPaths"`
	// PathPrefix is set when the index covers a mounted subtree and
	// emits paths relative to it. Empty for indexes emitting absolute
	// store paths.
	PathPrefix string `yaml:"pathPrefix"`
	// UniquePaths guarantees the index never emits a path twice.
	UniquePaths bool `yaml:"uniquePaths"`
	// TopFacetCount is the configured facet-count limit.
	TopFacetCount int `yaml:"topFacetCount"`
	// SyncNodeTypes marks node-type restrictions as synchronously
	// satisfiable against index metadata.
	SyncNodeTypes bool `yaml:"syncNodeTypes"`
	// Suggest enables suggestion/spell-check queries.
	Suggest bool `yaml:"suggest"`
	// Properties are the indexed property definitions.
	Properties []PropertyDefinition `yaml:"properties"`
}

// Name returns the last segment of the index path.
func (d *Definition) Name() string {
	return pathutil.Name(d.Path)
}

// Property returns the definition of the named property, or nil.
func (d *Definition) Property(name string) *PropertyDefinition {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			return &d.Properties[i]
		}
	}
	return nil
}

// HasAnalyzedProperty reports whether any property participates in
// full-text matching.
func (d *Definition) HasAnalyzedProperty() bool {
	for _, p := range d.Properties {
		if p.Analyzed {
			return true
		}
	}
	return false
}

// DeclaresType reports whether the index covers the node type.
func (d *Definition) DeclaresType(nodeType string) bool {
	for _, t := range d.DeclaringTypes {
		if t == nodeType {
			return true
		}
	}
	return false
}

// CoversPath reports whether the path falls inside the index scope.
func (d *Definition) CoversPath(p string) bool {
	if len(d.IncludedPaths) == 0 {
		return true
	}
	for _, inc := range d.IncludedPaths {
		if inc == p || pathutil.IsAncestor(inc, p) {
			return true
		}
	}
	return false
}

// definitionsFile is the YAML document shape.
type definitionsFile struct {
	Indexes []Definition `yaml:"indexes"`
}

// LoadDefinitions loads index definitions from a YAML file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefinitionLoadFailed, err)
	}
	return LoadDefinitionsFromBytes(data)
}

// LoadDefinitionsFromBytes parses index definitions from YAML bytes.
func LoadDefinitionsFromBytes(data []byte) ([]Definition, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefinitionLoadFailed, err)
	}

	seen := make(map[string]bool)
	for i := range file.Indexes {
		d := &file.Indexes[i]
		if err := ValidateDefinition(d); err != nil {
			return nil, fmt.Errorf("index %q: %w", d.Path, err)
		}
		if seen[d.Path] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDefinition, d.Path)
		}
		seen[d.Path] = true
	}
	return file.Indexes, nil
}

// ValidateDefinition validates a single definition and applies
// defaults for unset cost parameters.
func ValidateDefinition(d *Definition) error {
	if d.Path == "" {
		return ErrEmptyPath
	}
	if !strings.HasPrefix(d.Path, "/") {
		return ErrRelativePath
	}
	if d.Type == "" {
		return ErrEmptyType
	}
	if len(d.Properties) == 0 {
		return ErrNoProperties
	}

	seen := make(map[string]bool)
	for _, p := range d.Properties {
		if p.Name == "" {
			return fmt.Errorf("property name cannot be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("property %q: %w", p.Name, ErrDuplicateProperty)
		}
		seen[p.Name] = true
	}

	if d.EntryCount <= 0 {
		d.EntryCount = 1000
	}
	if d.CostPerQuery <= 0 {
		d.CostPerQuery = 2
	}
	if d.CostPerEntry <= 0 {
		d.CostPerEntry = 1
	}
	if d.TopFacetCount <= 0 {
		d.TopFacetCount = 10
	}
	return nil
}
