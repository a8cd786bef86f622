// Package signs holds the immutable sign catalog, the pure lifecycle
// decision logic and the Discord-markdown rendering of signs.
package signs

import (
	"encoding/json"
	"fmt"
	"os"
)

// Definition describes one sign from the sign pack file.
type Definition struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Difficulty    int    `json:"difficulty"`
	Description   string `json:"description"`
	Effect        string `json:"effect"`
	SuccessEffect string `json:"success_effect"`
	FailureEffect string `json:"failure_effect"`
}

// Catalog is the id-keyed lookup of sign definitions. It is built once
// at startup and read-only afterwards, so concurrent reads need no
// synchronization. Components receive it at construction time.
type Catalog struct {
	defs map[string]Definition
}

// NewCatalog builds a catalog from already-parsed definitions.
func NewCatalog(defs []Definition) *Catalog {
	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		m[d.ID] = d
	}
	return &Catalog{defs: m}
}

// LoadCatalog reads the sign pack file. A missing or malformed pack is
// a fatal startup condition; the caller is expected to abort.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sign pack: %w", err)
	}

	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse sign pack %s: %w", path, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("sign pack %s contains no signs", path)
	}
	return NewCatalog(defs), nil
}

// Get returns the definition for a sign id.
func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// Len returns the number of known signs.
func (c *Catalog) Len() int { return len(c.defs) }
