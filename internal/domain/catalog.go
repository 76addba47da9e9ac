package domain

import (
	"fmt"
	"strings"
)

// Catalog is the ordered set of canonical dungeon names in rotation for the
// current season. Order is meaningful: worst-dungeon ties break on it.
type Catalog []string

// NewCatalog validates the configured dungeon list. Names must be non-blank
// and unique; order is preserved.
func NewCatalog(names []string) (Catalog, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("dungeon catalog is empty")
	}
	seen := make(map[string]struct{}, len(names))
	catalog := make(Catalog, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("dungeon catalog contains a blank name")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("dungeon catalog contains duplicate %q", name)
		}
		seen[name] = struct{}{}
		catalog = append(catalog, name)
	}
	return catalog, nil
}

func (c Catalog) Contains(dungeon string) bool {
	for _, name := range c {
		if name == dungeon {
			return true
		}
	}
	return false
}
