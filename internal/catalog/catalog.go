// Package catalog defines the per-request schema catalog: the set of tenant
// views and their columns the SQL generation pass is allowed to reference.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Column is one view column with its declared warehouse type. Names are
// case-sensitive literal tokens; the generation pass must copy them verbatim.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Catalog maps a fully qualified view name ("<tenant>.<view>") to its columns
// in declaration order. It is built fresh from warehouse metadata on every
// request and never shared across requests.
type Catalog map[string][]Column

func QualifiedViewName(tenantID, view string) string {
	return tenantID + "." + view
}

// Views returns the fully qualified view names in lexical order, so log
// lines and listings read the same run to run.
func (c Catalog) Views() []string {
	views := make([]string, 0, len(c))
	for view := range c {
		views = append(views, view)
	}
	sort.Strings(views)
	return views
}

func (c Catalog) IsEmpty() bool {
	return len(c) == 0
}

// Validate checks the scoping invariants: every key belongs to the given
// tenant schema and names a vw_-prefixed view.
func (c Catalog) Validate(tenantID string) error {
	for qualified := range c {
		schema, view, ok := strings.Cut(qualified, ".")
		if !ok {
			return fmt.Errorf("catalog entry %q is not schema-qualified", qualified)
		}
		if schema != tenantID {
			return fmt.Errorf("catalog entry %q does not belong to tenant %q", qualified, tenantID)
		}
		if !strings.HasPrefix(view, "vw_") {
			return fmt.Errorf("catalog entry %q is not a vw_ view", qualified)
		}
	}
	return nil
}
