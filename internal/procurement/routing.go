package procurement

import (
	"sort"
	"strings"

	"github.com/seamonger/procurement/internal/domain"
)

// RoutingTable maps a normalized product keyword to the suppliers registered for it,
// in registration order. It is append-only and not safe for concurrent use.
type RoutingTable struct {
	routes map[string][]string
}

// NewRoutingTable creates an empty routing table.
func NewRoutingTable() *RoutingTable {
	return &RoutingTable{routes: make(map[string][]string)}
}

// Register appends supplierID under keyword unless it is already there.
// It reports whether the table changed.
func (t *RoutingTable) Register(keyword, supplierID string) bool {
	key := domain.NormalizeKey(keyword)
	for _, id := range t.routes[key] {
		if id == supplierID {
			return false
		}
	}
	t.routes[key] = append(t.routes[key], supplierID)
	return true
}

// Candidates returns the union of suppliers for every keyword contained in the
// normalized product name, sorted by identifier.
func (t *RoutingTable) Candidates(product string) []string {
	normalized := domain.NormalizeKey(product)

	seen := make(map[string]struct{})
	for keyword, ids := range t.routes {
		if !strings.Contains(normalized, keyword) {
			continue
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a deep copy of the table.
func (t *RoutingTable) Snapshot() map[string][]string {
	out := make(map[string][]string, len(t.routes))
	for k, ids := range t.routes {
		out[k] = append([]string(nil), ids...)
	}
	return out
}
