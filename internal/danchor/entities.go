package danchor

import (
	"sort"

	"github.com/hexproxy/engine/internal/anchor"
)

// Entity is one category or brand to compute D_anchor rows for: every
// anchor's distance to the nearest site carrying this entity.
type Entity struct {
	Kind        string // "category" or "brand"
	ID          string
	SourceNodes []int32 // node indices of every site carrying this entity
}

// CategoriesOf groups sites by category id, producing one Entity per
// distinct category with every site that lists it as a source. D_anchor is
// computed from every site carrying that category, not just the nearest
// one; multi-source SSSP finds the nearest automatically.
func CategoriesOf(sites []anchor.Site) []Entity {
	return groupBy(sites, "category", func(s anchor.Site) []string { return s.CategoryIDs })
}

// BrandsOf groups sites by brand id, same shape as CategoriesOf.
func BrandsOf(sites []anchor.Site) []Entity {
	return groupBy(sites, "brand", func(s anchor.Site) []string { return s.BrandIDs })
}

func groupBy(sites []anchor.Site, kind string, keysOf func(anchor.Site) []string) []Entity {
	byKey := make(map[string][]int32)
	for _, s := range sites {
		for _, k := range keysOf(s) {
			byKey[k] = append(byKey[k], s.NodeIndex)
		}
	}

	ids := make([]string, 0, len(byKey))
	for id := range byKey {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entities := make([]Entity, 0, len(ids))
	for _, id := range ids {
		nodes := byKey[id]
		sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
		entities = append(entities, Entity{Kind: kind, ID: id, SourceNodes: nodes})
	}
	return entities
}
