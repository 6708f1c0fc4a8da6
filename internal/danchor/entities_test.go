package danchor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexproxy/engine/internal/anchor"
	"github.com/hexproxy/engine/internal/danchor"
)

func sitesForS5() []anchor.Site {
	// A category with a POI only at node 0 (anchor 10).
	return []anchor.Site{
		{SiteID: "site-a", AnchorIntID: 10, NodeIndex: 0, CategoryIDs: []string{"grocery"}},
		{SiteID: "site-b", AnchorIntID: 20, NodeIndex: 2, CategoryIDs: []string{"pharmacy"}},
	}
}

func TestCategoriesOf_GroupsByCategory(t *testing.T) {
	entities := danchor.CategoriesOf(sitesForS5())
	require.Len(t, entities, 2)

	byID := make(map[string]danchor.Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
		assert.Equal(t, "category", e.Kind)
	}
	require.Contains(t, byID, "grocery")
	assert.Equal(t, []int32{0}, byID["grocery"].SourceNodes)
	require.Contains(t, byID, "pharmacy")
	assert.Equal(t, []int32{2}, byID["pharmacy"].SourceNodes)
}

func TestCategoriesOf_SortedByID(t *testing.T) {
	entities := danchor.CategoriesOf(sitesForS5())
	require.Len(t, entities, 2)
	assert.Equal(t, "grocery", entities[0].ID)
	assert.Equal(t, "pharmacy", entities[1].ID)
}

func TestBrandsOf_IgnoresSitesWithoutBrand(t *testing.T) {
	sites := []anchor.Site{
		{SiteID: "a", AnchorIntID: 1, NodeIndex: 0, BrandIDs: []string{"acme"}},
		{SiteID: "b", AnchorIntID: 2, NodeIndex: 1},
	}
	entities := danchor.BrandsOf(sites)
	require.Len(t, entities, 1)
	assert.Equal(t, "acme", entities[0].ID)
	assert.Equal(t, []int32{0}, entities[0].SourceNodes)
}
