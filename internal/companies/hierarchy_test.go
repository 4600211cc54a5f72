package companies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(id int64) *int64 { return &id }

func sampleGroup() []Company {
	return []Company{
		{ID: 5, Name: "Branch Surabaya", CompanyType: TypeBranch, ParentID: ptr(2), RootID: 1, Level: 3},
		{ID: 2, Name: "Retail Co", CompanyType: TypeSubsidiary, ParentID: ptr(1), RootID: 1, Level: 2},
		{ID: 1, Name: "Odyssey Holding", CompanyType: TypeHolding, RootID: 1, Level: 1},
		{ID: 3, Name: "Logistics Co", CompanyType: TypeSubsidiary, ParentID: ptr(1), RootID: 1, Level: 2},
		{ID: 4, Name: "Branch Jakarta", CompanyType: TypeBranch, ParentID: ptr(2), RootID: 1, Level: 3},
		{ID: 6, Name: "Atlas Holding", CompanyType: TypeHolding, RootID: 6, Level: 1},
	}
}

func names(nodes []*HierarchyNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuildHierarchySortsByNameAtEveryLevel(t *testing.T) {
	forest := BuildHierarchy(sampleGroup())

	require.Len(t, forest, 2)
	assert.Equal(t, []string{"Atlas Holding", "Odyssey Holding"}, names(forest))

	odyssey := forest[1]
	assert.Equal(t, []string{"Logistics Co", "Retail Co"}, names(odyssey.Children))
	assert.Equal(t, []string{"Branch Jakarta", "Branch Surabaya"}, names(odyssey.Children[1].Children))
	assert.Empty(t, forest[0].Children)
	assert.NotNil(t, forest[0].Children, "leaf children encode as an empty list")
}

func TestBuildHierarchyPlacesEveryNodeOnceAtItsLevel(t *testing.T) {
	input := sampleGroup()
	forest := BuildHierarchy(input)

	assert.Equal(t, len(input), CountNodes(forest))

	seen := map[int64]int{}
	var walk func(nodes []*HierarchyNode, depth int)
	walk = func(nodes []*HierarchyNode, depth int) {
		for _, n := range nodes {
			seen[n.ID]++
			assert.Equal(t, n.Level, depth, "company %d", n.ID)
			walk(n.Children, depth+1)
		}
	}
	walk(forest, 1)
	for _, c := range input {
		assert.Equal(t, 1, seen[c.ID], "company %d", c.ID)
	}
}

func TestBuildHierarchyIndependentOfInputOrder(t *testing.T) {
	input := sampleGroup()
	reversed := make([]Company, len(input))
	for i, c := range input {
		reversed[len(input)-1-i] = c
	}
	assert.Equal(t, BuildHierarchy(input), BuildHierarchy(reversed))
}

func TestBuildHierarchyOmitsOrphansAndCycles(t *testing.T) {
	input := append(sampleGroup(),
		Company{ID: 7, Name: "Lost Branch", CompanyType: TypeBranch, ParentID: ptr(99), Level: 3},
		Company{ID: 8, Name: "Loop A", CompanyType: TypeSubsidiary, ParentID: ptr(9), Level: 2},
		Company{ID: 9, Name: "Loop B", CompanyType: TypeSubsidiary, ParentID: ptr(8), Level: 2},
	)
	forest := BuildHierarchy(input)
	assert.Equal(t, 6, CountNodes(forest))

	orphans := Orphans(input)
	ids := make([]int64, len(orphans))
	for i, o := range orphans {
		ids[i] = o.ID
	}
	assert.Equal(t, []int64{7, 8, 9}, ids)
}

func TestBuildHierarchyUsesCollationOrder(t *testing.T) {
	input := []Company{
		{ID: 1, Name: "fox Holding", CompanyType: TypeHolding, Level: 1},
		{ID: 2, Name: "Delta Holding", CompanyType: TypeHolding, Level: 1},
		{ID: 3, Name: "Échelle Holding", CompanyType: TypeHolding, Level: 1},
		{ID: 4, Name: "beta Holding", CompanyType: TypeHolding, Level: 1},
	}
	assert.Equal(t, []string{"beta Holding", "Delta Holding", "Échelle Holding", "fox Holding"}, names(BuildHierarchy(input)))
}

func TestBuildHierarchyEmpty(t *testing.T) {
	forest := BuildHierarchy(nil)
	assert.NotNil(t, forest)
	assert.Empty(t, forest)
}
