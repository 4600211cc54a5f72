package companies

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BuildHierarchy arranges a flat company list into a forest rooted at the
// companies without a parent. Children are ordered by name at every level.
// Companies whose parent is missing from the input are left out; see Orphans.
func BuildHierarchy(companies []Company) []*HierarchyNode {
	children := make(map[int64][]Company, len(companies))
	roots := make([]Company, 0)
	for _, c := range companies {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	sorter := newNameSorter()
	visited := make(map[int64]bool, len(companies))
	var attach func(c Company) *HierarchyNode
	attach = func(c Company) *HierarchyNode {
		visited[c.ID] = true
		node := &HierarchyNode{Company: c, Children: []*HierarchyNode{}}
		kids := children[c.ID]
		sorter.sort(kids)
		for _, child := range kids {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, attach(child))
		}
		return node
	}

	sorter.sort(roots)
	forest := make([]*HierarchyNode, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, attach(root))
	}
	return forest
}

// Orphans returns the companies that BuildHierarchy cannot place because no
// chain of parents leads them to a root.
func Orphans(companies []Company) []Company {
	placed := make(map[int64]bool, len(companies))
	var walk func(nodes []*HierarchyNode)
	walk = func(nodes []*HierarchyNode) {
		for _, n := range nodes {
			placed[n.ID] = true
			walk(n.Children)
		}
	}
	walk(BuildHierarchy(companies))

	orphans := make([]Company, 0)
	for _, c := range companies {
		if !placed[c.ID] {
			orphans = append(orphans, c)
		}
	}
	return orphans
}

// CountNodes returns the number of nodes in a forest.
func CountNodes(forest []*HierarchyNode) int {
	total := 0
	for _, n := range forest {
		total += 1 + CountNodes(n.Children)
	}
	return total
}

type nameSorter struct {
	collator *collate.Collator
}

func newNameSorter() nameSorter {
	return nameSorter{collator: collate.New(language.Und)}
}

func (s nameSorter) sort(list []Company) {
	sort.SliceStable(list, func(i, j int) bool {
		if cmp := s.collator.CompareString(list[i].Name, list[j].Name); cmp != 0 {
			return cmp < 0
		}
		return list[i].ID < list[j].ID
	})
}
