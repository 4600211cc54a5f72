package accounts

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// BuildTree arranges one company's accounts into a forest ordered by code and
// fills in the displayed balance of every node.
func BuildTree(list []Account) []*Node {
	children := make(map[int64][]Account, len(list))
	roots := make([]Account, 0)
	for _, a := range list {
		if a.ParentID == nil {
			roots = append(roots, a)
			continue
		}
		children[*a.ParentID] = append(children[*a.ParentID], a)
	}

	var attach func(a Account) *Node
	attach = func(a Account) *Node {
		node := &Node{Account: a, Children: []*Node{}}
		kids := children[a.ID]
		sortByCode(kids)
		for _, child := range kids {
			node.Children = append(node.Children, attach(child))
		}
		if a.IsPostable {
			node.DisplayBalance = a.Balance
		} else {
			total := decimal.Zero
			for _, child := range node.Children {
				total = total.Add(child.DisplayBalance)
			}
			node.DisplayBalance = total
		}
		return node
	}

	sortByCode(roots)
	forest := make([]*Node, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, attach(r))
	}
	return forest
}

// Flatten walks a forest depth-first.
func Flatten(forest []*Node) []*Node {
	out := make([]*Node, 0)
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}

// ValidateNewAccount checks a new account against the company's existing chart
// and returns the level it will occupy.
func ValidateNewAccount(in CreateAccountInput, existing []Account) (int, error) {
	for _, a := range existing {
		if a.Code == in.Code {
			return 0, shared.Validation("Account code already exists for this company.")
		}
	}
	if !in.IsPostable && !in.Balance.IsZero() {
		return 0, shared.Validation("Header accounts cannot carry a balance.")
	}
	if in.ParentID == nil {
		return 1, nil
	}
	var parent *Account
	for i := range existing {
		if existing[i].ID == *in.ParentID {
			parent = &existing[i]
			break
		}
	}
	if parent == nil {
		return 0, shared.Validation("Parent account not found.")
	}
	if parent.IsPostable {
		return 0, shared.Validation("Parent account must be a non-postable header account.")
	}
	if parent.Type != in.Type {
		return 0, shared.Validation("Account type must match its parent account.")
	}
	level := parent.Level + 1
	if level > MaxLevel {
		return 0, shared.DepthExceeded("Chart of accounts cannot exceed 3 levels.")
	}
	return level, nil
}

func sortByCode(list []Account) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Code != list[j].Code {
			return list[i].Code < list[j].Code
		}
		return list[i].ID < list[j].ID
	})
}
