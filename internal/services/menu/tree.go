package menu

import (
	"cmp"
	"slices"

	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Node is a menu item as rendered in navigation: resolved destination plus children.
type Node struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	SortOrder   int                `json:"sortOrder"`
	URL         string             `json:"url"`
	Destination string             `json:"destination"`
	LinkKind    models.LinkKind    `json:"linkKind,omitempty"`
	Children    []Node             `json:"children"`
}

type Tree struct {
	Menu  models.Menu `json:"menu"`
	Items []Node      `json:"items"`
}

// BuildForest arranges items into trees ordered by sort order among siblings.
// Items whose parent is missing from the slice are treated as roots.
func BuildForest(items []models.ResolvedMenuItem) []Node {
	present := make(map[primitive.ObjectID]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}

	children := make(map[primitive.ObjectID][]models.ResolvedMenuItem)
	var roots []models.ResolvedMenuItem
	for _, it := range items {
		if it.ParentID == nil || !present[*it.ParentID] {
			roots = append(roots, it)
			continue
		}
		children[*it.ParentID] = append(children[*it.ParentID], it)
	}

	var build func(level []models.ResolvedMenuItem) []Node
	build = func(level []models.ResolvedMenuItem) []Node {
		slices.SortStableFunc(level, func(a, b models.ResolvedMenuItem) int {
			return cmp.Compare(a.Order(), b.Order())
		})
		nodes := make([]Node, 0, len(level))
		for _, it := range level {
			node := Node{
				ID:          it.ID,
				Name:        it.Name,
				SortOrder:   it.Order(),
				URL:         it.LinkURL(),
				Destination: it.DestinationDisplay(),
				Children:    build(children[it.ID]),
			}
			if linked := it.LinkedObject(); linked != nil {
				node.LinkKind = linked.LinkKind()
			}
			nodes = append(nodes, node)
		}
		return nodes
	}
	return build(roots)
}

// Descendants returns the ids of every item below root, depth first.
func Descendants(items []models.MenuItem, root primitive.ObjectID) []primitive.ObjectID {
	children := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, it := range items {
		if it.ParentID != nil {
			children[*it.ParentID] = append(children[*it.ParentID], it.ID)
		}
	}

	var out []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{root: true}
	stack := slices.Clone(children[root])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, children[id]...)
	}
	return out
}
