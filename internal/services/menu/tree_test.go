package menu

import (
	"math"
	"testing"

	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func item(id primitive.ObjectID, parent *primitive.ObjectID, name string, order int) models.ResolvedMenuItem {
	o := order
	return models.ResolvedMenuItem{MenuItem: models.MenuItem{
		ID: id, ParentID: parent, Name: name, SortOrder: &o, URL: "/" + name,
	}}
}

func TestBuildForest(t *testing.T) {
	root, child1, child2, orphan := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	gone := primitive.NewObjectID()

	got := BuildForest([]models.ResolvedMenuItem{
		item(child2, &root, "second", 1),
		item(root, nil, "root", 3),
		item(child1, &root, "first", 0),
		item(orphan, &gone, "orphan", 0),
	})

	want := []Node{
		{Name: "orphan", SortOrder: 0, URL: "/orphan", Destination: "URL: /orphan", Children: []Node{}},
		{Name: "root", SortOrder: 3, URL: "/root", Destination: "URL: /root", Children: []Node{
			{Name: "first", SortOrder: 0, URL: "/first", Destination: "URL: /first", Children: []Node{}},
			{Name: "second", SortOrder: 1, URL: "/second", Destination: "URL: /second", Children: []Node{}},
		}},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Node{}, "ID")); diff != "" {
		t.Errorf("BuildForest mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildForestExtremeSortOrders(t *testing.T) {
	got := BuildForest([]models.ResolvedMenuItem{
		item(primitive.NewObjectID(), nil, "last", math.MaxInt),
		item(primitive.NewObjectID(), nil, "first", math.MinInt),
		item(primitive.NewObjectID(), nil, "middle", 0),
	})

	names := make([]string, 0, len(got))
	for _, n := range got {
		names = append(names, n.Name)
	}
	if diff := cmp.Diff([]string{"first", "middle", "last"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDescendants(t *testing.T) {
	a, b, c, d := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	items := []models.MenuItem{
		{ID: a},
		{ID: b, ParentID: &a},
		{ID: c, ParentID: &b},
		{ID: d},
	}

	got := Descendants(items, a)
	sortIDs := cmpopts.SortSlices(func(x, y primitive.ObjectID) bool { return x.Hex() < y.Hex() })
	if diff := cmp.Diff([]primitive.ObjectID{b, c}, got, sortIDs); diff != "" {
		t.Errorf("Descendants mismatch (-want +got):\n%s", diff)
	}
	if got := Descendants(items, d); len(got) != 0 {
		t.Errorf("expected no descendants, got %v", got)
	}
}
