package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDestinationDisplay(t *testing.T) {
	category := &Category{ID: primitive.NewObjectID(), Name: "Shirts", Slug: "shirts", FullPath: "apparel/shirts"}
	collection := &Collection{ID: primitive.NewObjectID(), Name: "Summer", Slug: "summer"}
	page := &Page{ID: primitive.NewObjectID(), Title: "About us", Slug: "about"}

	tests := []struct {
		name    string
		item    ResolvedMenuItem
		display string
		url     string
	}{
		{
			name:    "category",
			item:    ResolvedMenuItem{Category: category},
			display: "Category: Shirts",
			url:     "/category/apparel/shirts-" + category.ID.Hex() + "/",
		},
		{
			name:    "collection",
			item:    ResolvedMenuItem{Collection: collection},
			display: "Collection: Summer",
			url:     "/collection/summer-" + collection.ID.Hex() + "/",
		},
		{
			name:    "page",
			item:    ResolvedMenuItem{Page: page},
			display: "Page: About us",
			url:     "/page/about/",
		},
		{
			name:    "raw url",
			item:    ResolvedMenuItem{MenuItem: MenuItem{URL: "https://example.com/sale"}},
			display: "URL: https://example.com/sale",
			url:     "https://example.com/sale",
		},
		{
			name:    "category wins over collection and page",
			item:    ResolvedMenuItem{Category: category, Collection: collection, Page: page},
			display: "Category: Shirts",
			url:     category.AbsoluteURL(),
		},
		{
			name:    "collection wins over page",
			item:    ResolvedMenuItem{Collection: collection, Page: page},
			display: "Collection: Summer",
			url:     collection.AbsoluteURL(),
		},
		{
			name:    "object wins over raw url",
			item:    ResolvedMenuItem{MenuItem: MenuItem{URL: "https://example.com"}, Page: page},
			display: "Page: About us",
			url:     "/page/about/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.display, tt.item.DestinationDisplay())
			assert.Equal(t, tt.url, tt.item.LinkURL())
		})
	}
}

func TestLinkedObjectNilWithoutReferences(t *testing.T) {
	item := ResolvedMenuItem{MenuItem: MenuItem{URL: "https://example.com"}}
	assert.Nil(t, item.LinkedObject())
}

func TestMenuItemSetLinkClearsOtherDestinations(t *testing.T) {
	item := MenuItem{URL: "https://example.com"}
	pageID := primitive.NewObjectID()
	item.SetLink(LinkPage, pageID)

	assert.Empty(t, item.URL)
	assert.Nil(t, item.CategoryID)
	assert.Nil(t, item.CollectionID)
	if assert.NotNil(t, item.PageID) {
		assert.Equal(t, pageID, *item.PageID)
	}

	item.SetURL("https://example.com/new")
	assert.Nil(t, item.PageID)
	assert.Equal(t, "https://example.com/new", item.URL)
}

func TestNewChildCategory(t *testing.T) {
	root := NewChildCategory(nil, Category{ID: primitive.NewObjectID(), Name: "Apparel", Slug: "apparel"})
	assert.Equal(t, "apparel", root.FullPath)
	assert.Empty(t, root.Ancestors)
	assert.Nil(t, root.ParentID)

	child := NewChildCategory(&root, Category{ID: primitive.NewObjectID(), Name: "Shirts", Slug: "shirts"})
	grandchild := NewChildCategory(&child, Category{ID: primitive.NewObjectID(), Name: "Polo", Slug: "polo"})

	assert.Equal(t, "apparel/shirts/polo", grandchild.FullPath)
	assert.Equal(t, []primitive.ObjectID{root.ID, child.ID}, grandchild.Ancestors)
	assert.Equal(t, child.ID, *grandchild.ParentID)
}
