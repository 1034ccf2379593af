package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Menu struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug      string             `json:"slug" bson:"slug" validate:"required,max=50"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (m Menu) String() string {
	return m.Slug
}

// MenuItem is a single navigation node. At most one destination is meant to be
// set; when several object references are present the category wins, then the
// collection, then the page. URL is only used when no object is linked.
type MenuItem struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MenuID   primitive.ObjectID  `json:"menuId" bson:"menuId"`
	ParentID *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId"`
	Name     string              `json:"name" bson:"name" validate:"required,max=128"`

	// SortOrder is nil until the item is first saved, then never recomputed.
	SortOrder *int `json:"sortOrder" bson:"sortOrder"`

	URL          string              `json:"url,omitempty" bson:"url,omitempty"`
	CategoryID   *primitive.ObjectID `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	CollectionID *primitive.ObjectID `json:"collectionId,omitempty" bson:"collectionId,omitempty"`
	PageID       *primitive.ObjectID `json:"pageId,omitempty" bson:"pageId,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (i MenuItem) String() string {
	return i.Name
}

// Order returns the sibling rank, or -1 for an item that was never saved.
func (i MenuItem) Order() int {
	if i.SortOrder == nil {
		return -1
	}
	return *i.SortOrder
}

// SetLink points the item at a single destination and clears the others.
func (i *MenuItem) SetLink(kind LinkKind, id primitive.ObjectID) {
	i.URL = ""
	i.CategoryID, i.CollectionID, i.PageID = nil, nil, nil
	switch kind {
	case LinkCategory:
		i.CategoryID = &id
	case LinkCollection:
		i.CollectionID = &id
	case LinkPage:
		i.PageID = &id
	}
}

// SetURL points the item at a raw URL and clears any linked object.
func (i *MenuItem) SetURL(url string) {
	i.CategoryID, i.CollectionID, i.PageID = nil, nil, nil
	i.URL = url
}

// ResolvedMenuItem carries a menu item together with the catalog objects its
// references were loaded into.
type ResolvedMenuItem struct {
	MenuItem
	Category   *Category
	Collection *Collection
	Page       *Page
}

// LinkedObject returns the first of category, collection and page that is set.
func (r ResolvedMenuItem) LinkedObject() Linked {
	switch {
	case r.Category != nil:
		return *r.Category
	case r.Collection != nil:
		return *r.Collection
	case r.Page != nil:
		return *r.Page
	}
	return nil
}

func (r ResolvedMenuItem) DestinationDisplay() string {
	linked := r.LinkedObject()
	if linked == nil {
		return "URL: " + r.URL
	}

	var prefix string
	switch linked.LinkKind() {
	case LinkCollection:
		prefix = "Collection: "
	case LinkCategory:
		prefix = "Category: "
	default:
		prefix = "Page: "
	}
	return prefix + linked.String()
}

// LinkURL is the canonical URL of the linked object, or the raw URL.
func (r ResolvedMenuItem) LinkURL() string {
	if linked := r.LinkedObject(); linked != nil {
		return linked.AbsoluteURL()
	}
	return r.URL
}
