package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `json:"name" bson:"name" validate:"required,max=128"`
	Description string              `json:"description,omitempty" bson:"description"`
	Slug        string              `json:"slug" bson:"slug"`
	ParentID    *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId"`
	// Ancestors lists every category above this one, root first.
	Ancestors []primitive.ObjectID `json:"ancestors" bson:"ancestors"`
	// FullPath is the slug chain from the root, e.g. "apparel/shirts".
	FullPath  string    `json:"fullPath" bson:"fullPath"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// NewChildCategory fills in the tree fields of c so that it sits under parent.
func NewChildCategory(parent *Category, c Category) Category {
	c.ParentID = nil
	c.Ancestors = []primitive.ObjectID{}
	c.FullPath = c.Slug
	if parent != nil {
		id := parent.ID
		c.ParentID = &id
		c.Ancestors = append(append(c.Ancestors, parent.Ancestors...), parent.ID)
		c.FullPath = parent.Path() + "/" + c.Slug
	}
	return c
}

func (c Category) Path() string {
	if c.FullPath == "" {
		return c.Slug
	}
	return c.FullPath
}

func (c Category) LinkKind() LinkKind { return LinkCategory }

func (c Category) String() string { return c.Name }

func (c Category) AbsoluteURL() string {
	return fmt.Sprintf("/category/%s-%s/", c.Path(), c.ID.Hex())
}

type Collection struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `json:"name" bson:"name" validate:"required,max=128"`
	Slug        string               `json:"slug" bson:"slug"`
	IsPublished bool                 `json:"isPublished" bson:"isPublished"`
	ProductIDs  []primitive.ObjectID `json:"productIds" bson:"productIds"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
}

func (c Collection) LinkKind() LinkKind { return LinkCollection }

func (c Collection) String() string { return c.Name }

func (c Collection) AbsoluteURL() string {
	return fmt.Sprintf("/collection/%s-%s/", c.Slug, c.ID.Hex())
}

type Page struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `json:"title" bson:"title" validate:"required,max=200"`
	Slug        string             `json:"slug" bson:"slug"`
	Content     string             `json:"content" bson:"content"`
	IsVisible   bool               `json:"isVisible" bson:"isVisible"`
	AvailableOn *time.Time         `json:"availableOn,omitempty" bson:"availableOn"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

func (p Page) LinkKind() LinkKind { return LinkPage }

func (p Page) String() string { return p.Title }

func (p Page) AbsoluteURL() string {
	return fmt.Sprintf("/page/%s/", p.Slug)
}
