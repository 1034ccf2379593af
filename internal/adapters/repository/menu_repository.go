package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	menusCollection     = "menus"
	menuItemsCollection = "menuItems"
)

type MenuRepository interface {
	CreateMenu(ctx context.Context, menu models.Menu) (models.Menu, error)
	GetMenu(ctx context.Context, id primitive.ObjectID) (models.Menu, error)
	GetMenuBySlug(ctx context.Context, slug string) (models.Menu, error)
	ListMenus(ctx context.Context) ([]models.Menu, error)
	DeleteMenu(ctx context.Context, id primitive.ObjectID) error

	CreateItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	GetItem(ctx context.Context, id primitive.ObjectID) (models.MenuItem, error)
	ListItems(ctx context.Context, menuID primitive.ObjectID) ([]models.MenuItem, error)
	// MaxSiblingSortOrder returns nil when the parent (or the menu top level) has no items.
	MaxSiblingSortOrder(ctx context.Context, menuID primitive.ObjectID, parentID *primitive.ObjectID) (*int, error)
	UpdateItem(ctx context.Context, item models.MenuItem) error
	SetSortOrders(ctx context.Context, orders map[primitive.ObjectID]int) error
	DeleteItems(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	FindItemsLinkedTo(ctx context.Context, kind models.LinkKind, id primitive.ObjectID) ([]models.MenuItem, error)
}

type MongoMenuRepository struct {
	DB *mongo.Database
}

func NewMenuRepository(db *mongo.Database) MenuRepository {
	return &MongoMenuRepository{DB: db}
}

func (r *MongoMenuRepository) CreateMenu(ctx context.Context, menu models.Menu) (models.Menu, error) {
	collection := r.DB.Collection(menusCollection)

	var existing models.Menu
	if err := collection.FindOne(ctx, bson.M{"slug": menu.Slug}).Decode(&existing); err == nil {
		return models.Menu{}, ErrDuplicate
	}

	now := time.Now()
	menu.ID = primitive.NewObjectID()
	menu.CreatedAt = now
	menu.UpdatedAt = now
	if _, err := collection.InsertOne(ctx, menu); err != nil {
		return models.Menu{}, translate(err)
	}
	return menu, nil
}

func (r *MongoMenuRepository) GetMenu(ctx context.Context, id primitive.ObjectID) (models.Menu, error) {
	var menu models.Menu
	err := r.DB.Collection(menusCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&menu)
	return menu, translate(err)
}

func (r *MongoMenuRepository) GetMenuBySlug(ctx context.Context, slug string) (models.Menu, error) {
	var menu models.Menu
	err := r.DB.Collection(menusCollection).FindOne(ctx, bson.M{"slug": slug}).Decode(&menu)
	return menu, translate(err)
}

func (r *MongoMenuRepository) ListMenus(ctx context.Context) ([]models.Menu, error) {
	opts := options.Find().SetSort(bson.M{"slug": 1})
	cursor, err := r.DB.Collection(menusCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	menus := []models.Menu{}
	if err := cursor.All(ctx, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// DeleteMenu removes the menu and every item it owns in one transaction.
func (r *MongoMenuRepository) DeleteMenu(ctx context.Context, id primitive.ObjectID) error {
	session, err := r.DB.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.DB.Collection(menusCollection).DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, ErrNotFound
		}
		if _, err := r.DB.Collection(menuItemsCollection).DeleteMany(sessCtx, bson.M{"menuId": id}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	_, err = session.WithTransaction(ctx, callback)
	return err
}

func (r *MongoMenuRepository) CreateItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	now := time.Now()
	item.ID = primitive.NewObjectID()
	item.CreatedAt = now
	item.UpdatedAt = now
	if _, err := r.DB.Collection(menuItemsCollection).InsertOne(ctx, item); err != nil {
		return models.MenuItem{}, translate(err)
	}
	return item, nil
}

func (r *MongoMenuRepository) GetItem(ctx context.Context, id primitive.ObjectID) (models.MenuItem, error) {
	var item models.MenuItem
	err := r.DB.Collection(menuItemsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	return item, translate(err)
}

func (r *MongoMenuRepository) ListItems(ctx context.Context, menuID primitive.ObjectID) ([]models.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.DB.Collection(menuItemsCollection).Find(ctx, bson.M{"menuId": menuID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoMenuRepository) MaxSiblingSortOrder(ctx context.Context, menuID primitive.ObjectID, parentID *primitive.ObjectID) (*int, error) {
	filter := bson.M{"menuId": menuID, "parentId": nil}
	if parentID != nil {
		filter["parentId"] = *parentID
	}
	opts := options.FindOne().
		SetSort(bson.M{"sortOrder": -1}).
		SetProjection(bson.M{"sortOrder": 1})

	var top models.MenuItem
	err := r.DB.Collection(menuItemsCollection).FindOne(ctx, filter, opts).Decode(&top)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return top.SortOrder, nil
}

func (r *MongoMenuRepository) UpdateItem(ctx context.Context, item models.MenuItem) error {
	item.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":         item.Name,
		"parentId":     item.ParentID,
		"url":          item.URL,
		"categoryId":   item.CategoryID,
		"collectionId": item.CollectionID,
		"pageId":       item.PageID,
		"updatedAt":    item.UpdatedAt,
	}}

	res, err := r.DB.Collection(menuItemsCollection).UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoMenuRepository) SetSortOrders(ctx context.Context, orders map[primitive.ObjectID]int) error {
	if len(orders) == 0 {
		return nil
	}
	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(orders))
	for id, order := range orders {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"sortOrder": order, "updatedAt": now}}))
	}
	_, err := r.DB.Collection(menuItemsCollection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *MongoMenuRepository) DeleteItems(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.DB.Collection(menuItemsCollection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoMenuRepository) FindItemsLinkedTo(ctx context.Context, kind models.LinkKind, id primitive.ObjectID) ([]models.MenuItem, error) {
	field, ok := linkFields[kind]
	if !ok {
		return nil, fmt.Errorf("unknown link kind %q", kind)
	}
	cursor, err := r.DB.Collection(menuItemsCollection).Find(ctx, bson.M{field: id})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.MenuItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

var linkFields = map[models.LinkKind]string{
	models.LinkCategory:   "categoryId",
	models.LinkCollection: "collectionId",
	models.LinkPage:       "pageId",
}
