package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// Indexes lists the indexes each collection needs, keyed by collection name.
var Indexes = map[string][]mongo.IndexModel{
	"menus": {
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetName("idx_menu_slug").SetUnique(true)},
	},
	"menuItems": {
		{Keys: bson.D{{Key: "menuId", Value: 1}, {Key: "parentId", Value: 1}, {Key: "sortOrder", Value: -1}}, Options: options.Index().SetName("idx_menu_siblings")},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}, Options: options.Index().SetName("idx_item_category").SetSparse(true)},
		{Keys: bson.D{{Key: "collectionId", Value: 1}}, Options: options.Index().SetName("idx_item_collection").SetSparse(true)},
		{Keys: bson.D{{Key: "pageId", Value: 1}}, Options: options.Index().SetName("idx_item_page").SetSparse(true)},
	},
	"categories": {
		{Keys: bson.D{{Key: "parentId", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetName("idx_category_sibling_slug").SetUnique(true)},
		{Keys: bson.D{{Key: "ancestors", Value: 1}}, Options: options.Index().SetName("idx_category_ancestors")},
	},
	"pages": {
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetName("idx_page_slug").SetUnique(true)},
	},
	"products": {
		{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "isPublished", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetName("idx_category_listing")},
		{Keys: bson.D{{Key: "variants.id", Value: 1}}, Options: options.Index().SetName("idx_variant_id")},
		{Keys: bson.D{{Key: "price", Value: 1}}, Options: options.Index().SetName("idx_price")},
	},
	"carts": {
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetName("idx_cart_token").SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("idx_cart_user_status")},
		{Keys: bson.D{{Key: "paymentIntentId", Value: 1}}, Options: options.Index().SetName("idx_cart_payment_intent").SetSparse(true)},
	},
	"users": {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("idx_user_email").SetUnique(true)},
	},
}

// EnsureIndexes creates every index in Indexes, one collection per goroutine.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	g, ctx := errgroup.WithContext(ctx)
	for name, models := range Indexes {
		g.Go(func() error {
			created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
			if err != nil {
				return fmt.Errorf("create indexes on %s: %w", name, err)
			}
			logrus.WithFields(logrus.Fields{"collection": name, "indexes": created}).Info("Indexes ready")
			return nil
		})
	}
	return g.Wait()
}
