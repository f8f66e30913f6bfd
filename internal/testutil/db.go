// Package testutil provides storage fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/saajjewels/storefront/internal/domain"
)

var seq atomic.Int64

// NewSQLiteDB opens a private in-memory SQLite database. When migrate is
// true every domain table is created.
func NewSQLiteDB(t testing.TB, migrate bool) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if migrate {
		if err := db.AutoMigrate(domain.Tables...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// SeedProducts inserts products and returns them with ids assigned
func SeedProducts(t testing.TB, db *gorm.DB, products ...domain.Product) []domain.Product {
	t.Helper()
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product %q: %v", products[i].Name, err)
		}
	}
	return products
}

// Product returns a valid product fixture named name
func Product(name, category string) domain.Product {
	return domain.Product{
		Name:            name,
		OriginalPrice:   1200,
		DiscountedPrice: 999,
		Image:           "https://res.cloudinary.com/demo/image/upload/" + strings.ReplaceAll(name, " ", "-") + ".jpg",
		Description:     "Handcrafted " + strings.ToLower(name),
		Category:        category,
	}
}
