package offers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB creates an isolated in-memory database with the negotiation
// tables. Schema mirrors the goose migration, minus postgres-only defaults.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:offers_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	ddl := []string{
		`CREATE TABLE products (
			id TEXT PRIMARY KEY,
			owner_user_id TEXT NOT NULL,
			sku TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL DEFAULT 'other',
			image_url TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE ads (
			id TEXT PRIMARY KEY,
			owner_user_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			address TEXT,
			price_per_product NUMERIC NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			category TEXT NOT NULL DEFAULT 'other',
			is_active INTEGER NOT NULL DEFAULT 1,
			accepted_offer_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE offers (
			id TEXT PRIMARY KEY,
			item_type TEXT NOT NULL,
			item_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			owner_user_id TEXT NOT NULL,
			price_per_product NUMERIC NOT NULL,
			dispatch_day INTEGER NOT NULL,
			remark TEXT,
			material TEXT,
			description TEXT,
			standard_delivery_price NUMERIC NOT NULL,
			expedite_delivery_price NUMERIC NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			decided_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX ux_offers_item_vendor ON offers (item_type, item_id, vendor_id)`,
		`CREATE TABLE vendor_decisions (
			id TEXT PRIMARY KEY,
			vendor_id TEXT NOT NULL,
			item_type TEXT NOT NULL,
			item_id TEXT NOT NULL,
			decision TEXT NOT NULL,
			offer_id TEXT,
			created_at DATETIME
		)`,
		`CREATE UNIQUE INDEX ux_vendor_decisions_vendor_item ON vendor_decisions (vendor_id, item_type, item_id)`,
		`CREATE TABLE vendors (
			id TEXT PRIMARY KEY,
			owner_user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			phone TEXT,
			rating REAL NOT NULL DEFAULT 0,
			merchant_address TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}
