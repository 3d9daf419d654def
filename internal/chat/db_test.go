package chat

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB creates an isolated in-memory database with the chat tables and
// the order/vendor tables the service reads. Schema mirrors the goose
// migration, minus postgres-only defaults.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:chat_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	ddl := []string{
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
		`CREATE TABLE orders (
			id TEXT PRIMARY KEY,
			buyer_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			item_type TEXT NOT NULL,
			item_id TEXT NOT NULL,
			ad_id TEXT,
			offer_id TEXT NOT NULL,
			snapshot TEXT,
			quantity INTEGER NOT NULL,
			price_per_product NUMERIC NOT NULL,
			total_products_price NUMERIC NOT NULL,
			delivery_type TEXT NOT NULL,
			delivery_charges NUMERIC NOT NULL,
			total_amount NUMERIC NOT NULL,
			currency TEXT NOT NULL DEFAULT 'INR',
			shipping_address TEXT,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			fulfillment_status TEXT NOT NULL DEFAULT 'Not_processed',
			gateway_order_id TEXT,
			gateway_payment_id TEXT,
			gateway_signature TEXT,
			receipt TEXT NOT NULL,
			amount_due_minor INTEGER NOT NULL DEFAULT 0,
			amount_paid_minor INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			gateway_created_at DATETIME,
			refund_id TEXT,
			captured_at DATETIME,
			delivered_at DATETIME,
			cancelled_at DATETIME,
			refunded_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE chats (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL UNIQUE,
			buyer_id TEXT NOT NULL,
			vendor_user_id TEXT NOT NULL,
			latest_message_id TEXT,
			latest_message_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE messages (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			content TEXT NOT NULL,
			read_at DATETIME,
			created_at DATETIME
		)`,
		`CREATE TABLE outbox_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME,
			published_at DATETIME,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			last_error TEXT
		)`,
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}
