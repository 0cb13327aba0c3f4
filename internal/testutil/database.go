package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database.
// Expects a MySQL instance on localhost:3306 with a 'cartwright_test' schema.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/cartwright_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"RentalReservations", "RentalUnits", "InventoryItems", "Skus"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the tables the integration tests need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createSkusTable := `
	CREATE TABLE IF NOT EXISTS Skus (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		price BIGINT NOT NULL DEFAULT 0,
		deposit BIGINT NOT NULL DEFAULT 0,
		stock INT NOT NULL DEFAULT 0,
		sizes JSON,
		forSale TINYINT(1) NOT NULL DEFAULT 1,
		forRental TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createInventoryItemsTable := `
	CREATE TABLE IF NOT EXISTS InventoryItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		shopId VARCHAR(64) NOT NULL,
		variantKey VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		UNIQUE KEY uniq_shop_variant (shopId, variantKey)
	)`

	createRentalUnitsTable := `
	CREATE TABLE IF NOT EXISTS RentalUnits (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		skuId VARCHAR(64) NOT NULL,
		totalUnits INT NOT NULL DEFAULT 0,
		UNIQUE KEY uniq_sku (skuId)
	)`

	createRentalReservationsTable := `
	CREATE TABLE IF NOT EXISTS RentalReservations (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		checkoutRef VARCHAR(64) NOT NULL,
		skuId VARCHAR(64) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		dateFrom DATE NOT NULL,
		dateTo DATE NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_sku_dates (skuId, dateFrom, dateTo),
		INDEX idx_checkout (checkoutRef)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Skus", createSkusTable},
		{"InventoryItems", createInventoryItemsTable},
		{"RentalUnits", createRentalUnitsTable},
		{"RentalReservations", createRentalReservationsTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
