// Package dbtest opens throwaway sqlite databases and seeds fixtures for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/wishlist-backend/pkg/db"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
)

// Open returns a migrated in-memory sqlite database private to the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// OpenClient wraps Open in a db.Client.
func OpenClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.Wrap(conn), conn
}

// MustCreateUser inserts an active shopper.
func MustCreateUser(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("shopper_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "Shopper",
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// VariantFixture describes a variant to seed.
type VariantFixture struct {
	Code     string
	Options  map[string]string
	Position int
	Disabled bool
	// Prices maps channel code to price in cents.
	Prices map[string]int
}

// MustCreateProduct inserts a product with the given variants and channel pricings.
func MustCreateProduct(t *testing.T, conn *gorm.DB, code string, variants ...VariantFixture) (*models.Product, []models.ProductVariant) {
	t.Helper()
	product := &models.Product{Code: code, Name: "Product " + code, Enabled: true}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	created := make([]models.ProductVariant, 0, len(variants))
	for _, fixture := range variants {
		variant := models.ProductVariant{
			ProductID:    product.ID,
			Code:         fixture.Code,
			Name:         "Variant " + fixture.Code,
			OptionValues: fixture.Options,
			Enabled:      true,
			Position:     fixture.Position,
		}
		if err := conn.Create(&variant).Error; err != nil {
			t.Fatalf("create variant: %v", err)
		}
		if fixture.Disabled {
			if err := conn.Model(&variant).Update("enabled", false).Error; err != nil {
				t.Fatalf("disable variant: %v", err)
			}
			variant.Enabled = false
		}
		for channel, price := range fixture.Prices {
			pricing := models.ChannelPricing{ProductVariantID: variant.ID, ChannelCode: channel, PriceCents: price}
			if err := conn.Create(&pricing).Error; err != nil {
				t.Fatalf("create pricing: %v", err)
			}
		}
		created = append(created, variant)
	}
	return product, created
}

// MustSetPrice updates a variant's price in a channel.
func MustSetPrice(t *testing.T, conn *gorm.DB, variantID uuid.UUID, channel string, price int) {
	t.Helper()
	res := conn.Model(&models.ChannelPricing{}).
		Where("product_variant_id = ? AND channel_code = ?", variantID, channel).
		Update("price_cents", price)
	if res.Error != nil {
		t.Fatalf("update price: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		t.Fatalf("no pricing for variant %s in channel %s", variantID, channel)
	}
}
