package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"go-wms/internal/model"
	"go-wms/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// setupDB opens a fresh in-memory database per test. cache=shared keeps the
// schema visible across pooled connections within the same test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Location{},
		&model.Inventory{},
		&model.InventoryTransaction{},
		&model.Inbound{},
		&model.InboundItem{},
		&model.Outbound{},
		&model.OutboundItem{},
		&model.Payment{},
		&model.PaymentEvent{},
		&model.Delivery{},
		&model.DeliveryEvent{},
	))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type fixture struct {
	db *gorm.DB

	productSvc   ProductService
	locationSvc  LocationService
	inventorySvc InventoryService
	inboundSvc   InboundService
	outboundSvc  OutboundService
	paymentSvc   PaymentService
	deliverySvc  DeliveryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupDB(t)

	productRepo := repository.NewProductRepo(db)
	locationRepo := repository.NewLocationRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	inboundRepo := repository.NewInboundRepo(db)
	outboundRepo := repository.NewOutboundRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	deliveryRepo := repository.NewDeliveryRepo(db)

	productSvc := NewProductService(productRepo)
	locationSvc := NewLocationService(locationRepo)
	inventorySvc := NewInventoryService(inventoryRepo, productRepo, locationRepo, db, nil)
	paymentSvc := NewPaymentService(paymentRepo, outboundRepo, db)
	deliverySvc := NewDeliveryService(deliveryRepo, db)
	inboundSvc := NewInboundService(inboundRepo, productRepo, inventorySvc, locationSvc, db)
	outboundSvc := NewOutboundService(
		outboundRepo, deliveryRepo, productRepo, inventorySvc, locationSvc, paymentSvc, db, nil)

	return &fixture{
		db:           db,
		productSvc:   productSvc,
		locationSvc:  locationSvc,
		inventorySvc: inventorySvc,
		inboundSvc:   inboundSvc,
		outboundSvc:  outboundSvc,
		paymentSvc:   paymentSvc,
		deliverySvc:  deliverySvc,
	}
}

const testActor = "tester"

func (f *fixture) seedProduct(t *testing.T, sku string) *model.Product {
	t.Helper()
	product, err := f.productSvc.Create(&CreateProductRequest{
		SKU:  sku,
		Name: "Product " + sku,
	}, testActor)
	require.NoError(t, err)
	return product
}

func (f *fixture) seedLocation(t *testing.T, code string, capacity int) *model.Location {
	t.Helper()
	location, err := f.locationSvc.Create(&CreateLocationRequest{
		Code:     code,
		Capacity: capacity,
	}, testActor)
	require.NoError(t, err)
	return location
}

// seedStock raises on-hand quantity through the ledger so every test starts
// from a consistent transaction history.
func (f *fixture) seedStock(t *testing.T, productID, locationID uuid.UUID, qty int) {
	t.Helper()
	_, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   qty,
		Type:       model.TxInbound,
		RefNumber:  "SEED",
	}, testActor)
	require.NoError(t, err)
}

func (f *fixture) getInventory(t *testing.T, productID, locationID uuid.UUID) *model.Inventory {
	t.Helper()
	var inv model.Inventory
	err := f.db.Where("product_id = ? AND location_id = ?", productID, locationID).First(&inv).Error
	require.NoError(t, err)
	return &inv
}

func (f *fixture) countTransactions(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.InventoryTransaction{}).
		Where("product_id = ?", productID).Count(&n).Error)
	return n
}
