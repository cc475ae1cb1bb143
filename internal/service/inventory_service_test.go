package service

import (
	"testing"

	"go-wms/internal/apperr"
	"go-wms/internal/model"
	"go-wms/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdjust_CreatesRowAndLedgerEntry(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)

	inv, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   50,
		Type:       model.TxInbound,
		RefNumber:  "INB-1",
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, 50, inv.QtyOnHand)
	assert.Equal(t, 0, inv.QtyReserved)
	assert.Equal(t, 50, inv.QtyAvailable)

	var trx model.InventoryTransaction
	require.NoError(t, f.db.Where("product_id = ?", product.ID).First(&trx).Error)
	assert.Equal(t, model.TxInbound, trx.Type)
	assert.Equal(t, 50, trx.Quantity)
	assert.Equal(t, 0, trx.BalanceBefore)
	assert.Equal(t, 50, trx.BalanceAfter)
	assert.Equal(t, "INB-1", trx.RefNumber)
}

func TestAdjust_NegativeBelowZeroRejected(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, 10)

	_, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   -11,
		Type:       model.TxAdjustment,
	}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientQuantity, apperr.CodeOf(err))

	// Failed adjustment leaves no ledger entry behind.
	assert.Equal(t, int64(1), f.countTransactions(t, product.ID))
}

func TestAdjust_UnknownRowNotFound(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)

	// ADJUSTMENT never opens a new inventory row.
	_, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   -5,
		Type:       model.TxAdjustment,
	}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestAdjust_ReserveTypeRejectedOnPublicSurface(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, 10)

	_, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   5,
		Type:       model.TxReserve,
	}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestReserve_HoldsAvailableInvariant(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, 10)

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventorySvc.Reserve(tx, product.ID, location.ID, 7, "OUT-1", nil, testActor)
		return err
	}))

	inv := f.getInventory(t, product.ID, location.ID)
	assert.Equal(t, 10, inv.QtyOnHand)
	assert.Equal(t, 7, inv.QtyReserved)
	assert.Equal(t, 3, inv.QtyAvailable)

	// Over-reserving what remains fails.
	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventorySvc.Reserve(tx, product.ID, location.ID, 4, "OUT-2", nil, testActor)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientQuantity, apperr.CodeOf(err))
}

func TestRelease_CannotExceedReserved(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, 10)

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventorySvc.Reserve(tx, product.ID, location.ID, 5, "OUT-1", nil, testActor)
		return err
	}))

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventorySvc.Release(tx, product.ID, location.ID, 6, "OUT-1", nil, testActor)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientQuantity, apperr.CodeOf(err))

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventorySvc.Release(tx, product.ID, location.ID, 5, "OUT-1", nil, testActor)
		return err
	}))

	inv := f.getInventory(t, product.ID, location.ID)
	assert.Equal(t, 0, inv.QtyReserved)
	assert.Equal(t, 10, inv.QtyAvailable)
}

func TestConsumeReservation_DropsOnHandAndReserved(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, 10)

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventorySvc.Reserve(tx, product.ID, location.ID, 4, "OUT-1", nil, testActor)
		return err
	}))
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventorySvc.ConsumeReservation(tx, product.ID, location.ID, 4, "OUT-1", nil, testActor)
		return err
	}))

	inv := f.getInventory(t, product.ID, location.ID)
	assert.Equal(t, 6, inv.QtyOnHand)
	assert.Equal(t, 0, inv.QtyReserved)
	assert.Equal(t, 6, inv.QtyAvailable)

	// seed + reserve + consume
	assert.Equal(t, int64(3), f.countTransactions(t, product.ID))
}

func TestLedger_EverySuccessfulChangeLeavesOneEntry(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)

	f.seedStock(t, product.ID, location.ID, 20)
	_, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   -3,
		Type:       model.TxAdjustment,
	}, testActor)
	require.NoError(t, err)
	_, err = f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   2,
		Type:       model.TxReturn,
		RefNumber:  "RET-1",
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, int64(3), f.countTransactions(t, product.ID))

	txs, err := f.inventorySvc.ListTransactions(&product.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 3)
}

func TestSearch_FiltersBySKU(t *testing.T) {
	f := newFixture(t)
	widget := f.seedProduct(t, "WIDGET-1")
	gadget := f.seedProduct(t, "GADGET-1")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, widget.ID, location.ID, 5)
	f.seedStock(t, gadget.ID, location.ID, 8)

	rows, err := f.inventorySvc.Search(repository.InventoryFilter{SKU: "WIDGET"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, widget.ID, rows[0].ProductID)
}

func TestAdjust_InactiveProductCannotOpenRow(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)
	_, err := f.productSvc.SetActive(product.ID, false, testActor)
	require.NoError(t, err)

	_, err = f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   5,
		Type:       model.TxInbound,
	}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	// Stock already on the shelf stays correctable after deactivation.
	active := f.seedProduct(t, "SKU-002")
	f.seedStock(t, active.ID, location.ID, 10)
	_, err = f.productSvc.SetActive(active.ID, false, testActor)
	require.NoError(t, err)

	inv, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  active.ID,
		LocationID: location.ID,
		Quantity:   -2,
		Type:       model.TxAdjustment,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, 8, inv.QtyOnHand)
}

func TestAdjust_RequiresActor(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-001")
	location := f.seedLocation(t, "A-01", 100)

	_, err := f.inventorySvc.Adjust(&AdjustRequest{
		ProductID:  product.ID,
		LocationID: location.ID,
		Quantity:   5,
		Type:       model.TxInbound,
	}, "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}
