package repository

import (
	"time"

	"go-wms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryFilter narrows inventory queries.
type InventoryFilter struct {
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
	SKU        string
}

// StockMovementData aggregates ledger deltas per day for the dashboard chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the warehouse overview.
type DashboardStats struct {
	TotalProducts int64 `json:"total_products"`
	LowStockCount int64 `json:"low_stock_count"`
	TotalOnHand   int64 `json:"total_on_hand"`
}

type InventoryRepository interface {
	FindByProductLocation(productID, locationID uuid.UUID) (*model.Inventory, error)
	FindForUpdate(tx *gorm.DB, productID, locationID uuid.UUID) (*model.Inventory, error)
	Create(tx *gorm.DB, inv *model.Inventory) error
	UpdateQuantities(tx *gorm.DB, inv *model.Inventory, updatedBy string) error
	AppendTransaction(tx *gorm.DB, trx *model.InventoryTransaction) error
	Search(filter InventoryFilter) ([]model.Inventory, error)
	ListTransactions(productID *uuid.UUID, limit int) ([]model.InventoryTransaction, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(lowStockThreshold int) (*DashboardStats, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) FindByProductLocation(productID, locationID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.First(&inv, "product_id = ? AND location_id = ?", productID, locationID).Error
	return &inv, err
}

// FindForUpdate serializes concurrent adjustments on the same row. This is
// the single place the system needs true mutual exclusion: a lost update
// here corrupts the on-hand/reserved invariant.
func (r *inventoryRepo) FindForUpdate(tx *gorm.DB, productID, locationID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := forUpdate(tx).First(&inv, "product_id = ? AND location_id = ?", productID, locationID).Error
	return &inv, err
}

func (r *inventoryRepo) Create(tx *gorm.DB, inv *model.Inventory) error {
	return tx.Create(inv).Error
}

// UpdateQuantities writes the three quantity columns; callers hold the row
// lock, so no version check is needed here.
func (r *inventoryRepo) UpdateQuantities(tx *gorm.DB, inv *model.Inventory, updatedBy string) error {
	return tx.Model(&model.Inventory{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"qty_on_hand":   inv.QtyOnHand,
			"qty_reserved":  inv.QtyReserved,
			"qty_available": inv.QtyAvailable,
			"version":       inv.Version + 1,
			"updated_by":    updatedBy,
		}).Error
}

func (r *inventoryRepo) AppendTransaction(tx *gorm.DB, trx *model.InventoryTransaction) error {
	return tx.Create(trx).Error
}

func (r *inventoryRepo) Search(filter InventoryFilter) ([]model.Inventory, error) {
	q := r.db.Preload("Product").Preload("Location")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		q = q.Where("location_id = ?", *filter.LocationID)
	}
	if filter.SKU != "" {
		q = q.Joins("JOIN products ON products.id = inventories.product_id").
			Where("products.sku LIKE ?", "%"+filter.SKU+"%")
	}

	var rows []model.Inventory
	err := q.Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *inventoryRepo) ListTransactions(productID *uuid.UUID, limit int) ([]model.InventoryTransaction, error) {
	q := r.db.Order("created_at DESC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var trxs []model.InventoryTransaction
	err := q.Find(&trxs).Error
	return trxs, err
}

func (r *inventoryRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.InventoryTransaction{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'INBOUND' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUTBOUND' THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *inventoryRepo) GetDashboardStats(lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Inventory{}).
		Where("qty_available < ?", lowStockThreshold).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Inventory{}).
		Select("COALESCE(SUM(qty_on_hand), 0)").
		Scan(&stats.TotalOnHand).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
