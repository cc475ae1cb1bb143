package handler

import (
	"fmt"

	"go-wms/internal/repository"
	"go-wms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var req service.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	inventory, err := h.service.Adjust(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Inventory adjusted", "data": inventory})
}

func (h *InventoryHandler) Search(c *fiber.Ctx) error {
	filter, err := inventoryFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := h.service.Search(*filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product_id"})
		}
		productID = &id
	}

	limit := c.QueryInt("limit", 100)
	txs, err := h.service.ListTransactions(productID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txs)
}

// ExportExcel streams the current stock overview as an xlsx attachment.
func (h *InventoryHandler) ExportExcel(c *fiber.Ctx) error {
	filter, err := inventoryFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := h.service.Search(*filter)
	if err != nil {
		return respondError(c, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "SKU")
	f.SetCellValue(sheet, "B1", "Product")
	f.SetCellValue(sheet, "C1", "Location")
	f.SetCellValue(sheet, "D1", "On Hand")
	f.SetCellValue(sheet, "E1", "Reserved")
	f.SetCellValue(sheet, "F1", "Available")

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.Product.SKU)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.Product.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), row.Location.Code)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), row.QtyOnHand)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), row.QtyReserved)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), row.QtyAvailable)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)

	if err := f.Write(c.Response().BodyWriter()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}
	return nil
}

func inventoryFilter(c *fiber.Ctx) (*repository.InventoryFilter, error) {
	filter := &repository.InventoryFilter{SKU: c.Query("sku")}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id")
		}
		filter.ProductID = &id
	}
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid location_id")
		}
		filter.LocationID = &id
	}
	return filter, nil
}
