package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-wms/internal/handler"
	"go-wms/internal/middleware"
	"go-wms/internal/model"
	"go-wms/internal/repository"
	"go-wms/internal/service"
	"go-wms/internal/ws"
	"go-wms/pkg/database"
	applog "go-wms/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()
	applog.Init()
	if envErr != nil {
		applog.L.Warn().Msg(".env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	if err := db.AutoMigrate(
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
	); err != nil {
		applog.L.Fatal().Err(err).Msg("migration failed")
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	locationRepo := repository.NewLocationRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	inboundRepo := repository.NewInboundRepo(db)
	outboundRepo := repository.NewOutboundRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	deliveryRepo := repository.NewDeliveryRepo(db)

	productSvc := service.NewProductService(productRepo)
	locationSvc := service.NewLocationService(locationRepo)
	inventorySvc := service.NewInventoryService(inventoryRepo, productRepo, locationRepo, db, wsHub)
	paymentSvc := service.NewPaymentService(paymentRepo, outboundRepo, db)
	deliverySvc := service.NewDeliveryService(deliveryRepo, db)
	inboundSvc := service.NewInboundService(inboundRepo, productRepo, inventorySvc, locationSvc, db)
	// The payment service doubles as the ship gate for the outbound flow.
	outboundSvc := service.NewOutboundService(
		outboundRepo, deliveryRepo, productRepo, inventorySvc, locationSvc, paymentSvc, db, wsHub)
	dashboardSvc := service.NewDashboardService(inventoryRepo)

	productHandler := handler.NewProductHandler(productSvc)
	locationHandler := handler.NewLocationHandler(locationSvc)
	inventoryHandler := handler.NewInventoryHandler(inventorySvc)
	inboundHandler := handler.NewInboundHandler(inboundSvc)
	outboundHandler := handler.NewOutboundHandler(outboundSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	deliveryHandler := handler.NewDeliveryHandler(deliverySvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "WMS Fulfillment Core v1.0",
	})

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 6. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Partner callbacks authenticate out of band (gateway signature), not via JWT.
	webhooks := app.Group("/webhooks")
	webhooks.Post("/payments/:id", paymentHandler.Webhook)
	webhooks.Post("/deliveries/:id", deliveryHandler.Webhook)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth())

	// Dashboard Routes
	protected.Get("/dashboard/stats", dashboardHandler.GetStats)
	protected.Get("/dashboard/stock-movement", dashboardHandler.GetStockMovement)

	// Product Routes
	protected.Get("/products", productHandler.List)
	protected.Get("/products/:id", productHandler.Get)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.Create)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.Update)
	protected.Post("/products/:id/activate", middleware.RequirePrivilege("product:update"), productHandler.SetActive(true))
	protected.Post("/products/:id/deactivate", middleware.RequirePrivilege("product:update"), productHandler.SetActive(false))

	// Location Routes
	protected.Get("/locations", locationHandler.List)
	protected.Get("/locations/:id", locationHandler.Get)
	protected.Get("/locations/:id/capacity-check", locationHandler.CheckCapacity)
	protected.Post("/locations", middleware.RequirePrivilege("location:create"), locationHandler.Create)
	protected.Put("/locations/:id", middleware.RequirePrivilege("location:update"), locationHandler.Update)
	protected.Post("/locations/:id/activate", middleware.RequirePrivilege("location:update"), locationHandler.SetActive(true))
	protected.Post("/locations/:id/deactivate", middleware.RequirePrivilege("location:update"), locationHandler.SetActive(false))

	// Inventory Routes
	protected.Get("/inventory", inventoryHandler.Search)
	protected.Get("/inventory/export", inventoryHandler.ExportExcel)
	protected.Get("/inventory/transactions", inventoryHandler.ListTransactions)
	protected.Post("/inventory/adjust", middleware.RequirePrivilege("inventory:adjust"), inventoryHandler.Adjust)

	// Inbound Routes
	protected.Get("/inbounds", inboundHandler.List)
	protected.Get("/inbounds/:id", inboundHandler.Get)
	protected.Post("/inbounds", middleware.RequirePrivilege("inbound:create"), inboundHandler.Create)
	protected.Post("/inbounds/:id/receive", middleware.RequirePrivilege("inbound:receive"), inboundHandler.Receive)
	protected.Post("/inbounds/:id/putaway", middleware.RequirePrivilege("inbound:putaway"), inboundHandler.PutAway)
	protected.Post("/inbounds/:id/complete", middleware.RequirePrivilege("inbound:complete"), inboundHandler.Complete)
	protected.Post("/inbounds/:id/cancel", middleware.RequirePrivilege("inbound:cancel"), inboundHandler.Cancel)

	// Outbound Routes
	protected.Get("/outbounds", outboundHandler.List)
	protected.Get("/outbounds/:id", outboundHandler.Get)
	protected.Post("/outbounds", middleware.RequirePrivilege("outbound:create"), outboundHandler.Create)
	protected.Post("/outbounds/:id/allocate", middleware.RequirePrivilege("outbound:pick"), outboundHandler.Transition("allocate"))
	protected.Post("/outbounds/:id/pick", middleware.RequirePrivilege("outbound:pick"), outboundHandler.Pick)
	protected.Post("/outbounds/:id/pack", middleware.RequirePrivilege("outbound:pack"), outboundHandler.Transition("pack"))
	protected.Post("/outbounds/:id/ship", middleware.RequirePrivilege("outbound:ship"), outboundHandler.Transition("ship"))
	protected.Post("/outbounds/:id/cancel", middleware.RequirePrivilege("outbound:cancel"), outboundHandler.Transition("cancel"))

	// Payment Routes
	protected.Get("/payments", paymentHandler.List)
	protected.Get("/payments/:id", paymentHandler.Get)
	protected.Post("/payments", middleware.RequirePrivilege("payment:create"), paymentHandler.Create)
	protected.Post("/payments/:id/confirm", middleware.RequirePrivilege("payment:settle"), paymentHandler.Transition("confirm"))
	protected.Post("/payments/:id/fail", middleware.RequirePrivilege("payment:settle"), paymentHandler.Transition("fail"))
	protected.Post("/payments/:id/cancel", middleware.RequirePrivilege("payment:settle"), paymentHandler.Transition("cancel"))

	// Delivery Routes
	protected.Get("/deliveries", deliveryHandler.List)
	protected.Get("/deliveries/:id", deliveryHandler.Get)
	protected.Get("/outbounds/:outboundId/delivery", deliveryHandler.GetByOutbound)
	protected.Post("/deliveries/:id/status", middleware.RequirePrivilege("delivery:update"), deliveryHandler.UpdateStatus)
	protected.Post("/deliveries/:id/events", middleware.RequirePrivilege("delivery:update"), deliveryHandler.AddEvent)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			applog.L.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	applog.L.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		applog.L.Fatal().Err(err).Msg("server forced to shutdown")
	}

	applog.L.Info().Msg("server exited")
}
