package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *inventory.MovementEngine
	Queries   *inventory.StockQueries
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API. Todo el API de stock requiere Bearer
// Token: el actor del token queda atribuido en cada entrada de auditoría.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(LoggingMiddleware(deps.Log))

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Engine)
	queryHandler := NewQueryHandler(deps.Queries)

	// Motor de movimientos (escrituras)
	stock.Post("/adjust", stockHandler.Adjust)
	stock.Post("/reserve", stockHandler.Reserve)
	stock.Post("/release", stockHandler.Release)
	stock.Post("/transfer", stockHandler.Transfer)

	// Consultas y agregados (solo lectura)
	stock.Get("/low", queryHandler.ListLowStock)
	stock.Get("/valuation", queryHandler.GetValuation)
	stock.Get("/recent", queryHandler.GetRecent)
	stock.Get("/summary", queryHandler.GetMovementSummary)
	stock.Get("/:product_id/totals", queryHandler.GetTotals)
	stock.Get("/:product_id/history", queryHandler.GetHistory)
	stock.Get("/:product_id/:warehouse_id/verify", queryHandler.VerifyLedger)
	stock.Get("/:product_id/:warehouse_id", queryHandler.GetLevel)

	warehouses := api.Group("/warehouses")
	warehouses.Get("/:warehouse_id/stock", queryHandler.ListWarehouseStock)
	warehouses.Get("/:warehouse_id/utilization", queryHandler.GetCapacityUtilization)
}
