package v1

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/app"
	"taxiledger/internal/infrastructure/http/v1/handlers"
	"taxiledger/internal/infrastructure/http/v1/middleware"
	"taxiledger/internal/infrastructure/storage/postgres"
	"taxiledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Container holds the wired domain services.
	Container *app.Container

	// Logger for request logging
	Logger *logger.Logger

	// Idempotency stores keyed responses; nil disables the middleware.
	Idempotency middleware.IdempotencyStore

	// Pool backs the readiness probe; nil for the in-memory backend.
	Pool *postgres.Pool

	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Operator())
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	registerLedgerRoutes(api, cfg.Container)
	registerPaymentRoutes(api, cfg.Container)
	registerPeriodRoutes(api, cfg.Container)

	return router
}

// registerLedgerRoutes registers accounts, movement types and account movements.
func registerLedgerRoutes(rg *gin.RouterGroup, c *app.Container) {
	base := handlers.NewBaseHandler()

	accounts := handlers.NewAccountHandler(base, c.Ledger)
	history := handlers.NewHistoryHandler(base, c.History)
	{
		g := rg.Group("/accounts")
		g.GET("", accounts.List)
		g.POST("", accounts.Open)
		g.GET("/:kind/:id", accounts.Get)
		g.DELETE("/:kind/:id", accounts.Deactivate)
		g.GET("/:kind/:id/balance", accounts.Balance)
		g.POST("/:kind/:id/adjust", accounts.Adjust)
		g.POST("/:kind/:id/correct", accounts.Correct)
		g.GET("/:kind/:id/history", history.List)
		g.POST("/:kind/:id/history", history.Close)
	}

	types := handlers.NewMovementTypeHandler(base, c.Types)
	{
		g := rg.Group("/movement-types")
		g.GET("/recurring", types.Recurring)
		g.GET("/by-name", types.FindByName)
		RegisterCatalogRoutes(g, types)
	}

	movements := handlers.NewAccountMovementHandler(base, c.Movements)
	allocations := handlers.NewAllocationHandler(base, c.Settlements)
	{
		g := rg.Group("/account-movements")
		g.GET("", movements.List)
		g.POST("", movements.Create)
		g.POST("/generate", movements.GenerateRecurring)
		g.GET("/:id", movements.Get)
		g.PUT("/:id", movements.Update)
		g.DELETE("/:id", movements.Delete)
		g.POST("/:id/post", movements.Post)
		g.POST("/:id/unpost", movements.Unpost)
		g.GET("/:id/allocations", allocations.ListByMovement)
		g.GET("/:id/settlement", allocations.Summary)
	}
}

// registerPaymentRoutes registers the instruments that move money and settle movements.
func registerPaymentRoutes(rg *gin.RouterGroup, c *app.Container) {
	base := handlers.NewBaseHandler()

	money := handlers.NewMoneyMovementHandler(base, c.MoneyMovements)
	{
		g := rg.Group("/money-movements")
		g.GET("", money.List)
		g.POST("", money.Create)
		g.GET("/:id", money.Get)
		g.PATCH("/:id", money.UpdateDescription)
		g.DELETE("/:id", money.Delete)
	}

	cash := handlers.NewCashHandler(base, c.Cash)
	{
		g := rg.Group("/cash")
		g.GET("", cash.Get)
		g.POST("/adjust", cash.Adjust)
		g.GET("/days", cash.ListDays)
		g.POST("/days/open", cash.OpenDay)
		g.POST("/days/close", cash.CloseDay)
	}

	allocations := handlers.NewAllocationHandler(base, c.Settlements)
	{
		g := rg.Group("/allocations")
		g.GET("", allocations.ListByPayer)
		g.POST("", allocations.Allocate)
		g.GET("/:id", allocations.Get)
		g.PUT("/:id", allocations.Modify)
		g.PUT("/:id/note", allocations.EditNote)
		g.DELETE("/:id", allocations.Delete)
	}

	receipts := handlers.NewReceiptHandler(base, c.Receipts)
	{
		g := rg.Group("/receipts")
		g.GET("", receipts.List)
		g.POST("", receipts.Create)
		g.GET("/:id", receipts.Get)
		g.DELETE("/:id", receipts.Delete)
	}

	payroll := handlers.NewPayrollHandler(base, c.Payroll)
	{
		g := rg.Group("/advances")
		g.GET("", payroll.ListAdvances)
		g.POST("", payroll.CreateAdvance)
		g.POST("/:id/link", payroll.LinkAdvance)
	}
	{
		g := rg.Group("/payroll-settlements")
		g.POST("", payroll.CreateSettlement)
		g.POST("/net", payroll.ComputeNet)
		g.GET("/:id", payroll.GetSettlement)
		g.POST("/:id/pay", payroll.MarkPaid)
	}

	fuel := handlers.NewFuelHandler(base, c.Fuel)
	{
		g := rg.Group("/fuel")
		g.GET("/:id", fuel.Get)
		g.POST("/:id/accumulate", fuel.Accumulate)
		g.POST("/:id/reimburse", fuel.Reimburse)
	}
}

// registerPeriodRoutes registers history maintenance and job triggers.
func registerPeriodRoutes(rg *gin.RouterGroup, c *app.Container) {
	base := handlers.NewBaseHandler()

	history := handlers.NewHistoryHandler(base, c.History)
	{
		g := rg.Group("/history")
		g.POST("/close", history.CloseAll)
		g.DELETE("/:id", history.Delete)
	}

	jobs := handlers.NewJobHandler(base, c.Jobs)
	rg.POST("/jobs/:name", jobs.Run)
}
