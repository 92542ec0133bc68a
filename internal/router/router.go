// Package router assembles the gin engine serving the budget API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgetapp/internal/handlers"
	"budgetapp/internal/metrics"
	"budgetapp/internal/middleware"
	"budgetapp/internal/services"

	_ "budgetapp/internal/docs" // Import swagger docs
)

// Deps are the services and settings the routes are built from.
type Deps struct {
	Auth   services.AuthServicer
	Ledger services.LedgerServicer
	Theme  services.ThemeServicer
	Audit  services.AuditServicer
	Tokens *middleware.Authenticator

	// Location renders export dates. Nil means UTC.
	Location *time.Location
	// MetricsAPIKey guards /metrics when non-empty.
	MetricsAPIKey string
}

// New returns an engine with every route registered.
func New(deps Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Tokens, deps.Audit)
	ledgerHandler := handlers.NewLedgerHandler(deps.Ledger, deps.Audit)
	expenseHandler := handlers.NewExpenseHandler(deps.Ledger, deps.Audit, deps.Location)
	themeHandler := handlers.NewThemeHandler(deps.Theme)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.NoRoute(middleware.NotFound)
	router.NoMethod(middleware.MethodNotAllowed)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", middleware.APIKeyMiddleware(deps.MetricsAPIKey), gin.WrapH(promhttp.Handler()))

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)

	v1.GET("/theme", themeHandler.GetTheme)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(deps.Tokens.Middleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.PUT("/theme", themeHandler.SetTheme)

	ledger := protected.Group("/ledger")
	ledger.GET("", ledgerHandler.GetSummary)
	ledger.PUT("/budget", ledgerHandler.SetBudget)
	ledger.PUT("/savings-goal", ledgerHandler.SetSavingsGoal)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.DELETE("", expenseHandler.ClearExpenses)
	expenses.GET("/categories", expenseHandler.GetCategoryTotals)
	expenses.GET("/export.csv", expenseHandler.ExportCSV)
	expenses.GET("/export.xlsx", expenseHandler.ExportXLSX)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	return router
}
