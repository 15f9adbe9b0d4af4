package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billingapp "github.com/propman/backend/internal/application/billing"
	leasingapp "github.com/propman/backend/internal/application/leasing"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/propman/backend/internal/infrastructure/logger"
	"github.com/propman/backend/internal/infrastructure/persistence"
	"github.com/propman/backend/internal/interfaces/http/handler"
	"github.com/propman/backend/internal/interfaces/http/middleware"
	"github.com/propman/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Repositories
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	runRepo := persistence.NewGormInvoiceRunRepository(db.DB)
	planRepo := persistence.NewGormUtilityRatePlanRepository(db.DB)
	statementRepo := persistence.NewGormUtilityStatementRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)

	taxRates, err := parseTaxRates(cfg.Billing.TaxRates)
	if err != nil {
		log.Fatal("Invalid billing tax rate configuration", zap.Error(err))
	}

	// Application services
	clock := shared.SystemClock{}
	leaseService := leasingapp.NewLeaseService(leaseRepo, clock)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, leaseRepo, statementRepo, creditNoteRepo,
		clock, valueobject.Currency(cfg.Billing.Currency), taxRates,
	)
	runService := billingapp.NewInvoiceRunService(
		runRepo, leaseRepo, invoiceService,
		clock, log, cfg.Billing.RunWorkers,
	)
	utilityService := billingapp.NewUtilityService(planRepo, statementRepo, leaseRepo, clock)

	// HTTP handlers
	leaseHandler := handler.NewLeaseHandler(leaseService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	runHandler := handler.NewInvoiceRunHandler(runService)
	utilityHandler := handler.NewUtilityHandler(utilityService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())

	engine.GET("/health", healthHandler(db))

	leasingRoutes := router.NewDomainGroup("leasing", "/leasing").
		POST("/leases", leaseHandler.Create).
		GET("/leases", leaseHandler.List).
		GET("/leases/:id", leaseHandler.GetByID).
		POST("/leases/:id/parties", leaseHandler.AddParty).
		DELETE("/leases/:id/parties/:party_id", leaseHandler.RemoveParty).
		POST("/leases/:id/terms", leaseHandler.AppendTerm).
		PUT("/leases/:id/billing-setting", leaseHandler.SetBillingSetting).
		POST("/leases/:id/activate", leaseHandler.Activate).
		POST("/leases/:id/notice", leaseHandler.GiveNotice).
		POST("/leases/:id/end", leaseHandler.End).
		POST("/leases/:id/cancel", leaseHandler.Cancel)

	billingRoutes := router.NewDomainGroup("billing", "/billing").
		POST("/invoices/generate", invoiceHandler.Generate).
		GET("/invoices", invoiceHandler.List).
		GET("/invoices/:id", invoiceHandler.GetByID).
		POST("/invoices/:id/issue", invoiceHandler.Issue).
		POST("/invoices/:id/payments", invoiceHandler.RecordPayment).
		POST("/invoices/:id/void", invoiceHandler.Void).
		POST("/invoices/:id/credit-notes", invoiceHandler.CreateCreditNote).
		POST("/invoice-runs", runHandler.Start).
		GET("/invoice-runs", runHandler.List).
		GET("/invoice-runs/:id", runHandler.GetByID).
		POST("/invoice-runs/:id/cancel", runHandler.Cancel).
		POST("/rate-plans", utilityHandler.CreateRatePlan).
		GET("/rate-plans", utilityHandler.ListRatePlans).
		GET("/rate-plans/:id", utilityHandler.GetRatePlan).
		POST("/rate-plans/:id/deactivate", utilityHandler.DeactivateRatePlan).
		POST("/utility-statements", utilityHandler.RecordStatement).
		POST("/utility-statements/:id/finalize", utilityHandler.FinalizeStatement).
		GET("/leases/:lease_id/utility-statements", utilityHandler.ListStatements)

	systemRoutes := router.NewDomainGroup("system", "/system").
		GET("/ping", systemHandler.Ping).
		GET("/info", systemHandler.GetSystemInfo)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(leasingRoutes).
		Register(billingRoutes).
		Register(systemRoutes).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// parseTaxRates converts configured charge-code rate strings into the
// lookup the invoice assembler consumes
func parseTaxRates(rates map[string]string) (billing.StaticTaxRates, error) {
	lookup := billing.StaticTaxRates{}
	for code, rate := range rates {
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("tax rate for %s: %w", code, err)
		}
		if parsed.IsNegative() {
			return nil, fmt.Errorf("tax rate for %s cannot be negative", code)
		}
		lookup[billing.ChargeCode(strings.ToUpper(code))] = parsed
	}
	return lookup, nil
}

// healthHandler reports service liveness and database connectivity
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetGinLogger(c)

		if err := db.Ping(); err != nil {
			log.Error("Health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
		})
	}
}
