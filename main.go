package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/trace-ops/backend/internal/client"
	"github.com/trace-ops/backend/internal/config"
	"github.com/trace-ops/backend/internal/handler"
	"github.com/trace-ops/backend/internal/service"
	"github.com/trace-ops/backend/internal/store"
)

// @title Trace-OPS Backend API
// @version 1.0
// @description Alert lifecycle service: create, analyze and decide on alerts, with ledger read-through.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env는 있으면 로드 (없어도 무방)
	_ = godotenv.Load()

	cfg := config.Load()

	alertStore := store.NewAlertStore()
	ledger := client.NewLedgerClient(cfg.Ledger)
	authService := service.NewAuthService(cfg.Keycloak)
	alertService := service.NewAlertService(alertStore, ledger)

	alertHandler := handler.NewAlertHandler(alertService)
	healthHandler := handler.NewHealthHandler(ledger)

	router := gin.Default()
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowCredentials))

	// 공개 엔드포인트
	router.GET("/health", healthHandler.Health)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/alerts", alertHandler.List)

	// 역할 게이트 엔드포인트
	router.POST("/alerts", handler.AuthMiddleware(authService, "operator", "decider"), alertHandler.Create)
	router.POST("/analyze/:alertId", handler.AuthMiddleware(authService, "analyst"), alertHandler.Analyze)
	router.PUT("/internal/update_decision/:alertId", handler.AuthMiddleware(authService, "decider"), alertHandler.UpdateDecision)
	router.GET("/ledger/verify/:txId", handler.AuthMiddleware(authService, "analyst", "decider"), alertHandler.VerifyLedger)

	log.Printf("Trace-OPS backend listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		panic(err)
	}
}
