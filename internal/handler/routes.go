package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/taxmate/taxmate-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, profileHandler *ProfileHandler, gstHandler *GSTHandler, deductionHandler *DeductionHandler, basHandler *BASHandler, transactionHandler *TransactionHandler, receiptHandler *ReceiptHandler, ruleHandler *RuleHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Profile routes
	profile := api.Group("/profile")
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)
	profile.PUT("/business", profileHandler.UpdateBusinessProfile)

	// GST computation routes
	gst := api.Group("/gst")
	gst.POST("/compute", gstHandler.ComputeGST)
	gst.POST("/compute-batch", gstHandler.ComputeBatch)

	// Deduction classification routes
	deductions := api.Group("/deductions")
	deductions.POST("/classify", deductionHandler.Classify)
	deductions.POST("/claimable", deductionHandler.ComputeClaimable)

	// BAS report routes
	bas := api.Group("/bas")
	bas.GET("/report", basHandler.GetReport)
	bas.GET("/periods", basHandler.GetPeriods)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.GET("/:id/claimable", transactionHandler.GetClaimable)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.PATCH("/:id/category", transactionHandler.Recategorize)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Receipt routes
	receipts := api.Group("/receipts")
	receipts.POST("", receiptHandler.CaptureReceipt)
	receipts.GET("", receiptHandler.GetReceipts)
	receipts.GET("/:id", receiptHandler.GetReceipt)
	receipts.POST("/:id/image", receiptHandler.UploadImage)
	receipts.DELETE("/:id", receiptHandler.DeleteReceipt)

	// Categorization rule routes
	rules := api.Group("/rules")
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.GetRules)
	rules.PUT("/:id", ruleHandler.UpdateRule)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	// WebSocket endpoint authenticates via query token, not the
	// Authorization header, so it stays outside the auth group.
	if wsHandler != nil {
		e.GET("/api/v1/ws", wsHandler.HandleWS)
	}
}
