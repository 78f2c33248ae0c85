package router

import (
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/handler"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers served under /api/v1
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Tuition *handler.TuitionHandler
	Payment *handler.PaymentHandler
	Permit  *handler.PermitHandler
	System  *handler.SystemHandler
}

// Guards are the access middleware shared by the route groups.
// AuthRateLimit may be nil.
type Guards struct {
	Authenticate  gin.HandlerFunc
	AuthRateLimit gin.HandlerFunc
}

// APIRoutes builds the route groups of the portal
func APIRoutes(h Handlers, g Guards) []RouteRegistrar {
	requireAdmin := middleware.RequireAdmin()

	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/signup", g.AuthRateLimit, h.Auth.Signup)
	auth.POST("/login", g.AuthRateLimit, h.Auth.Login)
	session := auth.Group("session", "").Use(g.Authenticate)
	session.POST("/change-password", h.Auth.ChangePassword)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/programs", h.Catalog.ListPrograms)
	catalog.GET("/plans", h.Catalog.ListPlans)
	catalog.Group("catalog-admin", "").Use(g.Authenticate, requireAdmin).
		POST("/seed/:program", h.Catalog.Seed)

	tuition := NewDomainGroup("tuition", "/tuition").Use(g.Authenticate)
	tuition.GET("/me", h.Tuition.GetMine)
	tuition.GET("/students/:studentId", h.Tuition.GetByStudent)

	payments := NewDomainGroup("payments", "/payments").Use(g.Authenticate)
	payments.POST("", h.Payment.Submit)
	payments.GET("/history/:email", h.Payment.HistoryByEmail)
	payments.GET("/:transactionId", h.Payment.Get)
	payments.Group("payments-admin", "").Use(requireAdmin).
		GET("/history", h.Payment.History).
		GET("/history/export", h.Payment.ExportHistory).
		POST("/:transactionId/accept", h.Payment.Accept).
		POST("/:transactionId/reject", h.Payment.Reject)

	permits := NewDomainGroup("permits", "/permits").Use(g.Authenticate)
	permits.POST("", h.Permit.Request)
	permits.GET("/me", h.Permit.ListMine)

	return []RouteRegistrar{system, auth, catalog, tuition, payments, permits}
}
