package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	Link     *LinkHandler
	Hub      *HubHandler
	Redirect *RedirectHandler
	System   *SystemHandler
	Auth     *AuthHandler
}

// RegisterRoutes 注册路由。/api 和 /auth 受限流保护，停用接口需要管理员令牌。
// 短名跳转 /:shortName 必须最后注册。
func RegisterRoutes(router *gin.Engine, h Handlers, rateLimit, authMiddleware, adminMiddleware gin.HandlerFunc) {
	router.GET("/health", h.System.HealthCheck)

	authGroup := router.Group("/auth", rateLimit)
	{
		authGroup.POST("/login", h.Auth.Login)
	}

	api := router.Group("/api", rateLimit)
	api.GET("/me", authMiddleware, h.Auth.GetCurrentUser)

	links := api.Group("/links")
	{
		links.POST("", h.Link.CreateLink)
		links.GET("", h.Link.ListLinks)
		links.POST("/check-availability", h.Link.CheckAvailability)
		links.GET("/:shortName/stats", h.Link.GetStats)
		links.PUT("/:shortName/deactivate", authMiddleware, adminMiddleware, h.Link.DeactivateLink)
	}

	hubs := api.Group("/hubs")
	{
		hubs.POST("", h.Hub.CreateHub)
		hubs.GET("", h.Hub.ListHubs)
		hubs.POST("/check-availability", h.Hub.CheckAvailability)
		hubs.GET("/:hubName", h.Hub.GetHub)
		hubs.GET("/:hubName/stats", h.Hub.GetStats)
		hubs.PUT("/:hubName/deactivate", authMiddleware, adminMiddleware, h.Hub.DeactivateHub)
	}

	router.GET("/h/:hubName", h.Redirect.ViewHub)
	router.GET("/h/:hubName/:order", h.Redirect.FollowHubLink)
	router.GET("/:shortName", h.Redirect.Redirect)
}
