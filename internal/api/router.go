package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/puzzle-planet/internal/middleware"
	"github.com/wfunc/puzzle-planet/internal/service"
	ws "github.com/wfunc/puzzle-planet/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	services       *service.Services
	authHandler    *AuthHandler
	planetHandler  *PlanetHandler
	friendHandler  *FriendHandler
	gameHandler    *GameHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, services *service.Services, hub *ws.Hub, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	router := &Router{
		engine:         engine,
		db:             db,
		services:       services,
		authHandler:    NewAuthHandler(services.Auth, services.User),
		planetHandler:  NewPlanetHandler(services.Planet),
		friendHandler:  NewFriendHandler(services.Friend),
		gameHandler:    NewGameHandler(services.Game),
		wsHandler:      NewWebSocketHandler(hub, log),
		authMiddleware: middleware.NewAuthMiddleware(services.Auth),
		log:            log,
	}

	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", r.authHandler.Signup)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)
			auth.GET("/check-username", r.authHandler.CheckUsername)
		}

		// 用户相关路由（需要认证）
		users := v1.Group("/users")
		users.Use(r.authMiddleware.RequireAuth())
		{
			users.GET("/me", r.authHandler.GetProfile)
			users.PUT("/me/nickname", r.authHandler.UpdateNickname)
			users.PUT("/me/password", r.authHandler.UpdatePassword)
			users.PUT("/me/profile-image", r.authHandler.UpdateProfileImage)
		}

		// 星球相关路由，详情和列表对匿名开放
		planets := v1.Group("/planets")
		planets.Use(r.authMiddleware.OptionalAuth())
		{
			planets.GET("", r.planetHandler.ListPlanets)
			planets.GET("/:username", r.planetHandler.GetPlanet)
			planets.GET("/:username/gallery", r.planetHandler.ListGallery)
			planets.GET("/:username/guestbook", r.planetHandler.ListGuestbook)

			planetAuth := planets.Group("")
			planetAuth.Use(r.authMiddleware.RequireAuth())
			{
				planetAuth.PUT("/me", r.planetHandler.UpdatePlanet)
				planetAuth.POST("/:username/visit", r.planetHandler.VisitPlanet)
				planetAuth.POST("/:username/guestbook", r.planetHandler.WriteGuestbook)
				planetAuth.POST("/:username/favorite", r.planetHandler.AddFavorite)
				planetAuth.DELETE("/:username/favorite", r.planetHandler.RemoveFavorite)
			}
		}

		// 画廊作品详情
		v1.GET("/gallery/:id", r.planetHandler.GetGalleryItem)

		// 收藏列表（需要认证）
		favorites := v1.Group("/favorites")
		favorites.Use(r.authMiddleware.RequireAuth())
		{
			favorites.GET("", r.planetHandler.ListFavorites)
		}

		// 好友相关路由（需要认证）
		friends := v1.Group("/friends")
		friends.Use(r.authMiddleware.RequireAuth())
		{
			friends.GET("", r.friendHandler.ListFriends)
			friends.POST("/requests", r.friendHandler.SendRequest)
			friends.GET("/requests/received", r.friendHandler.ListReceived)
			friends.GET("/requests/sent", r.friendHandler.ListSent)
			friends.POST("/requests/:id/accept", r.friendHandler.AcceptRequest)
			friends.POST("/requests/:id/reject", r.friendHandler.RejectRequest)
			friends.DELETE("/:username", r.friendHandler.RemoveFriend)
		}

		// 游戏相关路由（需要认证）
		games := v1.Group("/games")
		games.Use(r.authMiddleware.RequireAuth())
		{
			games.POST("/single", r.gameHandler.StartSingle)
			games.POST("/single/complete", r.gameHandler.CompleteSingle)
			games.POST("/save", r.gameHandler.SaveToPlanet)
		}

		// 多人房间路由（需要认证）
		rooms := v1.Group("/rooms")
		rooms.Use(r.authMiddleware.RequireAuth())
		{
			rooms.POST("", r.gameHandler.CreateRoom)
			rooms.POST("/join", r.gameHandler.JoinRoom)
			rooms.POST("/ready", r.gameHandler.SetReady)
			rooms.POST("/start", r.gameHandler.StartMulti)
			rooms.POST("/complete", r.gameHandler.CompleteMulti)
		}
	}

	// WebSocket路由，连接后通过authenticate消息认证
	r.engine.GET("/ws/game", r.wsHandler.GameWebSocket)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, Response{
			IsSuccess: false,
			Code:      "COMMON404",
			Message:   "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
