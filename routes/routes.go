package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"collabo/config"
	"collabo/database"
	"collabo/handlers"
	"collabo/messaging"
	"collabo/middleware"
	ws "collabo/websocket"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Cfg      *config.Config
	DB       *database.DB
	Auth     *middleware.Auth
	Registry *messaging.Registry
	Router   *messaging.Router
	Store    *messaging.Store
	Log      zerolog.Logger
}

// Setup builds the gin engine with every route of the app.
func Setup(d Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if d.Cfg.FrontendURL != "" {
		corsCfg.AllowOrigins = []string{d.Cfg.FrontendURL}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsCfg))

	auth := &handlers.Auth{DB: d.DB, Tokens: d.Auth, Log: d.Log}
	users := &handlers.Users{DB: d.DB, CloudinaryURL: d.Cfg.CloudinaryURL, Log: d.Log}
	projects := &handlers.Projects{DB: d.DB, Log: d.Log}
	search := &handlers.Search{DB: d.DB, Log: d.Log}
	suggestions := &handlers.Suggestions{DB: d.DB, Log: d.Log}
	friends := &handlers.Friends{DB: d.DB, Log: d.Log}
	applications := &handlers.Applications{DB: d.DB, Log: d.Log}
	invitations := &handlers.Invitations{DB: d.DB, Log: d.Log}
	notifications := &handlers.Notifications{DB: d.DB, Log: d.Log}
	messages := &handlers.Messages{Router: d.Router, Store: d.Store, Log: d.Log}
	push := &handlers.Push{DB: d.DB, PublicKey: d.Cfg.VAPIDPublicKey, Log: d.Log}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Credential endpoints get a tighter rate limit than the rest.
	authLimiter := middleware.NewIPRateLimiter(10, time.Minute)
	authGroup := engine.Group("/auth", authLimiter.Middleware())
	{
		authGroup.POST("/signup", auth.Signup)
		authGroup.POST("/login", auth.Login)
	}

	wsServer := ws.NewServer(d.Registry, d.Router, d.Auth, d.Log)
	engine.GET("/ws", wsServer.Handle)

	api := engine.Group("/", d.Auth.Middleware())
	{
		api.GET("/users/:id", users.GetProfile)
		api.PUT("/users/:id", users.UpdateProfile)
		api.POST("/users/avatar", users.UploadAvatar)

		api.POST("/projects", projects.Create)
		api.GET("/projects/:id", projects.Get)
		api.PUT("/projects/:id", projects.Update)
		api.DELETE("/projects/:id", projects.Delete)
		api.GET("/users/:id/projects", projects.ListByUser)

		api.POST("/search/users", search.Users)
		api.POST("/search/projects", search.Projects)
		api.GET("/suggestions/users", suggestions.Users)
		api.GET("/suggestions/projects", suggestions.Projects)

		api.POST("/friends/requests", friends.SendRequest)
		api.PUT("/friends/requests/:id", friends.Respond)
		api.GET("/friends", friends.List)

		api.POST("/applications", applications.Submit)
		api.GET("/projects/:id/applications", applications.ListForProject)
		api.PUT("/applications/:id", applications.UpdateStatus)

		api.POST("/invitations", invitations.Send)
		api.GET("/invitations", invitations.List)
		api.PUT("/invitations/:id", invitations.Respond)

		api.GET("/notifications", notifications.List)
		api.POST("/notifications", notifications.Create)
		api.PUT("/notifications/:id/read", notifications.MarkRead)
		api.PUT("/notifications/read-all", notifications.MarkAllRead)

		api.POST("/messages", messages.Send)
		api.GET("/conversations", messages.History)
		api.GET("/conversations/:userId", messages.Conversation)

		api.POST("/push/subscribe", push.Subscribe)
		api.DELETE("/push/subscribe", push.Unsubscribe)
		api.GET("/push/vapid-public-key", push.VapidPublicKey)
	}

	return engine
}
