package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/handler"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/metrics"
	"github.com/rs/zerolog"
)

const sessionCookieName = "inkwell_session"

// Options 是路由层需要的运行参数。Metrics 为 nil 时不暴露 /metrics。
type Options struct {
	SessionSecret string
	SecureCookies bool
	Logger        zerolog.Logger
	Metrics       *metrics.Metrics
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	var observer logging.RequestObserver
	if opts.Metrics != nil {
		observer = opts.Metrics
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.Use(logging.Middleware(opts.Logger, observer))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiGroup := r.Group("/api")
	apiGroup.Use(api.LocaleMiddleware())
	{
		apiGroup.POST("/login", api.Login)
		apiGroup.POST("/logout", api.Logout)

		// 公开阅读
		apiGroup.GET("/posts", api.ListPosts)
		apiGroup.GET("/posts/:slug", api.GetPost)
		apiGroup.GET("/categories", api.GetCategories)
		apiGroup.GET("/tags", api.GetTags)

		auth := apiGroup.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/me", api.Me)

			write := auth.Group("/write")
			write.Use(handler.RequireWriter())
			{
				write.POST("/sessions", api.OpenSession)
				write.GET("/sessions/:sid", api.GetSession)
				write.PATCH("/sessions/:sid", api.UpdateSession)
				write.DELETE("/sessions/:sid", api.CloseSession)
				write.POST("/sessions/:sid/autosave", api.AutosaveSession)
				write.POST("/sessions/:sid/submit", api.SubmitSession)
			}

			dashboard := auth.Group("/dashboard")
			dashboard.Use(handler.RequireWriter())
			{
				dashboard.GET("/posts", api.ListMyPosts)
				dashboard.DELETE("/posts/:id", api.DeleteMyPost)
			}

			admin := auth.Group("/admin")
			admin.Use(handler.RequireAdmin())
			{
				admin.GET("/users", api.ListUsers)
				admin.POST("/users/:id/writer", api.GrantWriter)
				admin.DELETE("/users/:id/writer", api.RevokeWriter)

				admin.GET("/posts", api.ListAllPosts)
				admin.POST("/posts/:id/toggle-publish", api.TogglePublish)
				admin.DELETE("/posts/:id", api.DeletePost)

				admin.GET("/categories", api.GetCategories)
				admin.POST("/categories", api.CreateCategory)
				admin.PUT("/categories/:id", api.UpdateCategory)
				admin.DELETE("/categories/:id", api.DeleteCategory)

				admin.GET("/tags", api.GetTags)
				admin.POST("/tags", api.CreateTag)
				admin.PUT("/tags/:id", api.UpdateTag)
				admin.DELETE("/tags/:id", api.DeleteTag)
			}
		}
	}

	return r
}
