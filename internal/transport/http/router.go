package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codenest/platform/internal/handlers/auth"
	"github.com/codenest/platform/internal/handlers/blog"
	"github.com/codenest/platform/internal/handlers/search"
	"github.com/codenest/platform/internal/handlers/tutorial"
	"github.com/codenest/platform/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *auth.AuthHandler
	BlogHandler     *blog.BlogHandler
	TutorialHandler *tutorial.TutorialHandler
	SearchHandler   *search.SearchHandler
	TokenService    *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/token/refresh", d.AuthHandler.Refresh)
	v1.POST("/request-password-reset", d.AuthHandler.RequestPasswordReset)
	v1.POST("/reset-password/:uid/:token", d.AuthHandler.ResetPassword)

	v1.GET("/categories", d.BlogHandler.GetCategories)
	v1.GET("/blog-posts", d.BlogHandler.GetPosts)
	v1.GET("/blog-posts/:slug", d.BlogHandler.GetPost)
	v1.GET("/search", d.SearchHandler.Search)

	authed := v1.Group("", d.TokenService.RequireLogin)

	authed.POST("/logout", d.AuthHandler.Logout)
	authed.POST("/change-password", d.AuthHandler.ChangePassword)

	authed.GET("/tutorials", d.TutorialHandler.GetTutorials)
	authed.GET("/tutorials/:tutorial_slug", d.TutorialHandler.GetTutorial)
	authed.GET("/tutorials/:tutorial_slug/topics", d.TutorialHandler.GetTopics)
	authed.GET("/topics/:topic_slug", d.TutorialHandler.GetTopic)

	authed.GET("/topics/:topic_slug/comments", d.TutorialHandler.ListComments)
	authed.POST("/topics/:topic_slug/comments", d.TutorialHandler.CreateComment)
	authed.GET("/comments/:id", d.TutorialHandler.GetComment)
	authed.PATCH("/comments/:id", d.TutorialHandler.PatchComment)
	authed.DELETE("/comments/:id", d.TutorialHandler.DeleteComment)
	authed.GET("/my-comments", d.TutorialHandler.MyComments)

	authed.POST("/comments/:id/reaction", d.TutorialHandler.ReactToComment)
	authed.POST("/topics/:topic_slug/reaction", d.TutorialHandler.ReactToTopic)

	admin := v1.Group("/admin", d.TokenService.RequireAdmin)

	admin.POST("/categories", d.BlogHandler.CreateCategory)
	admin.POST("/blog-posts", d.BlogHandler.CreatePost)
	admin.PATCH("/blog-posts/:id", d.BlogHandler.PatchPost)
	admin.DELETE("/blog-posts/:id", d.BlogHandler.DeletePost)

	admin.POST("/tutorials", d.TutorialHandler.CreateTutorial)
	admin.PATCH("/tutorials/:id", d.TutorialHandler.PatchTutorial)
	admin.DELETE("/tutorials/:id", d.TutorialHandler.DeleteTutorial)
	admin.POST("/tutorials/:id/topics", d.TutorialHandler.CreateTopic)
	admin.PATCH("/topics/:id", d.TutorialHandler.PatchTopic)
	admin.DELETE("/topics/:id", d.TutorialHandler.DeleteTopic)
}
