package blog

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers blog routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		blogService: NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PUT("/:id", h.replace)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.deletePost)
	g.POST("/:id/comments", h.createComment)
	g.DELETE("/:id/:commentId", h.deleteComment)
}
