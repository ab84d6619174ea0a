package blog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labworks/seriesdesk/pkg/errcodes"
	"github.com/labworks/seriesdesk/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	blogService *Service
}

type listResponse struct {
	Posts []*models.BlogPost `json:"posts"`
	Total int                `json:"total"`
}

type deleteResponse struct {
	ID      int  `json:"id"`
	Deleted bool `json:"deleted"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListPostsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	posts, total, err := h.blogService.ListPosts(ctx, ListPostsOptions{
		Skip: params.Skip,
		Take: params.Take,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, listResponse{posts, total}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.blogService.RetrievePost(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, post))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreatePostPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	post := &models.BlogPost{
		Title: params.Title,
		Body:  params.Body,
	}
	if err := h.blogService.CreatePost(ctx, post); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("blog post created", logger.Data{"blog_post_id": post.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, post))
}

func (h *handler) replace(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}

	params := ReplacePostPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	post, err := h.blogService.RetrievePost(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	post.Title = params.Title
	post.Body = params.Body
	err = h.blogService.UpdatePost(ctx, post, UpdatePostOptions{Columns: []string{"title", "body"}})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.respondWithPost(c, id)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}

	params := UpdatePostPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	post, err := h.blogService.RetrievePost(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed
	opts := UpdatePostOptions{Columns: []string{}}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return errcodes.ValidationError(`"title" can't be blank`)
		}
		if title != post.Title {
			post.Title = title
			opts.Columns = append(opts.Columns, "title")
		}
	}

	if params.Body != nil {
		body := strings.TrimSpace(*params.Body)
		if body == "" {
			return errcodes.ValidationError(`"body" can't be blank`)
		}
		if body != post.Body {
			post.Body = body
			opts.Columns = append(opts.Columns, "body")
		}
	}

	if len(opts.Columns) == 0 {
		return errcodes.ValidationError("No fields have been changed")
	}

	if err := h.blogService.UpdatePost(ctx, post, opts); err != nil {
		return errors.WithStack(err)
	}

	return h.respondWithPost(c, id)
}

func (h *handler) deletePost(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}

	if err := h.blogService.DeletePost(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("blog post deleted", logger.Data{"blog_post_id": id})

	return errors.WithStack(c.JSON(http.StatusOK, deleteResponse{ID: id, Deleted: true}))
}

func (h *handler) createComment(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}

	params := CreateCommentPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Make sure the post exists before attaching anything to it.
	if _, err := h.blogService.RetrievePost(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	comment := &models.BlogComment{
		BlogPostID: id,
		Comment:    params.Comment,
	}
	if err := h.blogService.CreateComment(ctx, comment); err != nil {
		return errors.WithStack(err)
	}

	post, err := h.blogService.RetrievePost(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, post))
}

func (h *handler) deleteComment(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := postID(c)
	if err != nil {
		return err
	}
	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil {
		return errcodes.ResourceNotFound("Comment")
	}

	if err := h.blogService.DeleteComment(ctx, id, commentID); err != nil {
		return errors.WithStack(err)
	}

	return h.respondWithPost(c, id)
}

func (h *handler) respondWithPost(c echo.Context, id int) error {
	post, err := h.blogService.RetrievePost(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, post))
}

func postID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.ResourceNotFound("Blog post")
	}
	return id, nil
}
