package blog

import (
	"context"
	"database/sql"
	"time"

	"github.com/labworks/seriesdesk/pkg/errcodes"
	"github.com/labworks/seriesdesk/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListPostsOptions struct {
	Skip int
	Take int
}

type UpdatePostOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreatePost(ctx context.Context, post *models.BlogPost) error {
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = post.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(post).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	post.Comments = []*models.BlogComment{}
	return nil
}

func (svc *Service) RetrievePost(ctx context.Context, id int) (*models.BlogPost, error) {
	post := &models.BlogPost{}

	err := svc.db.
		NewSelect().
		Model(post).
		Relation("Comments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("bc.id ASC")
		}).
		Where("bp.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.ResourceNotFound("Blog post")
		}
		return nil, errors.WithStack(err)
	}
	if post.Comments == nil {
		post.Comments = []*models.BlogComment{}
	}

	return post, nil
}

// ListPosts returns a page of posts, newest first, along with the total number
// of posts.
func (svc *Service) ListPosts(ctx context.Context, opts ListPostsOptions) ([]*models.BlogPost, int, error) {
	posts := []*models.BlogPost{}

	q := svc.db.
		NewSelect().
		Model(&posts).
		Relation("Comments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("bc.id ASC")
		}).
		Order("bp.created_at DESC", "bp.id DESC")

	if opts.Take > 0 {
		q = q.Limit(opts.Take)
	}
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	for _, p := range posts {
		if p.Comments == nil {
			p.Comments = []*models.BlogComment{}
		}
	}

	return posts, total, nil
}

func (svc *Service) UpdatePost(ctx context.Context, post *models.BlogPost, opts UpdatePostOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	post.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(post).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.ResourceNotFound("Blog post")
	}
	return nil
}

// DeletePost removes a post and all of its comments.
func (svc *Service) DeletePost(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.BlogComment)(nil)).
			Where("blog_post_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		res, err := tx.NewDelete().
			Model((*models.BlogPost)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.ResourceNotFound("Blog post")
		}
		return nil
	})
}

func (svc *Service) CreateComment(ctx context.Context, comment *models.BlogComment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	_, err := svc.db.
		NewInsert().
		Model(comment).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteComment removes a comment, but only if it belongs to the given post.
func (svc *Service) DeleteComment(ctx context.Context, postID, commentID int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.BlogComment)(nil)).
		Where("id = ?", commentID).
		Where("blog_post_id = ?", postID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.ResourceNotFound("Comment")
	}
	return nil
}
