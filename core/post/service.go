package post

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
)

// EventRefreshPosts is the signal broadcast whenever the post list changed.
const EventRefreshPosts = "RefreshPosts"

var (
	// errors
	ErrNotFound     = errors.New("post not found")
	ErrLikeNotFound = errors.New("like not found")
	ErrEmptyPost    = errors.New("a post needs content or media")
)

type (
	Repository interface {
		// QueryPosts returns every post with its counts, newest first.
		QueryPosts(ctx context.Context) ([]Post, error)
		GetPost(ctx context.Context, id int) (Post, error)
		CreatePost(ctx context.Context, p Post) (Post, error)
		UpdatePost(ctx context.Context, p Post) (Post, error)
		DeletePost(ctx context.Context, id int) error
		// CreateLike returns the existing like, and created false, when the user already liked the post.
		CreateLike(ctx context.Context, l Like) (like Like, created bool, err error)
		GetLike(ctx context.Context, id int) (Like, error)
		DeleteLike(ctx context.Context, id int) error
		CreateComment(ctx context.Context, c Comment) (Comment, error)
		QueryComments(ctx context.Context, postID int) ([]Comment, error)
	}

	// Notifier broadcasts events to connected clients.
	Notifier interface {
		Publish(event string)
	}

	Service interface {
		List(ctx context.Context) ([]Post, error)
		Get(ctx context.Context, id int) (Post, error)
		Create(ctx context.Context, np NewPost) (Post, error)
		Update(ctx context.Context, id int, up UpdatePost, actor Actor) (Post, error)
		Delete(ctx context.Context, id int, actor Actor) error
		Like(ctx context.Context, postID, userID int) (Like, error)
		Unlike(ctx context.Context, likeID int, actor Actor) error
		Comment(ctx context.Context, nc NewComment) (Comment, error)
		Comments(ctx context.Context, postID int) ([]Comment, error)
	}

	service struct {
		repo     Repository
		notifier Notifier
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, notifier Notifier) Service {
	return &service{repo: repo, notifier: notifier}
}

func (svc *service) changed() {
	if svc.notifier != nil {
		svc.notifier.Publish(EventRefreshPosts)
	}
}

func (svc *service) List(ctx context.Context) ([]Post, error) {
	posts, err := svc.repo.QueryPosts(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

func (svc *service) Get(ctx context.Context, id int) (Post, error) {
	return svc.repo.GetPost(ctx, id)
}

func (svc *service) Create(ctx context.Context, np NewPost) (Post, error) {
	if np.Content == "" && np.URLMedia == "" {
		return Post{}, core.NewValidationError(ErrEmptyPost, core.FieldError{Field: "content", Error: ErrEmptyPost.Error()})
	}
	now := time.Now().UTC()
	p, err := svc.repo.CreatePost(ctx, Post{
		UserID:          np.UserID,
		Content:         np.Content,
		PostURL:         np.PostURL,
		URLMedia:        np.URLMedia,
		PublicationDate: now,
		UpdatedAt:       now,
	})
	if err != nil {
		return Post{}, errors.Wrap(err, "creating post")
	}
	svc.changed()
	return p, nil
}

func (svc *service) Update(ctx context.Context, id int, up UpdatePost, actor Actor) (Post, error) {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if !actor.CanEdit(p.UserID) {
		return Post{}, core.ErrPermissionDenied
	}
	if up.Content != nil {
		p.Content = *up.Content
	}
	if up.PostURL != nil {
		p.PostURL = *up.PostURL
	}
	if up.URLMedia != nil {
		p.URLMedia = *up.URLMedia
	}
	if p.Content == "" && p.URLMedia == "" {
		return Post{}, core.NewValidationError(ErrEmptyPost, core.FieldError{Field: "content", Error: ErrEmptyPost.Error()})
	}
	p.UpdatedAt = time.Now().UTC()

	p, err = svc.repo.UpdatePost(ctx, p)
	if err != nil {
		return Post{}, errors.Wrap(err, "updating post")
	}
	svc.changed()
	return p, nil
}

func (svc *service) Delete(ctx context.Context, id int, actor Actor) error {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanEdit(p.UserID) {
		return core.ErrPermissionDenied
	}
	if err := svc.repo.DeletePost(ctx, id); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	svc.changed()
	return nil
}

// Like is idempotent: liking twice returns the first Like.
func (svc *service) Like(ctx context.Context, postID, userID int) (Like, error) {
	if _, err := svc.repo.GetPost(ctx, postID); err != nil {
		return Like{}, err
	}
	l, created, err := svc.repo.CreateLike(ctx, Like{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return Like{}, errors.Wrap(err, "creating like")
	}
	if created {
		svc.changed()
	}
	return l, nil
}

func (svc *service) Unlike(ctx context.Context, likeID int, actor Actor) error {
	l, err := svc.repo.GetLike(ctx, likeID)
	if err != nil {
		return err
	}
	if !actor.CanEdit(l.UserID) {
		return core.ErrPermissionDenied
	}
	if err := svc.repo.DeleteLike(ctx, likeID); err != nil {
		return errors.Wrap(err, "deleting like")
	}
	svc.changed()
	return nil
}

func (svc *service) Comment(ctx context.Context, nc NewComment) (Comment, error) {
	if _, err := svc.repo.GetPost(ctx, nc.PostID); err != nil {
		return Comment{}, err
	}
	c, err := svc.repo.CreateComment(ctx, Comment{
		PostID:    nc.PostID,
		UserID:    nc.UserID,
		Content:   nc.Content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Comment{}, errors.Wrap(err, "creating comment")
	}
	svc.changed()
	return c, nil
}

func (svc *service) Comments(ctx context.Context, postID int) ([]Comment, error) {
	if _, err := svc.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := svc.repo.QueryComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}
