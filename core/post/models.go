package post

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/astravon/portal/core"
)

// Post is a feed entry as listed by the API, counts included.
type Post struct {
	ID              int       `json:"id" db:"id"`
	UserID          int       `json:"userId" db:"user_id"`
	UserName        string    `json:"userName" db:"user_name"`
	Mail            string    `json:"mail" db:"mail"`
	PublicationDate time.Time `json:"publicationDate" db:"publication_date"`
	PostURL         string    `json:"postUrl" db:"post_url"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	Content         string    `json:"content" db:"content"`
	URLMedia        string    `json:"urlMedia" db:"url_media"`
	LikeCount       int       `json:"likeCount" db:"like_count"`
	CommentCount    int       `json:"commentCount" db:"comment_count"`
}

type Like struct {
	ID        int       `json:"id" db:"id"`
	PostID    int       `json:"postId" db:"post_id"`
	UserID    int       `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Comment struct {
	ID        int       `json:"id" db:"id"`
	PostID    int       `json:"postId" db:"post_id"`
	UserID    int       `json:"userId" db:"user_id"`
	UserName  string    `json:"userName" db:"user_name"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Actor is the user performing a mutation.
type Actor struct {
	UserID  int
	IsAdmin bool
}

// CanEdit reports whether the actor may modify a resource owned by ownerID.
func (a Actor) CanEdit(ownerID int) bool {
	return a.IsAdmin || (a.UserID != 0 && a.UserID == ownerID)
}

// NewPost contains information needed to publish a Post.
// Either Content, URLMedia or a media file must be provided.
type NewPost struct {
	UserID   int    `json:"userId" form:"userId" validate:"required"`
	Content  string `json:"content" form:"content" validate:"required_without_all=URLMedia HasMedia,max=5000"`
	PostURL  string `json:"postUrl" form:"postUrl" validate:"omitempty,url"`
	URLMedia string `json:"urlMedia" form:"urlMedia" validate:"omitempty,url"`

	// HasMedia is set by the API when a media file comes with the request.
	HasMedia bool `json:"-" form:"-"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Content = core.CleanString(np.Content)
	np.PostURL = core.CleanString(np.PostURL)
	np.URLMedia = core.CleanString(np.URLMedia)
	return validate.Struct(np)
}

// UpdatePost defines what may change on an existing Post; empty fields keep their value.
type UpdatePost struct {
	Content  *string `json:"content" form:"content" validate:"omitempty,max=5000"`
	PostURL  *string `json:"postUrl" form:"postUrl" validate:"omitempty,url"`
	URLMedia *string `json:"urlMedia" form:"urlMedia" validate:"omitempty,url"`
}

func (up *UpdatePost) Validate(validate *validator.Validate) error {
	for _, s := range []*string{up.Content, up.PostURL, up.URLMedia} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	return validate.Struct(up)
}

type NewComment struct {
	PostID  int    `json:"postId"`
	UserID  int    `json:"userId"`
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}
