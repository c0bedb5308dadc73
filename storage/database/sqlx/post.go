package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core/post"
)

const postSelect = `SELECT
		p.id, p.user_id, u.first_name || ' ' || u.last_name AS user_name, u.mail,
		p.publication_date, p.post_url, p.updated_at, p.content, p.url_media,
		(SELECT COUNT(*) FROM post_like l WHERE l.post_id = p.id) AS like_count,
		(SELECT COUNT(*) FROM post_comment c WHERE c.post_id = p.id) AS comment_count
	FROM post p
	JOIN "user" u ON u.id = p.user_id`

type postRepository struct {
	db *sqlx.DB
}

var _ post.Repository = (*postRepository)(nil)

func NewPostRepository(db *sqlx.DB) post.Repository {
	return &postRepository{db: db}
}

func (repo *postRepository) QueryPosts(ctx context.Context) ([]post.Post, error) {
	posts := make([]post.Post, 0)
	q := postSelect + ` ORDER BY p.publication_date DESC, p.id DESC`
	if err := repo.db.SelectContext(ctx, &posts, q); err != nil {
		return nil, errors.Wrap(err, "selecting posts")
	}
	return posts, nil
}

func (repo *postRepository) GetPost(ctx context.Context, id int) (post.Post, error) {
	var p post.Post
	if err := getOne(ctx, repo.db, &p, post.ErrNotFound, postSelect+` WHERE p.id = $1`, id); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

func (repo *postRepository) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	var id int
	q := `INSERT INTO post (user_id, content, post_url, url_media, publication_date, updated_at)
		VALUES (:user_id, :content, :post_url, :url_media, :publication_date, :updated_at)
		RETURNING id`
	rows, err := repo.db.NamedQueryContext(ctx, q, p)
	if err != nil {
		return post.Post{}, errors.Wrap(err, "inserting post")
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return post.Post{}, errors.Wrap(err, "inserting post")
		}
	}
	if err := rows.Err(); err != nil {
		return post.Post{}, errors.Wrap(err, "inserting post")
	}
	return repo.GetPost(ctx, id)
}

func (repo *postRepository) UpdatePost(ctx context.Context, p post.Post) (post.Post, error) {
	q := `UPDATE post SET content = :content, post_url = :post_url, url_media = :url_media, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return post.Post{}, errors.Wrap(err, "updating post")
	}
	if n, err := res.RowsAffected(); err != nil {
		return post.Post{}, errors.Wrap(err, "updating post")
	} else if n == 0 {
		return post.Post{}, post.ErrNotFound
	}
	return repo.GetPost(ctx, p.ID)
}

func (repo *postRepository) DeletePost(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM post WHERE id = $1`, id, post.ErrNotFound)
}

func (repo *postRepository) CreateLike(ctx context.Context, l post.Like) (post.Like, bool, error) {
	// the no-op update makes RETURNING yield the existing row on conflict; xmax is 0 only for inserted rows
	q := `INSERT INTO post_like (post_id, user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO UPDATE SET post_id = EXCLUDED.post_id
		RETURNING id, post_id, user_id, created_at, (xmax = 0) AS created`
	var row struct {
		post.Like
		Created bool `db:"created"`
	}
	if err := repo.db.GetContext(ctx, &row, q, l.PostID, l.UserID, l.CreatedAt); err != nil {
		return post.Like{}, false, errors.Wrap(err, "inserting like")
	}
	return row.Like, row.Created, nil
}

func (repo *postRepository) GetLike(ctx context.Context, id int) (post.Like, error) {
	var like post.Like
	q := `SELECT id, post_id, user_id, created_at FROM post_like WHERE id = $1`
	if err := getOne(ctx, repo.db, &like, post.ErrLikeNotFound, q, id); err != nil {
		return post.Like{}, err
	}
	return like, nil
}

func (repo *postRepository) DeleteLike(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM post_like WHERE id = $1`, id, post.ErrLikeNotFound)
}

func (repo *postRepository) CreateComment(ctx context.Context, c post.Comment) (post.Comment, error) {
	q := `WITH c AS (
			INSERT INTO post_comment (post_id, user_id, content, created_at) VALUES ($1, $2, $3, $4)
			RETURNING id, post_id, user_id, content, created_at
		)
		SELECT c.id, c.post_id, c.user_id, u.first_name || ' ' || u.last_name AS user_name, c.content, c.created_at
		FROM c JOIN "user" u ON u.id = c.user_id`
	var comment post.Comment
	if err := repo.db.GetContext(ctx, &comment, q, c.PostID, c.UserID, c.Content, c.CreatedAt); err != nil {
		return post.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return comment, nil
}

func (repo *postRepository) QueryComments(ctx context.Context, postID int) ([]post.Comment, error) {
	comments := make([]post.Comment, 0)
	q := `SELECT c.id, c.post_id, c.user_id, u.first_name || ' ' || u.last_name AS user_name, c.content, c.created_at
		FROM post_comment c JOIN "user" u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id`
	if err := repo.db.SelectContext(ctx, &comments, q, postID); err != nil {
		return nil, errors.Wrap(err, "selecting comments")
	}
	return comments, nil
}
