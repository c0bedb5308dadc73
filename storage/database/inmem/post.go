package inmemdb

import (
	"context"
	"sort"

	"github.com/astravon/portal/core/post"
)

type postRepository struct {
	db *DB
}

var _ post.Repository = (*postRepository)(nil)

func NewPostRepository(db *DB) post.Repository {
	return &postRepository{db: db}
}

// fill sets the author and count fields; the read lock must be held.
func (repo *postRepository) fill(p post.Post) post.Post {
	p.UserName, p.Mail = "", ""
	if usr, ok := repo.db.users[p.UserID]; ok {
		p.UserName = usr.FullName()
		p.Mail = usr.Mail
	}
	p.LikeCount, p.CommentCount = 0, 0
	for _, l := range repo.db.likes {
		if l.PostID == p.ID {
			p.LikeCount++
		}
	}
	for _, c := range repo.db.comments {
		if c.PostID == p.ID {
			p.CommentCount++
		}
	}
	return p
}

func (repo *postRepository) QueryPosts(ctx context.Context) ([]post.Post, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	posts := make([]post.Post, 0, len(repo.db.posts))
	for _, p := range repo.db.posts {
		posts = append(posts, repo.fill(*p))
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].PublicationDate.Equal(posts[j].PublicationDate) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].PublicationDate.After(posts[j].PublicationDate)
	})
	return posts, nil
}

func (repo *postRepository) GetPost(ctx context.Context, id int) (post.Post, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.posts[id]; ok {
		return repo.fill(*p), nil
	}
	return post.Post{}, post.ErrNotFound
}

func (repo *postRepository) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = repo.db.nextID("post")
	stored := p
	repo.db.posts[p.ID] = &stored
	return repo.fill(p), nil
}

func (repo *postRepository) UpdatePost(ctx context.Context, p post.Post) (post.Post, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.posts[p.ID]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	orig.Content = p.Content
	orig.PostURL = p.PostURL
	orig.URLMedia = p.URLMedia
	orig.UpdatedAt = p.UpdatedAt
	return repo.fill(*orig), nil
}

func (repo *postRepository) DeletePost(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.posts[id]; !ok {
		return post.ErrNotFound
	}
	repo.db.deletePost(id)
	return nil
}

// deletePost removes a post with its likes and comments; the write lock must be held.
func (db *DB) deletePost(id int) {
	delete(db.posts, id)
	for lid, l := range db.likes {
		if l.PostID == id {
			delete(db.likes, lid)
		}
	}
	for cid, c := range db.comments {
		if c.PostID == id {
			delete(db.comments, cid)
		}
	}
}

func (repo *postRepository) CreateLike(ctx context.Context, l post.Like) (post.Like, bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.posts[l.PostID]; !ok {
		return post.Like{}, false, post.ErrNotFound
	}
	for _, existing := range repo.db.likes {
		if existing.PostID == l.PostID && existing.UserID == l.UserID {
			return *existing, false, nil
		}
	}
	l.ID = repo.db.nextID("like")
	stored := l
	repo.db.likes[l.ID] = &stored
	return l, true, nil
}

func (repo *postRepository) GetLike(ctx context.Context, id int) (post.Like, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if l, ok := repo.db.likes[id]; ok {
		return *l, nil
	}
	return post.Like{}, post.ErrLikeNotFound
}

func (repo *postRepository) DeleteLike(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.likes[id]; !ok {
		return post.ErrLikeNotFound
	}
	delete(repo.db.likes, id)
	return nil
}

func (repo *postRepository) CreateComment(ctx context.Context, c post.Comment) (post.Comment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.posts[c.PostID]; !ok {
		return post.Comment{}, post.ErrNotFound
	}
	c.ID = repo.db.nextID("comment")
	if usr, ok := repo.db.users[c.UserID]; ok {
		c.UserName = usr.FullName()
	}
	stored := c
	repo.db.comments[c.ID] = &stored
	return c, nil
}

func (repo *postRepository) QueryComments(ctx context.Context, postID int) ([]post.Comment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	comments := make([]post.Comment, 0)
	for _, c := range repo.db.comments {
		if c.PostID == postID {
			cmt := *c
			if usr, ok := repo.db.users[c.UserID]; ok {
				cmt.UserName = usr.FullName()
			}
			comments = append(comments, cmt)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}
