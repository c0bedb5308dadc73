// Package inmemdb implements the repositories in memory; it backs tests and database-less debug runs.
package inmemdb

import (
	"sync"

	"github.com/astravon/portal/core/podcast"
	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/school"
	"github.com/astravon/portal/core/user"
)

// DB holds every table behind a single lock. Deletes cascade like the SQL foreign keys do.
type DB struct {
	mu  sync.RWMutex
	pks map[string]int

	users    map[int]*user.User
	posts    map[int]*post.Post
	likes    map[int]*post.Like
	comments map[int]*post.Comment

	schools  map[int]*school.School
	modules  map[int]*school.Module
	courses  map[int]*school.Course
	sections map[int]*school.Section

	programs map[int]*podcast.Program
	episodes map[int]*podcast.Episode
}

func Open() *DB {
	db := &DB{}
	db.Reset()
	return db
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.pks = make(map[string]int)
	db.users = make(map[int]*user.User)
	db.posts = make(map[int]*post.Post)
	db.likes = make(map[int]*post.Like)
	db.comments = make(map[int]*post.Comment)
	db.schools = make(map[int]*school.School)
	db.modules = make(map[int]*school.Module)
	db.courses = make(map[int]*school.Course)
	db.sections = make(map[int]*school.Section)
	db.programs = make(map[int]*podcast.Program)
	db.episodes = make(map[int]*podcast.Episode)
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.pks[table]++
	return db.pks[table]
}
