package inmemdb

import (
	"context"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func copyUser(u *user.User) user.User {
	usr := *u
	usr.Roles = append([]string(nil), u.Roles...)
	usr.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return usr
}

func (repo *userRepository) CheckMailUniqueness(ctx context.Context, mail string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if !core.SameMail(usr.Mail, mail) || isExcluded(usr.ID, excludedUsers) {
			continue
		}
		return user.ErrMailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, u := range repo.db.users {
		if core.SameMail(u.Mail, usr.Mail) {
			return user.User{}, user.ErrMailExists
		}
	}
	usr.ID = repo.db.nextID("user")
	stored := copyUser(&usr)
	repo.db.users[usr.ID] = &stored
	return copyUser(&stored), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return copyUser(usr), nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByMail(ctx context.Context, mail string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if core.SameMail(usr.Mail, mail) {
			return copyUser(usr), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.PasswordHash == nil {
		usr.PasswordHash = origUsr.PasswordHash
	}
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = origUsr.CreatedAt
	}
	stored := copyUser(&usr)
	repo.db.users[usr.ID] = &stored
	return copyUser(&stored), nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)

	for pid, p := range repo.db.posts {
		if p.UserID == id {
			repo.db.deletePost(pid)
		}
	}
	for lid, l := range repo.db.likes {
		if l.UserID == id {
			delete(repo.db.likes, lid)
		}
	}
	for cid, c := range repo.db.comments {
		if c.UserID == id {
			delete(repo.db.comments, cid)
		}
	}
	return nil
}

func isExcluded(id int, excludedUsers []user.User) bool {
	for _, u := range excludedUsers {
		if u.ID == id {
			return true
		}
	}
	return false
}
