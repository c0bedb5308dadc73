package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core/user"
)

const userColumns = `id, first_name, last_name, mail, password_hash, roles, is_verified, created_at, updated_at, last_login`

type userRow struct {
	ID           int            `db:"id"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Mail         string         `db:"mail"`
	PasswordHash []byte         `db:"password_hash"`
	Roles        pq.StringArray `db:"roles"`
	IsVerified   bool           `db:"is_verified"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Mail:         r.Mail,
		PasswordHash: r.PasswordHash,
		Roles:        []string(r.Roles),
		IsVerified:   r.IsVerified,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	return usr
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckMailUniqueness(ctx context.Context, mail string, excludedUsers ...user.User) error {
	excl := make(pq.Int64Array, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excl = append(excl, int64(u.ID))
	}

	var count int
	q := `SELECT COUNT(*) FROM "user" WHERE lower(mail) = lower($1) AND NOT (id = ANY($2))`
	if err := repo.db.GetContext(ctx, &count, q, mail, excl); err != nil {
		return errors.Wrap(err, "checking mail uniqueness")
	}
	if count > 0 {
		return user.ErrMailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO "user" (first_name, last_name, mail, password_hash, roles, is_verified, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	var row userRow
	err := repo.db.GetContext(ctx, &row, q,
		usr.FirstName, usr.LastName, usr.Mail, usr.PasswordHash, pq.StringArray(usr.Roles),
		usr.IsVerified, usr.CreatedAt, usr.UpdatedAt, nullTime(usr.LastLogin),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrMailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	q := `SELECT ` + userColumns + ` FROM "user" WHERE ` + where
	if err := getOne(ctx, repo.db, &row, user.ErrNotFound, q, arg); err != nil {
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, "id = $1", id)
}

func (repo *userRepository) GetUserByMail(ctx context.Context, mail string) (user.User, error) {
	return repo.getUser(ctx, "lower(mail) = lower($1)", mail)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE "user" SET
			first_name = $2, last_name = $3, mail = $4,
			password_hash = COALESCE($5, password_hash),
			roles = $6, is_verified = $7, updated_at = $8, last_login = $9
		WHERE id = $1
		RETURNING ` + userColumns

	var hash interface{} // NULL keeps the stored hash
	if usr.PasswordHash != nil {
		hash = usr.PasswordHash
	}

	var row userRow
	err := repo.db.GetContext(ctx, &row, q,
		usr.ID, usr.FirstName, usr.LastName, usr.Mail, hash, pq.StringArray(usr.Roles),
		usr.IsVerified, usr.UpdatedAt, nullTime(usr.LastLogin),
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return user.User{}, user.ErrNotFound
		case isUniqueViolation(err):
			return user.User{}, user.ErrMailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, `DELETE FROM "user" WHERE id = $1`, id, user.ErrNotFound)
}
