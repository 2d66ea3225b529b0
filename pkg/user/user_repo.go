package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query,
		user.Uid,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			log.Debugf("email %s already registered", user.Email)
			return 0, ErrEmailTaken
		}
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.getUserBy(ctx, "id", id)
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.getUserBy(ctx, "uid", uid)
}

func (u *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return u.getUserBy(ctx, "lower(email)", strings.ToLower(email))
}

// getUserBy is only called with the fixed column expressions above.
func (u *UserRepoImpl) getUserBy(ctx context.Context, column string, value any) (User, error) {
	query := fmt.Sprintf(`SELECT id, uid, name, email, password_hash FROM users WHERE %s = $1`, column)

	var user User
	err := u.db.QueryRow(ctx, query, value).Scan(
		&user.Id,
		&user.Uid,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with %s %v not found", column, value)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}
