package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/befit/internal/telemetry/tracing"
	"github.com/2beens/befit/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already taken")
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Principal() Principal {
	return Principal{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    u.Roles,
	}
}

type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{
		db: db,
	}
}

// Add stores a new user with a generated id.
func (r *UsersRepo) Add(ctx context.Context, username, passwordHash string, roles []string) (_ User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if roles == nil {
		roles = []string{}
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO user_account (id, username, password_hash, roles, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.PasswordHash, user.Roles, user.CreatedAt,
	)
	if pkg.IsUniqueViolationError(err) {
		return User{}, ErrUserExists
	}
	if err != nil {
		return User{}, fmt.Errorf("add user [exec]: %w", err)
	}

	return user, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (_ User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var user User
	err = r.db.QueryRow(
		ctx,
		`SELECT id, username, password_hash, roles, created_at
		FROM user_account
		WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Roles, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user [query row]: %w", err)
	}

	return user, nil
}

func (r *UsersRepo) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.users.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, password_hash, roles, created_at
		FROM user_account
		ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users [query]: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Roles, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("list users [rows scan]: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// SetRoles replaces the roles of the user.
func (r *UsersRepo) SetRoles(ctx context.Context, username string, roles []string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.users.set_roles")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if roles == nil {
		roles = []string{}
	}
	tag, err := r.db.Exec(ctx, `UPDATE user_account SET roles = $2 WHERE username = $1`, username, roles)
	if err != nil {
		return fmt.Errorf("set roles [exec]: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
