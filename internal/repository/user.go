package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service"
)

const userTableName = "users"

var userColumns = []string{"id", "name", "email", "password_hash", "role", "phone", "avatar", "created_at", "updated_at"}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) service.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query, args, err := psql().
		Insert(userTableName).
		Columns("name", "email", "password_hash", "role", "phone").
		Values(user.Name, user.Email, user.PasswordHash, user.Role, user.Phone).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where sq.Eq) (*models.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user models.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("user: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// ListByRole возвращает всех пользователей с ролью, например всех администраторов
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"role": role}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate users-by-role query: %w", err)
	}

	var users []*models.User
	if err := pgxscan.Select(ctx, r.pool, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch users by role: %w", err)
	}
	return users, nil
}

// UpdateCredentials обновляет имя, роль и хеш пароля
func (r *UserRepository) UpdateCredentials(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(userTableName).
		Set("name", user.Name).
		Set("role", user.Role).
		Set("password_hash", user.PasswordHash).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update user query: %w", err)
	}

	cmdTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user with id %s: %w", user.ID, models.ErrNotFound)
	}
	return nil
}
