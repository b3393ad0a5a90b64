package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "redpen/errors"
	"redpen/web/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullableName(name *string) sql.NullString {
	if name == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *name, Valid: true}
}

func namePtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// CreateUser inserts a user. The email must already be normalized.
func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string, name *string) (*types.User, error) {
	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO users (id, email, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.DB.ExecContext(ctx, query, user.ID, email, passwordHash, nullableName(name), user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.WrapErrorf(apperrors.ErrConflict, "user %s", email)
		}
		return nil, fmt.Errorf("%w: create user: %v", apperrors.ErrDatabaseOperation, err)
	}
	s.logger.Info("Created user", zap.String("user_id", user.ID.String()))
	return user, nil
}

// GetUserByEmail returns the user and its stored password hash.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*types.User, string, error) {
	query := `SELECT id, email, password_hash, name, created_at FROM users WHERE email = $1`

	var user types.User
	var hash string
	var name sql.NullString
	err := s.DB.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &hash, &name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", apperrors.WrapErrorf(apperrors.ErrNotFound, "user %s", email)
		}
		return nil, "", fmt.Errorf("%w: get user by email: %v", apperrors.ErrDatabaseOperation, err)
	}
	user.Name = namePtr(name)
	return &user, hash, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	query := `SELECT id, email, name, created_at FROM users WHERE id = $1`

	var user types.User
	var name sql.NullString
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapErrorf(apperrors.ErrNotFound, "user %s", id)
		}
		return nil, fmt.Errorf("%w: get user by id: %v", apperrors.ErrDatabaseOperation, err)
	}
	user.Name = namePtr(name)
	return &user, nil
}

func (s *PostgresStore) UpdateUserName(ctx context.Context, id uuid.UUID, name string) error {
	result, err := s.DB.ExecContext(ctx, `UPDATE users SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("%w: update user name: %v", apperrors.ErrDatabaseOperation, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update user name: %v", apperrors.ErrDatabaseOperation, err)
	}
	if rows == 0 {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, "user %s", id)
	}
	return nil
}
