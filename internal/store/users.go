package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, name, password_hash, COALESCE(oauth_provider, ''), role, created_at, updated_at, version`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.OAuthProvider,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(ctx context.Context, db *sql.DB, email, name, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query := `
		INSERT INTO users (email, name, password_hash, created_at, updated_at, version)
		VALUES ($1, $2, $3, NOW(), NOW(), 1)
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, email, name, string(hash)))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// CreateOAuthUser records a user authenticated by an external provider.
// No local password is stored.
func CreateOAuthUser(ctx context.Context, db *sql.DB, email, name, provider string) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, oauth_provider, created_at, updated_at, version)
		VALUES ($1, $2, $3, NOW(), NOW(), 1)
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, email, name, provider))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("create oauth user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the password against the stored hash. Unknown
// email and wrong password both return ErrUserNotFound so callers cannot
// distinguish them.
func Authenticate(ctx context.Context, db *sql.DB, email, password string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, database.ErrUserNotFound
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// UpdateUserRole is admin-only at the handler layer.
func UpdateUserRole(ctx context.Context, db *sql.DB, id int64, role string) (*models.User, error) {
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, role, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user role: %w", err)
	}

	return user, nil
}

func ListUsers(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(users, total, page, pageSize), nil
}
