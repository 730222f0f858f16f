package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Dan9191/auth-service/internal/models"
)

// SQLSTATE for unique_violation
const uniqueViolation pq.ErrorCode = "23505"

var _ UserRepository = (*PostgresRepository)(nil)

// PostgresRepository stores users in PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository initializes a new repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a copy of user and returns it. Uniqueness of email and username is enforced by the table.
func (r *PostgresRepository) Create(ctx context.Context, in *models.User) (*models.User, error) {
	user := *in
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, name, email, username, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Username, user.PasswordHash, string(user.Role)).
		Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by email
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, username, password_hash, role, created_at
		FROM users
		WHERE email = $1`
	return r.findOne(ctx, query, email)
}

// FindByUsername retrieves a user by username
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, name, email, username, password_hash, role, created_at
		FROM users
		WHERE username = $1`
	return r.findOne(ctx, query, username)
}

// Ping checks if the database is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
