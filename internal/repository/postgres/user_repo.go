package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "id, auth0_id, email, name, picture_url, created_at, updated_at"

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+userColumns+" FROM users WHERE auth0_id = $1", auth0ID)
	return scanUser(row)
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO users (auth0_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		user.Auth0ID, user.Email, stringPtrToPgText(user.Name), stringPtrToPgText(user.PictureURL))
	return scanUser(row)
}

// UpdateName updates only the user's name by Auth0 ID
func (r *UserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE users SET name = $2, updated_at = now()
		 WHERE auth0_id = $1
		 RETURNING `+userColumns,
		auth0ID, name)
	return scanUser(row)
}

// CreateOrGetByAuth0ID creates a new user or returns the existing one
// (upsert on login)
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO users (auth0_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (auth0_id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()
		 RETURNING `+userColumns,
		auth0ID, email, stringPtrToPgText(name), stringPtrToPgText(pictureURL))
	return scanUser(row)
}

// Helper functions

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		name       pgtype.Text
		pictureURL pgtype.Text
	)
	err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &name, &pictureURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Name = pgTextToStringPtr(name)
	u.PictureURL = pgTextToStringPtr(pictureURL)
	return &u, nil
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
