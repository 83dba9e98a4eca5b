package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taxmate/taxmate-backend/internal/domain"
)

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

const workspaceColumns = "id, user_id, name, abn, business_name, created_at, updated_at"

// GetByID retrieves a workspace by its ID
func (r *WorkspaceRepository) GetByID(id int32) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+workspaceColumns+" FROM workspaces WHERE id = $1", id)
	return scanWorkspace(row)
}

// GetByUserID retrieves a workspace by user ID
func (r *WorkspaceRepository) GetByUserID(userID uuid.UUID) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+workspaceColumns+" FROM workspaces WHERE user_id = $1", userID)
	return scanWorkspace(row)
}

// GetByUserAuth0ID retrieves a workspace by the owning user's Auth0 ID
func (r *WorkspaceRepository) GetByUserAuth0ID(auth0ID string) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT w.id, w.user_id, w.name, w.abn, w.business_name, w.created_at, w.updated_at
		 FROM workspaces w
		 JOIN users u ON u.id = w.user_id
		 WHERE u.auth0_id = $1`, auth0ID)
	return scanWorkspace(row)
}

// Create creates a new workspace
func (r *WorkspaceRepository) Create(workspace *domain.Workspace) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO workspaces (user_id, name)
		 VALUES ($1, $2)
		 RETURNING `+workspaceColumns,
		workspace.UserID, workspace.Name)
	return scanWorkspace(row)
}

// UpdateProfile updates the workspace's business details
func (r *WorkspaceRepository) UpdateProfile(id int32, name string, abn, businessName *string) (*domain.Workspace, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE workspaces SET name = $2, abn = $3, business_name = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+workspaceColumns,
		id, name, stringPtrToPgText(abn), stringPtrToPgText(businessName))
	return scanWorkspace(row)
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var (
		w            domain.Workspace
		abn          pgtype.Text
		businessName pgtype.Text
	)
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &abn, &businessName, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	w.ABN = pgTextToStringPtr(abn)
	w.BusinessName = pgTextToStringPtr(businessName)
	return &w, nil
}
