package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is a user's business workspace. ABN is optional until the user
// fills in their business profile; once set it must pass the ATO checksum.
type Workspace struct {
	ID           int32     `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	Name         string    `json:"name"`
	ABN          *string   `json:"abn,omitempty"`
	BusinessName *string   `json:"businessName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	GetByID(id int32) (*Workspace, error)
	GetByUserID(userID uuid.UUID) (*Workspace, error)
	GetByUserAuth0ID(auth0ID string) (*Workspace, error)
	Create(workspace *Workspace) (*Workspace, error)
	UpdateProfile(id int32, name string, abn, businessName *string) (*Workspace, error)
}
