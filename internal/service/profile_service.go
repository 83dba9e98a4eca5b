package service

import (
	"strings"

	"github.com/taxmate/taxmate-backend/internal/domain"
	"github.com/taxmate/taxmate-backend/internal/util"
)

// ProfileService handles user and business profile logic
type ProfileService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository, workspaceRepo domain.WorkspaceRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo, workspaceRepo: workspaceRepo}
}

// GetProfile retrieves a user's profile by Auth0 ID
func (s *ProfileService) GetProfile(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// UpdateProfile updates a user's name by Auth0 ID
func (s *ProfileService) UpdateProfile(auth0ID string, name string) (*domain.User, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, domain.ErrNameRequired
	}
	return s.userRepo.UpdateName(auth0ID, trimmed)
}

// UpdateBusinessProfile updates the workspace's business details. An ABN,
// when supplied, must pass the ATO checksum.
func (s *ProfileService) UpdateBusinessProfile(workspaceID int32, name string, abn, businessName *string) (*domain.Workspace, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, domain.ErrNameRequired
	}

	if abn != nil && *abn != "" {
		if !util.ValidateABN(*abn) {
			return nil, domain.ErrInvalidABN
		}
	}

	return s.workspaceRepo.UpdateProfile(workspaceID, trimmed, abn, businessName)
}
