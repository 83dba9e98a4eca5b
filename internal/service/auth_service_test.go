package service

import (
	"testing"

	"github.com/taxmate/taxmate-backend/internal/testutil"
)

func TestAuthenticateUser_NewUserGetsWorkspace(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	authService := NewAuthService(userRepo, workspaceRepo)

	result, err := authService.AuthenticateUser("auth0|abc", "user@example.com", nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.IsNewUser {
		t.Error("Expected IsNewUser for first login")
	}
	if result.Workspace == nil || result.Workspace.Name != "My Business" {
		t.Errorf("Expected default workspace, got %+v", result.Workspace)
	}
	if result.User.Email != "user@example.com" {
		t.Errorf("Expected email preserved, got %s", result.User.Email)
	}
}

func TestAuthenticateUser_ExistingUser(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	workspaceRepo := testutil.NewMockWorkspaceRepository()
	authService := NewAuthService(userRepo, workspaceRepo)

	first, err := authService.AuthenticateUser("auth0|abc", "user@example.com", nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	second, err := authService.AuthenticateUser("auth0|abc", "user@example.com", nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if second.IsNewUser {
		t.Error("Expected existing user on second login")
	}
	if second.Workspace.ID != first.Workspace.ID {
		t.Errorf("Expected same workspace, got %d and %d", first.Workspace.ID, second.Workspace.ID)
	}
}
