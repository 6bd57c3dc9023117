package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/store"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	email := fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8])

	user, err := store.CreateUser(ctx, db, email, "Asha", "correct horse battery")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if user.Role != "user" {
		t.Errorf("Expected default role user, got %s", user.Role)
	}

	authed, err := store.Authenticate(ctx, db, email, "correct horse battery")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Errorf("Expected user %d, got %d", user.ID, authed.ID)
	}

	// Wrong password and unknown email are indistinguishable.
	if _, err := store.Authenticate(ctx, db, email, "wrong"); err != database.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound for wrong password, got %v", err)
	}
	if _, err := store.Authenticate(ctx, db, "nobody@example.com", "whatever"); err != database.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound for unknown email, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	email := fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8])

	if _, err := store.CreateUser(ctx, db, email, "First", "password123"); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	_, err := store.CreateUser(ctx, db, email, "Second", "password456")
	if err != database.ErrDuplicateEntry {
		t.Errorf("Expected ErrDuplicateEntry, got %v", err)
	}
}

func TestCreateOAuthUserHasNoPasswordLogin(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	email := fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8])

	user, err := store.CreateOAuthUser(ctx, db, email, "Ravi", "google")
	if err != nil {
		t.Fatalf("Create oauth user: %v", err)
	}
	if user.OAuthProvider != "google" {
		t.Errorf("Expected provider google, got %q", user.OAuthProvider)
	}

	// Provider accounts have no local password.
	if _, err := store.Authenticate(ctx, db, email, ""); err != database.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound for oauth account, got %v", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db)

	promoted, err := store.UpdateUserRole(ctx, db, user.ID, "admin")
	if err != nil {
		t.Fatalf("Update role: %v", err)
	}
	if promoted.Role != "admin" {
		t.Errorf("Expected role admin, got %s", promoted.Role)
	}
	if promoted.Version != user.Version+1 {
		t.Errorf("Expected version bump, got %d", promoted.Version)
	}

	if _, err := store.UpdateUserRole(ctx, db, 99999, "admin"); err != database.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
