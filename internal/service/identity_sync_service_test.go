package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/testutil"
)

func newIdentitySyncService(store *testutil.MemoryStore) (*IdentitySyncService, *testutil.MockEventPublisher) {
	svc := NewIdentitySyncService(
		store.UserRepository(),
		store.WorkspaceRepository(),
		store.MemberRepository(),
		store.Transactor(),
	)
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)
	return svc, publisher
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{"", "", ""},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.first, tt.last); got != tt.want {
			t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestSyncUser_CreateThenUpdate(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc, _ := newIdentitySyncService(store)
	ctx := context.Background()

	_, err := svc.SyncUser(ctx, domain.IdentityUser{ID: "user_1", Email: "ada@example.com", FirstName: "Ada"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	user, err := svc.SyncUser(ctx, domain.IdentityUser{
		ID:        "user_1",
		Email:     "ada@lovelace.dev",
		FirstName: "Ada",
		LastName:  "Lovelace",
		ImageURL:  "https://img.example.com/ada.png",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if store.UserCount() != 1 {
		t.Fatalf("Expected 1 user, got %d", store.UserCount())
	}
	if user.Name != "Ada Lovelace" {
		t.Errorf("Expected name 'Ada Lovelace', got %q", user.Name)
	}
	if got := store.User("user_1"); got.Email != "ada@lovelace.dev" || got.ImageURL != "https://img.example.com/ada.png" {
		t.Errorf("Expected updated email and image, got %+v", got)
	}
}

func TestSyncUser_StoreErrorSurfaces(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.UserUpsertErr = errors.New("connection reset")
	svc, _ := newIdentitySyncService(store)

	_, err := svc.SyncUser(context.Background(), domain.IdentityUser{ID: "user_1", Email: "a@x.com"})
	if !errors.Is(err, store.UserUpsertErr) {
		t.Fatalf("Expected wrapped store error, got %v", err)
	}
}

func TestDeleteUser_Idempotent(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	svc, _ := newIdentitySyncService(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.DeleteUser(ctx, "user_1"); err != nil {
			t.Fatalf("Expected no error on delete %d, got %v", i+1, err)
		}
	}
	if err := svc.DeleteUser(ctx, "user_never_existed"); err != nil {
		t.Fatalf("Expected no error for absent user, got %v", err)
	}
	if store.UserCount() != 0 {
		t.Errorf("Expected 0 users, got %d", store.UserCount())
	}
}

func TestCreateWorkspace_WritesWorkspaceAndAdminMembership(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	svc, _ := newIdentitySyncService(store)

	ws, err := svc.CreateWorkspace(context.Background(), domain.IdentityOrganization{
		ID: "org_1", Name: "Acme", Slug: "acme", CreatedBy: "user_1",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ws.OwnerID == nil || *ws.OwnerID != "user_1" {
		t.Fatalf("Expected owner user_1, got %v", ws.OwnerID)
	}

	member := store.Member("user_1", "org_1")
	if member == nil {
		t.Fatal("Expected owner membership, got none")
	}
	if member.Role != domain.WorkspaceRoleAdmin {
		t.Errorf("Expected role ADMIN, got %s", member.Role)
	}
}

func TestCreateWorkspace_RedeliveryKeepsOwner(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	store.AddUser(&domain.User{ID: "user_2", Email: "b@x.com"})
	svc, _ := newIdentitySyncService(store)
	ctx := context.Background()

	org := domain.IdentityOrganization{ID: "org_1", Name: "Acme", Slug: "acme", CreatedBy: "user_1"}
	if _, err := svc.CreateWorkspace(ctx, org); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	org.Name = "Acme Inc"
	org.CreatedBy = "user_2"
	if _, err := svc.CreateWorkspace(ctx, org); err != nil {
		t.Fatalf("Expected no error on redelivery, got %v", err)
	}

	ws := store.Workspace("org_1")
	if ws.Name != "Acme Inc" {
		t.Errorf("Expected name refreshed to 'Acme Inc', got %q", ws.Name)
	}
	if ws.OwnerID == nil || *ws.OwnerID != "user_1" {
		t.Errorf("Expected owner to stay user_1, got %v", ws.OwnerID)
	}
	if store.WorkspaceCount() != 1 {
		t.Errorf("Expected 1 workspace, got %d", store.WorkspaceCount())
	}
}

func TestCreateWorkspace_AtomicWhenMembershipFails(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	store.MemberUpsertErr = errors.New("injected membership failure")
	svc, _ := newIdentitySyncService(store)

	_, err := svc.CreateWorkspace(context.Background(), domain.IdentityOrganization{
		ID: "org_1", Name: "Acme", Slug: "acme", CreatedBy: "user_1",
	})
	if !errors.Is(err, store.MemberUpsertErr) {
		t.Fatalf("Expected injected error, got %v", err)
	}

	if store.Workspace("org_1") != nil {
		t.Error("Expected workspace write to be rolled back")
	}
	if store.MemberCount() != 0 {
		t.Errorf("Expected 0 memberships, got %d", store.MemberCount())
	}
}

func TestCreateWorkspace_UnknownCreatorFailsWholeTransaction(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc, _ := newIdentitySyncService(store)

	_, err := svc.CreateWorkspace(context.Background(), domain.IdentityOrganization{
		ID: "org_1", Name: "Acme", Slug: "acme", CreatedBy: "user_missing",
	})
	if !errors.Is(err, domain.ErrReferenceNotFound) {
		t.Fatalf("Expected ErrReferenceNotFound, got %v", err)
	}
	if store.WorkspaceCount() != 0 {
		t.Errorf("Expected no workspace, got %d", store.WorkspaceCount())
	}
}

func TestUpdateWorkspace(t *testing.T) {
	store := testutil.NewMemoryStore()
	owner := "user_1"
	store.AddUser(&domain.User{ID: owner, Email: "a@x.com"})
	store.AddWorkspace(&domain.Workspace{ID: "org_1", Name: "Acme", Slug: "acme", OwnerID: &owner})
	store.AddMember(owner, "org_1", domain.WorkspaceRoleAdmin)
	svc, publisher := newIdentitySyncService(store)
	ctx := context.Background()

	ws, err := svc.UpdateWorkspace(ctx, domain.IdentityOrganization{ID: "org_1", Name: "Acme 2", Slug: "acme-2", CreatedBy: "user_other"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ws.Name != "Acme 2" || ws.Slug != "acme-2" {
		t.Errorf("Expected updated name and slug, got %q %q", ws.Name, ws.Slug)
	}
	if ws.OwnerID == nil || *ws.OwnerID != owner {
		t.Errorf("Expected owner untouched, got %v", ws.OwnerID)
	}
	if store.MemberCount() != 1 {
		t.Errorf("Expected membership untouched, got %d rows", store.MemberCount())
	}
	if types := publisher.Types(); len(types) != 1 || types[0] != "workspace.updated" {
		t.Errorf("Expected workspace.updated event, got %v", types)
	}

	_, err = svc.UpdateWorkspace(ctx, domain.IdentityOrganization{ID: "org_missing", Name: "X", Slug: "x"})
	if !errors.Is(err, domain.ErrWorkspaceNotFound) {
		t.Errorf("Expected ErrWorkspaceNotFound for absent workspace, got %v", err)
	}
}

func TestDeleteWorkspace_IdempotentAndCascades(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	store.AddWorkspace(&domain.Workspace{ID: "org_1", Name: "Acme", Slug: "acme"})
	store.AddMember("user_1", "org_1", domain.WorkspaceRoleAdmin)
	svc, publisher := newIdentitySyncService(store)
	ctx := context.Background()

	if err := svc.DeleteWorkspace(ctx, "org_1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := svc.DeleteWorkspace(ctx, "org_1"); err != nil {
		t.Fatalf("Expected no error on second delete, got %v", err)
	}
	if store.MemberCount() != 0 {
		t.Errorf("Expected memberships to cascade, got %d", store.MemberCount())
	}
	if len(publisher.Events) != 1 {
		t.Errorf("Expected 1 event for the effective delete, got %d", len(publisher.Events))
	}
}

func TestUpsertMembership_Converges(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	store.AddWorkspace(&domain.Workspace{ID: "org_1", Name: "Acme", Slug: "acme"})
	svc, _ := newIdentitySyncService(store)
	ctx := context.Background()

	in := domain.IdentityMembership{UserID: "user_1", OrganizationID: "org_1", RoleTag: "org:member"}
	for i := 0; i < 3; i++ {
		if _, err := svc.UpsertMembership(ctx, in); err != nil {
			t.Fatalf("Expected no error on delivery %d, got %v", i+1, err)
		}
	}
	if store.MemberCount() != 1 {
		t.Fatalf("Expected 1 membership, got %d", store.MemberCount())
	}
	if role := store.Member("user_1", "org_1").Role; role != domain.WorkspaceRoleMember {
		t.Errorf("Expected MEMBER, got %s", role)
	}

	in.RoleTag = "org:admin"
	if _, err := svc.UpsertMembership(ctx, in); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if role := store.Member("user_1", "org_1").Role; role != domain.WorkspaceRoleAdmin {
		t.Errorf("Expected ADMIN after role change, got %s", role)
	}
	if store.MemberCount() != 1 {
		t.Errorf("Expected still 1 membership, got %d", store.MemberCount())
	}
}

func TestUpsertMembership_ResolvesByEmail(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	store.AddWorkspace(&domain.Workspace{ID: "org_1", Name: "Acme", Slug: "acme"})
	svc, _ := newIdentitySyncService(store)
	ctx := context.Background()

	member, err := svc.UpsertMembership(ctx, domain.IdentityMembership{UserEmail: "a@x.com", OrganizationID: "org_1", RoleTag: "org:member"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if member.UserID != "user_1" {
		t.Errorf("Expected user_1, got %s", member.UserID)
	}

	_, err = svc.UpsertMembership(ctx, domain.IdentityMembership{UserEmail: "nobody@x.com", OrganizationID: "org_1"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for unknown email, got %v", err)
	}
}

func TestUpsertMembership_MissingReferencesSurface(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	svc, _ := newIdentitySyncService(store)

	_, err := svc.UpsertMembership(context.Background(), domain.IdentityMembership{UserID: "user_1", OrganizationID: "org_late"})
	if !errors.Is(err, domain.ErrReferenceNotFound) {
		t.Fatalf("Expected ErrReferenceNotFound, got %v", err)
	}
	if store.MemberCount() != 0 {
		t.Errorf("Expected no membership, got %d", store.MemberCount())
	}
}

func TestDeleteMembership_Idempotent(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddUser(&domain.User{ID: "user_1", Email: "a@x.com"})
	store.AddWorkspace(&domain.Workspace{ID: "org_1", Name: "Acme", Slug: "acme"})
	store.AddMember("user_1", "org_1", domain.WorkspaceRoleMember)
	svc, publisher := newIdentitySyncService(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.DeleteMembership(ctx, "user_1", "org_1"); err != nil {
			t.Fatalf("Expected no error on delete %d, got %v", i+1, err)
		}
	}
	if store.MemberCount() != 0 {
		t.Errorf("Expected 0 memberships, got %d", store.MemberCount())
	}
	if types := publisher.Types(); len(types) != 1 || types[0] != "member.removed" {
		t.Errorf("Expected one member.removed event, got %v", types)
	}
}
