package domain

import (
	"fmt"
	"testing"
)

func TestRoleFromProviderTag(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want WorkspaceRole
	}{
		{name: "admin tag", tag: "org:admin", want: WorkspaceRoleAdmin},
		{name: "member tag", tag: "org:member", want: WorkspaceRoleMember},
		{name: "custom tag", tag: "org:billing_manager", want: WorkspaceRoleMember},
		{name: "empty tag", tag: "", want: WorkspaceRoleMember},
		{name: "upper case admin", tag: "ORG:ADMIN", want: WorkspaceRoleMember},
		{name: "bare admin", tag: "admin", want: WorkspaceRoleMember},
		{name: "admin with whitespace", tag: " org:admin", want: WorkspaceRoleMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFromProviderTag(tt.tag); got != tt.want {
				t.Errorf("RoleFromProviderTag(%q) = %s, want %s", tt.tag, got, tt.want)
			}
		})
	}
}

func TestRoleFromProviderTag_Stable(t *testing.T) {
	for i := 0; i < 50; i++ {
		tag := fmt.Sprintf("org:role_%d", i)
		first := RoleFromProviderTag(tag)
		if !first.IsValid() {
			t.Fatalf("Expected a valid role for %q, got %q", tag, first)
		}
		if again := RoleFromProviderTag(tag); again != first {
			t.Errorf("Expected stable mapping for %q, got %s then %s", tag, first, again)
		}
	}
}

func TestWorkspaceRole_IsValid(t *testing.T) {
	if !WorkspaceRoleAdmin.IsValid() || !WorkspaceRoleMember.IsValid() {
		t.Error("Expected ADMIN and MEMBER to be valid")
	}
	for _, r := range []WorkspaceRole{"", "admin", "OWNER", "member"} {
		if r.IsValid() {
			t.Errorf("Expected %q to be invalid", r)
		}
	}
}

func TestAddMemberInput_Validate(t *testing.T) {
	valid := AddMemberInput{Email: "a@x.com", Role: WorkspaceRoleMember, WorkspaceID: "org_1"}

	tests := []struct {
		name    string
		mutate  func(in *AddMemberInput)
		wantErr error
	}{
		{name: "valid", mutate: func(in *AddMemberInput) {}},
		{name: "missing email", mutate: func(in *AddMemberInput) { in.Email = "" }, wantErr: ErrEmailRequired},
		{name: "missing workspace", mutate: func(in *AddMemberInput) { in.WorkspaceID = "" }, wantErr: ErrWorkspaceIDRequired},
		{name: "missing role", mutate: func(in *AddMemberInput) { in.Role = "" }, wantErr: ErrRoleRequired},
		{name: "unknown role", mutate: func(in *AddMemberInput) { in.Role = "OWNER" }, wantErr: ErrInvalidRole},
		{name: "lower case role", mutate: func(in *AddMemberInput) { in.Role = "admin" }, wantErr: ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !IsValidationError(err) {
				t.Errorf("Expected %v to be a validation error", err)
			}
		})
	}
}
