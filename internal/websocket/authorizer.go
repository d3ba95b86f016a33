package websocket

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when the connection token does not resolve to a user
var ErrInvalidToken = errors.New("invalid token")

// ErrNotMember is returned when the user does not belong to the requested workspace
var ErrNotMember = errors.New("not a workspace member")

// PrincipalResolver turns a session token into a user ID
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (userID string, err error)
}

// MembershipChecker reports whether a user belongs to a workspace
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, workspaceID string) (bool, error)
}

// Authorizer admits a socket only for members of the requested workspace
type Authorizer struct {
	principals PrincipalResolver
	members    MembershipChecker
}

// NewAuthorizer creates a new Authorizer
func NewAuthorizer(principals PrincipalResolver, members MembershipChecker) *Authorizer {
	return &Authorizer{principals: principals, members: members}
}

// Authorize returns the user ID behind token once membership in workspaceID is confirmed
func (a *Authorizer) Authorize(ctx context.Context, token, workspaceID string) (string, error) {
	userID, err := a.principals.ResolvePrincipal(ctx, token)
	if err != nil || userID == "" {
		return "", ErrInvalidToken
	}

	ok, err := a.members.IsMember(ctx, userID, workspaceID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotMember
	}
	return userID, nil
}
