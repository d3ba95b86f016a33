package webhook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
)

// Event types delivered by the identity provider
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"

	EventOrganizationCreated = "organization.created"
	EventOrganizationUpdated = "organization.updated"
	EventOrganizationDeleted = "organization.deleted"

	EventMembershipCreated = "organizationMembership.created"
	EventMembershipUpdated = "organizationMembership.updated"
	EventMembershipDeleted = "organizationMembership.deleted"

	EventInvitationAccepted = "organizationInvitation.accepted"
)

// Envelope is the outer shape of every delivery
type Envelope struct {
	Type       string          `json:"type"`
	Object     string          `json:"object"`
	Data       json.RawMessage `json:"data"`
	Timestamp  int64           `json:"timestamp"`
	InstanceID string          `json:"instance_id"`
}

// EmailAddress is one entry of a user's email_addresses list
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the data of user.created and user.updated
type UserData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              string         `json:"image_url"`
}

// DeletedObjectData is the data of every *.deleted event except memberships
type DeletedObjectData struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// OrganizationData is the data of organization.created and organization.updated
type OrganizationData struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	ImageURL  string  `json:"image_url"`
	CreatedBy *string `json:"created_by"`
}

// PublicUserData is the user summary embedded in memberships and invitations
type PublicUserData struct {
	UserID     string `json:"user_id"`
	Identifier string `json:"identifier"`
}

// MembershipData is the data of organizationMembership.* events
type MembershipData struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Organization struct {
		ID string `json:"id"`
	} `json:"organization"`
	PublicUserData PublicUserData `json:"public_user_data"`
}

// InvitationData is the data of organizationInvitation.accepted
type InvitationData struct {
	ID             string          `json:"id"`
	EmailAddress   string          `json:"email_address"`
	OrganizationID string          `json:"organization_id"`
	Role           string          `json:"role"`
	Status         string          `json:"status"`
	PublicUserData *PublicUserData `json:"public_user_data"`
}

// ParseEnvelope decodes the outer envelope of a delivery
func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrInvalidPayload)
	}
	return &env, nil
}

// DecodeData unmarshals the envelope data into out
func (e *Envelope) DecodeData(out interface{}) error {
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("%w: decoding %s data: %v", ErrInvalidPayload, e.Type, err)
	}
	return nil
}

// PrimaryEmail returns the address whose id matches primary_email_address_id,
// falling back to the first address
func (u UserData) PrimaryEmail() string {
	if u.PrimaryEmailAddressID != nil {
		for _, addr := range u.EmailAddresses {
			if addr.ID == *u.PrimaryEmailAddressID {
				return addr.EmailAddress
			}
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// ToIdentity converts the payload into the reconciler's input
func (u UserData) ToIdentity() domain.IdentityUser {
	return domain.IdentityUser{
		ID:        u.ID,
		Email:     u.PrimaryEmail(),
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
		ImageURL:  u.ImageURL,
	}
}

// ToIdentity converts the payload into the reconciler's input
func (o OrganizationData) ToIdentity() domain.IdentityOrganization {
	return domain.IdentityOrganization{
		ID:        o.ID,
		Name:      o.Name,
		Slug:      o.Slug,
		ImageURL:  o.ImageURL,
		CreatedBy: deref(o.CreatedBy),
	}
}

// ToIdentity converts the payload into the reconciler's input
func (m MembershipData) ToIdentity() domain.IdentityMembership {
	return domain.IdentityMembership{
		UserID:         m.PublicUserData.UserID,
		UserEmail:      strings.TrimSpace(m.PublicUserData.Identifier),
		OrganizationID: m.Organization.ID,
		RoleTag:        m.Role,
	}
}

// ToIdentity converts the payload into the reconciler's input.
// The user id is empty when the provider did not link the invitation to a user yet.
func (i InvitationData) ToIdentity() domain.IdentityMembership {
	membership := domain.IdentityMembership{
		UserEmail:      strings.TrimSpace(i.EmailAddress),
		OrganizationID: i.OrganizationID,
		RoleTag:        i.Role,
	}
	if i.PublicUserData != nil {
		membership.UserID = i.PublicUserData.UserID
	}
	return membership
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
