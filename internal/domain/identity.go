package domain

// IdentityUser carries the user fields of an identity-provider user event
type IdentityUser struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	ImageURL  string
}

// IdentityOrganization carries the fields of an identity-provider organization event
type IdentityOrganization struct {
	ID        string
	Name      string
	Slug      string
	ImageURL  string
	CreatedBy string
}

// IdentityMembership carries the fields of an identity-provider membership event.
// UserEmail is only used when UserID is unknown (invitation acceptance).
type IdentityMembership struct {
	UserID         string
	UserEmail      string
	OrganizationID string
	RoleTag        string
}
