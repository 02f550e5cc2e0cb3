package domain

import "github.com/google/uuid"

// Role values carried in identity tokens issued by the auth subsystem.
const (
	RoleAdmin    = "admin"
	RoleBusiness = "business"
	RoleConsumer = "consumer"
)

// Identity is the authenticated principal behind a request. Credentials are
// resolved upstream; only the stable user ID and role reach the domain.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// Valid reports whether the identity resolves to a user.
func (i Identity) Valid() bool {
	return i.UserID != uuid.Nil
}
