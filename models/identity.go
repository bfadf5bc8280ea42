package models

// AuthenticatedIdentity is the decision of the authorization gate for one caller.
type AuthenticatedIdentity struct {
	UserID  string
	Role    UserRole
	OwnerID *string
	Name    string
	Email   string
}

func NewAuthenticatedIdentity(user *User) AuthenticatedIdentity {
	return AuthenticatedIdentity{
		UserID:  user.ID,
		Role:    user.Role,
		OwnerID: user.OwnerID,
		Name:    user.Name,
		Email:   user.Email,
	}
}

func (i AuthenticatedIdentity) IsDriver() bool { return i.Role == UserRoleDriver }
func (i AuthenticatedIdentity) IsOwner() bool  { return i.Role == UserRoleOwner }
