package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Membership ties a user to the company (tenant) they act for.
type Membership struct {
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

// Claims represents the JWT claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	IsStaff    bool       `json:"is_staff"`
	Membership Membership `json:"membership"`
}

// Identity is the subject a token is issued for.
type Identity struct {
	UserID     string
	Email      string
	IsStaff    bool
	Membership Membership
}

// Identity returns the subject carried by the claims.
func (c Claims) Identity() Identity {
	return Identity{
		UserID:     c.UserID,
		Email:      c.Email,
		IsStaff:    c.IsStaff,
		Membership: c.Membership,
	}
}

// MembershipActive reports whether the membership is usable.
func (c Claims) MembershipActive() bool {
	return c.Membership.Status == MembershipActive
}

// Membership statuses.
const (
	MembershipActive  = "active"
	MembershipInvited = "invited"
	MembershipRevoked = "revoked"
)
