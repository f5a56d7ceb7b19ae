package model

// Membership ties an actor to the company they act for.
type Membership struct {
	CompanyID string
	Role      string
	Status    string
}

// Actor is the opaque caller context supplied by the auth layer.
type Actor struct {
	UserID     string
	Email      string
	IsStaff    bool
	Membership Membership
}

// SystemActor is used for transitions triggered by the platform itself, such
// as delinquency intake.
var SystemActor = Actor{UserID: "system", IsStaff: true}

// MembershipStatusActive is the only membership status that grants access.
const MembershipStatusActive = "active"

// CanActFor reports whether the actor may operate on companyID. Staff may act
// on any company.
func (a Actor) CanActFor(companyID string) bool {
	if a.IsStaff {
		return true
	}
	return a.Membership.CompanyID == companyID && a.Membership.Status == MembershipStatusActive
}
