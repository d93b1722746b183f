package models

// Role is the account type of a user.
type Role string

const (
	RolePatient Role = "patient"
	RoleDriver  Role = "driver"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDriver || r == RoleAdmin
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsDriver() bool  { return a.Role == RoleDriver }
func (a Actor) IsPatient() bool { return a.Role == RolePatient }

// System is the actor used by background jobs.
var System = Actor{ID: "system", Role: RoleAdmin}
