package core

// Roles
const (
	RoleStudent   = "student"
	RoleInstitute = "institute"
	RoleCompany   = "company"
	RoleAdmin     = "admin"
)

var AllRoles = []string{RoleStudent, RoleInstitute, RoleCompany, RoleAdmin}

// Actor is the already-authenticated identity attached to every operation.
// The engine never authenticates; it only authorizes against role & ownership.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsStudent() bool   { return a.Role == RoleStudent }
func (a Actor) IsInstitute() bool { return a.Role == RoleInstitute }
func (a Actor) IsCompany() bool   { return a.Role == RoleCompany }
func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
