package model

// IdentityKind distinguishes customer sessions from employee sessions.
type IdentityKind string

const (
	KindCustomer IdentityKind = "customer"
	KindEmployee IdentityKind = "employee"
)

// Identity is the signed-in principal carried in the session cookie.
type Identity struct {
	Kind  IdentityKind `json:"kind"`
	ID    int          `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Role  Role         `json:"role,omitempty"`
}

func (i *Identity) IsCustomer() bool {
	return i != nil && i.Kind == KindCustomer
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Kind == KindEmployee && i.Role == RoleAdmin
}

// CustomerIdentity builds the session identity for a signed-in customer.
func CustomerIdentity(c Customer) Identity {
	return Identity{Kind: KindCustomer, ID: c.CustomerID, Name: c.FullName(), Email: c.Email}
}

// EmployeeIdentity builds the session identity for a signed-in employee.
func EmployeeIdentity(e Employee) Identity {
	return Identity{Kind: KindEmployee, ID: e.EmployeeNumber, Name: e.FullName(), Email: e.Email, Role: e.Role}
}
