// Package domain contains entity without logic, just meta-data
package domain

type UserID string

type Role string

const (
	RoleTrainer Role = "trainer"
	RoleUser    Role = "user"
)

// Identity is the authenticated principal behind a connection.
// Read-only inside this subsystem; the user directory owns it.
type Identity struct {
	UserID UserID `json:"userId"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Active bool   `json:"-"`
}

// CanHost reports whether this identity may start or end classes.
func (i Identity) CanHost() bool { return i.Role == RoleTrainer }
