package directory

import "time"

const (
	RoleAdmin    = "ADMIN"
	RoleApprover = "APPROVER"
	RoleEmployee = "EMPLOYEE"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleApprover, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	TeamID    *string    `json:"teamId,omitempty"`
	TeamName  string     `json:"teamName,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type CreateUser struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role"`
	TeamID    *string `json:"teamId,omitempty"`
}

// UpdateUser is a partial update; nil fields are left untouched.
type UpdateUser struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *string `json:"role,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	TeamID    *string `json:"teamId,omitempty"`
}

type Team struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	LeaderID    *string    `json:"leaderId,omitempty"`
	MemberCount int        `json:"memberCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}
