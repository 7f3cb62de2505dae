package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account known to the system. Roles are stored as a
// comma-separated string for schema compatibility but are always handled as a
// RoleSet in code.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Roles        RoleSet    `json:"roles"`
	Banned       bool       `json:"banned"`
	BanReason    string     `json:"ban_reason,omitempty"`
	BanExpires   *time.Time `json:"ban_expires,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsSuperAdmin reports whether the account holds the super_admin role.
func (u *User) IsSuperAdmin() bool { return u.Roles.Has(RoleSuperAdmin) }

// SearchField enumerates the user columns a listing may search on. Caller
// input is validated against this set before it goes anywhere near SQL.
type SearchField string

const (
	SearchFieldName  SearchField = "name"
	SearchFieldEmail SearchField = "email"
)

// SearchOperator enumerates the supported match operators.
type SearchOperator string

const (
	OperatorContains   SearchOperator = "contains"
	OperatorStartsWith SearchOperator = "starts_with"
	OperatorEndsWith   SearchOperator = "ends_with"
	OperatorEquals     SearchOperator = "equals"
)

// UserListQuery describes a user listing request. ExcludeSuperAdmins is set
// by the service when the requester is a plain admin.
type UserListQuery struct {
	SearchField        SearchField
	SearchOperator     SearchOperator
	SearchValue        string
	ExcludeSuperAdmins bool
	Limit              int
	Offset             int
}

// UserList is a page of users plus the total match count.
type UserList struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}
