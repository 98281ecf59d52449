package domain

import (
	"errors"
	"sort"
	"time"
)

// Role is the unified account role. Student and organization are self-service
// signups; the staff roles are provisioned by administrators.
type Role string

const (
	RoleStudent      Role = "student"
	RoleOrganization Role = "organization"
	RoleModerator    Role = "moderator"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "super_admin"
)

// AccountStatus is the lifecycle state of an account. Only active accounts can
// log in or pass access-token verification.
type AccountStatus string

const (
	StatusActive              AccountStatus = "active"
	StatusLocked              AccountStatus = "locked"
	StatusPendingApproval     AccountStatus = "pending_approval"
	StatusPendingVerification AccountStatus = "pending_verification"
)

// Granular permissions, granted through role defaults plus per-user grants.
const (
	PermUsersView    = "users:view"
	PermUsersEdit    = "users:edit"
	PermUsersDelete  = "users:delete"
	PermUsersApprove = "users:approve"

	PermOrgsView    = "orgs:view"
	PermOrgsEdit    = "orgs:edit"
	PermOrgsDelete  = "orgs:delete"
	PermOrgsApprove = "orgs:approve"

	PermAdminsView   = "admins:view"
	PermAdminsCreate = "admins:create"
	PermAdminsEdit   = "admins:edit"
	PermAdminsDelete = "admins:delete"

	PermSystemSettings = "system:settings"
	PermSystemLogs     = "system:logs"
)

// AllPermissions lists every known permission (super_admin default set).
var AllPermissions = []string{
	PermUsersView, PermUsersEdit, PermUsersDelete, PermUsersApprove,
	PermOrgsView, PermOrgsEdit, PermOrgsDelete, PermOrgsApprove,
	PermAdminsView, PermAdminsCreate, PermAdminsEdit, PermAdminsDelete,
	PermSystemSettings, PermSystemLogs,
}

// RolePermissions maps each role to its default permission set. Students and
// organizations carry no administrative permissions.
var RolePermissions = map[Role][]string{
	RoleStudent:      {},
	RoleOrganization: {},
	RoleModerator: {
		PermUsersView,
		PermOrgsView,
	},
	RoleAdmin: {
		PermUsersView, PermUsersEdit, PermUsersApprove,
		PermOrgsView, PermOrgsEdit, PermOrgsApprove,
		PermAdminsView, PermAdminsCreate, PermAdminsEdit,
	},
	RoleSuperAdmin: AllPermissions,
}

// User is the core identity record.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Status       AccountStatus

	// Student fields.
	FirstName string
	LastName  string

	// Organization fields.
	OrganizationName string
	OrganizationType string

	// Permissions holds per-user grants beyond the role defaults.
	Permissions []string

	TermsAcceptedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate validates the user for persistence.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	switch u.Role {
	case RoleStudent, RoleOrganization, RoleModerator, RoleAdmin, RoleSuperAdmin:
	default:
		return errors.New("invalid role")
	}
	switch u.Status {
	case StatusActive, StatusLocked, StatusPendingApproval, StatusPendingVerification:
	default:
		return errors.New("invalid account status")
	}
	return nil
}

// DisplayName returns the student's full name, the organization name, or the
// email address, whichever applies first.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.OrganizationName != "":
		return u.OrganizationName
	default:
		return u.Email
	}
}

// EffectivePermissions unions the role's default permissions with the user's
// own grants, deduplicated and sorted.
func (u *User) EffectivePermissions() []string {
	seen := make(map[string]struct{})
	for _, p := range RolePermissions[u.Role] {
		seen[p] = struct{}{}
	}
	for _, p := range u.Permissions {
		if p != "" {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
