package service

import "hirelane/api/internal/models"

type Action string

const (
	ActionInviteUsers      Action = "invite_users"
	ActionListApplications Action = "list_applications"
	ActionManageJobs       Action = "manage_jobs"
)

// Authorizer answers capability questions about an authenticated user.
type Authorizer interface {
	Can(user models.User, action Action) bool
}

// RoleAuthorizer maps roles to actions statically. Admins can do
// everything; staff can review applications but not administer accounts
// or jobs.
type RoleAuthorizer struct{}

func NewRoleAuthorizer() RoleAuthorizer {
	return RoleAuthorizer{}
}

func (RoleAuthorizer) Can(user models.User, action Action) bool {
	if user.HasRole(models.RoleAdmin) {
		return true
	}
	if user.HasRole(models.RoleStaff) {
		return action == ActionListApplications
	}
	return false
}
