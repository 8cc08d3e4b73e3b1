package auth

import "github.com/frahmantamala/hrms-portal/internal"

// PermissionChecker mirrors the backend's role rules so pages only offer
// actions the backend will accept. The backend still enforces them.
type PermissionChecker interface {
	CanManageEngagement(user *internal.User) bool
	CanSubmitGrievance(user *internal.User) bool
	CanResolveGrievance(user *internal.User) bool
	CanReviewHRProfiles(user *internal.User) bool
	CanApproveEmployeeProfiles(user *internal.User) bool
	CanViewTeamLeaves(user *internal.User) bool
	CanBrowseEmployeeLeaves(user *internal.User) bool
	CanViewAllLeaves(user *internal.User) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) CanManageEngagement(user *internal.User) bool {
	return user.IsPrivileged()
}

func (c *DefaultPermissionChecker) CanSubmitGrievance(user *internal.User) bool {
	return user.HasRole(internal.RoleEmployee, internal.RoleHR)
}

func (c *DefaultPermissionChecker) CanResolveGrievance(user *internal.User) bool {
	return user.HasRole(internal.RoleManager)
}

func (c *DefaultPermissionChecker) CanReviewHRProfiles(user *internal.User) bool {
	return user.HasRole(internal.RoleManager)
}

func (c *DefaultPermissionChecker) CanApproveEmployeeProfiles(user *internal.User) bool {
	return user.HasRole(internal.RoleHR, internal.RoleAdmin)
}

func (c *DefaultPermissionChecker) CanViewTeamLeaves(user *internal.User) bool {
	return user.HasRole(internal.RoleManager)
}

func (c *DefaultPermissionChecker) CanBrowseEmployeeLeaves(user *internal.User) bool {
	return user.HasRole(internal.RoleHR, internal.RoleAdmin)
}

func (c *DefaultPermissionChecker) CanViewAllLeaves(user *internal.User) bool {
	return user.HasRole(internal.RoleAdmin)
}
