package utils

import "github.com/sunilgupta-arch/taskflow/models"

// rolePermissions maps each role to the action permissions it may perform.
// The boundary layer gates routes on these; the lifecycle engine still
// re-validates its own role/org preconditions.
var rolePermissions = map[string][]string{
	models.RoleCFCAdmin: {
		"task:create", "task:assign", "task:update", "task:deactivate", "task:delete",
		"report:view", "dashboard:admin",
	},
	models.RoleCFCManager: {
		"task:create", "task:assign", "task:update",
		"report:view", "dashboard:manager",
	},
	models.RoleOURAdmin: {
		"user:create", "user:manage", "task:reassign",
		"report:view", "reward:mark_paid", "dashboard:admin",
	},
	models.RoleOURManager: {
		"task:reassign", "report:view", "dashboard:manager",
	},
	models.RoleOURUser: {
		"task:view_assigned", "task:pick", "task:complete",
		"task:upload_attachment", "attendance:clock", "dashboard:user",
	},
}

// HasPermission reports whether role is granted perm.
func HasPermission(role, perm string) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
