package models

// Organization types. CFC commissions work, OUR executes it.
const (
	OrgCFC = "CFC"
	OrgOUR = "OUR"
)

// User roles.
const (
	RoleCFCAdmin   = "CFC_ADMIN"
	RoleCFCManager = "CFC_MANAGER"
	RoleOURAdmin   = "OUR_ADMIN"
	RoleOURManager = "OUR_MANAGER"
	RoleOURUser    = "OUR_USER"
)

// Task lifecycle statuses.
const (
	TaskStatusPending     = "pending"
	TaskStatusInProgress  = "in_progress"
	TaskStatusCompleted   = "completed"
	TaskStatusDeactivated = "deactivated"
)

// Task recurrence types.
const (
	TaskTypeDaily  = "daily"
	TaskTypeWeekly = "weekly"
	TaskTypeAdhoc  = "adhoc"
)

// Reward ledger statuses.
const (
	RewardStatusPending = "pending"
	RewardStatusPaid    = "paid"
)

// IsAssignerRole reports whether the role may assign tasks to users.
func IsAssignerRole(role string) bool {
	switch role {
	case RoleCFCAdmin, RoleCFCManager, RoleOURAdmin, RoleOURManager:
		return true
	}
	return false
}
