package domain

// Action is an operation a role may perform on a doctype.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Roles carried in bearer tokens.
const (
	RoleSystemManager = "System Manager"
	RoleSalesManager  = "Sales Manager"
	RoleSalesUser     = "Sales User"
)

var rolePermissions = map[string]map[Action]bool{
	RoleSalesManager: {ActionRead: true, ActionWrite: true, ActionDelete: true},
	RoleSalesUser:    {ActionRead: true, ActionWrite: true},
}

// managerOnly doctypes require at least Sales Manager for writes.
var managerOnly = map[string]bool{
	DoctypeFieldsLayout: true,
	DoctypeFundClass:    true,
}

// Can reports whether any of roles may perform action on doctype.
func Can(roles []string, doctype string, action Action) bool {
	for _, role := range roles {
		if role == RoleSystemManager {
			return true
		}
		perms, ok := rolePermissions[role]
		if !ok || !perms[action] {
			continue
		}
		if action != ActionRead && managerOnly[doctype] && role != RoleSalesManager {
			continue
		}
		return true
	}
	return false
}
