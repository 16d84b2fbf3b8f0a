package models

// Permission constants
const (
	// Quote permissions
	PermissionQuoteCreate = "quote:create"

	// Assignment permissions
	PermissionAssignmentWrite = "assignment:write"

	// Vendor permissions
	PermissionVendorRead = "vendor:read"

	// Pilot permissions
	PermissionPilotRead    = "pilot:read"
	PermissionPilotWrite   = "pilot:write"
	PermissionPilotConvert = "pilot:convert"
)

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionQuoteCreate,
			PermissionAssignmentWrite,
			PermissionVendorRead,
			PermissionPilotRead,
			PermissionPilotWrite,
			PermissionPilotConvert,
		}
	case RoleDispatcher:
		return []string{
			PermissionQuoteCreate,
			PermissionAssignmentWrite,
			PermissionVendorRead,
			PermissionPilotRead,
			PermissionPilotWrite,
		}
	default:
		return []string{}
	}
}
