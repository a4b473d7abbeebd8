package authz

const (
	RoleSales      = 10
	RoleOperations = 20
	RoleAudit      = 30
	RoleManagement = 40
	RoleAdmin      = 50
)

func IsElevated(roleID int) bool {
	return roleID == RoleOperations || roleID == RoleManagement || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

// CanApproveContracts gates the Draft -> Active step.
func CanApproveContracts(roleID int) bool {
	return roleID == RoleManagement || roleID == RoleAdmin
}

func IsAdmin(roleID int) bool {
	return roleID == RoleAdmin
}

// CanSeeAll reports whether a role may list every lead and contract.
func CanSeeAll(roleID int) bool {
	return IsElevated(roleID) || roleID == RoleAudit
}
