package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleGates(t *testing.T) {
	assert.True(t, CanApproveContracts(RoleManagement))
	assert.True(t, CanApproveContracts(RoleAdmin))
	assert.False(t, CanApproveContracts(RoleSales))
	assert.False(t, CanApproveContracts(RoleOperations))

	assert.True(t, CanSeeAll(RoleAudit))
	assert.False(t, CanSeeAll(RoleSales))
	assert.True(t, IsReadOnly(RoleAudit))
	assert.False(t, IsElevated(RoleAudit))
}
