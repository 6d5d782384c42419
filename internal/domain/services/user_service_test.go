package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
	"github.com/banuch/logbook/pkg/utils"
)

func TestCreateUser_UniquenessAcrossIdentifiers(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &config.Config{})

	first := models.User{
		Username:   "jsingh",
		FullName:   "Jaswinder Singh",
		Email:      "jsingh@example.com",
		EmployeeID: "PSPCL-001",
		Role:       models.RoleAdmin,
	}
	require.NoError(t, svc.CreateUser(&first, "pass-one"))
	assert.True(t, utils.CheckPasswordHash("pass-one", first.PasswordHash))

	cases := []models.User{
		{Username: "jsingh", FullName: "X", Email: "other@example.com", Role: models.RoleAdmin},
		{Username: "other", FullName: "X", Email: "jsingh@example.com", Role: models.RoleAdmin},
		{Username: "other2", FullName: "X", Email: "other2@example.com", EmployeeID: "PSPCL-001", Role: models.RoleAdmin},
	}
	for _, u := range cases {
		u := u
		assert.ErrorIs(t, svc.CreateUser(&u, "pass"), ErrDuplicate)
	}
}

func TestCreateUser_AdminNeverBoundToSubstation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &config.Config{})
	substation := seedSubstation(t, db, "SS-01")

	sid := substation.ID
	admin := models.User{
		Username:     "admin2",
		FullName:     "Second Admin",
		Email:        "admin2@example.com",
		Role:         models.RoleAdmin,
		SubstationID: &sid,
	}
	require.NoError(t, svc.CreateUser(&admin, "pass"))
	assert.Nil(t, admin.SubstationID)

	engineer := models.User{
		Username:     "jsingh",
		FullName:     "Jaswinder Singh",
		Email:        "jsingh@example.com",
		Role:         models.RoleEngineer,
		SubstationID: &sid,
	}
	require.NoError(t, svc.CreateUser(&engineer, "pass"))
	require.NotNil(t, engineer.SubstationID)
	assert.Equal(t, substation.ID, *engineer.SubstationID)
}

func TestUpdateUser_PasswordResetAndToggle(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &config.Config{})

	user := models.User{
		Username: "jsingh",
		FullName: "Jaswinder Singh",
		Email:    "jsingh@example.com",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, svc.CreateUser(&user, "original"))

	updated, err := svc.UpdateUser(user.ID, map[string]interface{}{"phone": "98765-43210"}, "")
	require.NoError(t, err)
	assert.Equal(t, "98765-43210", updated.Phone)
	assert.True(t, utils.CheckPasswordHash("original", updated.PasswordHash))

	updated, err = svc.UpdateUser(user.ID, map[string]interface{}{}, "rotated")
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("rotated", updated.PasswordHash))

	require.NoError(t, svc.ToggleUserStatus(user.ID))
	reloaded, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}
