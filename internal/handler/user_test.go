package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tawargy/project-manager/internal/model"
)

func TestSignupStripsPassword(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/user", "", map[string]string{
		"username": "bob1",
		"email":    "bob@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "bob1", user["username"])
	assert.NotContains(t, user, "password")

	var stored model.User
	require.NoError(t, e.db.Where("username = ?", "bob1").First(&stored).Error)
	assert.NotEqual(t, "secret1", stored.Password, "password must be stored hashed")
	assert.Empty(t, stored.Role, "signup grants no role")
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	e := newEnv(t)

	first := e.do(http.MethodPost, "/api/user", "", map[string]string{
		"username": "bob1", "email": "bob@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	dupEmail := e.do(http.MethodPost, "/api/user", "", map[string]string{
		"username": "bob2", "email": "bob@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, dupEmail.Code)
	assert.Equal(t, "User with this email already exists", decode(t, dupEmail)["message"])

	dupUsername := e.do(http.MethodPost, "/api/user", "", map[string]string{
		"username": "bob1", "email": "other@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, dupUsername.Code)

	var count int64
	e.db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSignupValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/user", "", map[string]string{
		"username": "ab", // below the 3 char minimum
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	issues, ok := decode(t, w)["message"].([]interface{})
	require.True(t, ok, "validation failures carry a field issue list")
	assert.NotEmpty(t, issues)
}

func TestLoginIssuesToken(t *testing.T) {
	e := newEnv(t)
	e.do(http.MethodPost, "/api/user", "", map[string]string{
		"username": "bob1", "email": "bob@x.com", "password": "secret1",
	})

	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	me := e.do(http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	user := decode(t, me)["user"].(map[string]interface{})
	assert.Equal(t, "bob1", user["username"])

	bad := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/user/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersAdminOnly(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser("alice", model.RoleAdmin)
	dev := e.createUser("dave", model.RoleDeveloper)
	e.createUser("norole", "")

	denied := e.do(http.MethodGet, "/api/user", e.token(dev), nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Equal(t, "You are not authorized to perform this action", decode(t, denied)["message"])

	allowed := e.do(http.MethodGet, "/api/user", e.token(admin), nil)
	require.Equal(t, http.StatusOK, allowed.Code)
	users := decode(t, allowed)["users"].([]interface{})
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.NotContains(t, u.(map[string]interface{}), "password")
	}
}

func TestRolePatchAdminOnly(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser("alice", model.RoleAdmin)
	pm := e.createUser("paula", model.RoleProjectManager)
	dev := e.createUser("dave", model.RoleDeveloper)

	path := "/api/user/" + itoa(dev.ID)

	denied := e.do(http.MethodPatch, path, e.token(pm), map[string]string{"role": model.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, denied.Code)

	var unchanged model.User
	require.NoError(t, e.db.First(&unchanged, dev.ID).Error)
	assert.Equal(t, model.RoleDeveloper, unchanged.Role, "denied patch must not mutate")

	ok := e.do(http.MethodPatch, path, e.token(admin), map[string]string{"role": model.RoleProjectManager})
	require.Equal(t, http.StatusOK, ok.Code)

	var updated model.User
	require.NoError(t, e.db.First(&updated, dev.ID).Error)
	assert.Equal(t, model.RoleProjectManager, updated.Role)

	invalid := e.do(http.MethodPatch, path, e.token(admin), map[string]string{"role": "SuperUser"})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

func TestDeleteUserAdminOnly(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser("alice", model.RoleAdmin)
	dev := e.createUser("dave", model.RoleDeveloper)

	denied := e.do(http.MethodDelete, "/api/user/"+itoa(admin.ID), e.token(dev), nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	ok := e.do(http.MethodDelete, "/api/user/"+itoa(dev.ID), e.token(admin), nil)
	require.Equal(t, http.StatusOK, ok.Code)

	missing := e.do(http.MethodDelete, "/api/user/"+itoa(dev.ID), e.token(admin), nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestOperationLogsRecordMutations(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser("alice", model.RoleAdmin)
	dev := e.createUser("dave", model.RoleDeveloper)

	e.do(http.MethodPatch, "/api/user/"+itoa(dev.ID), e.token(admin), map[string]string{"role": model.RoleDeveloper})

	w := e.do(http.MethodGet, "/api/admin/operation-logs", e.token(admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode(t, w)["logs"].([]interface{})
	require.NotEmpty(t, logs)
	entry := logs[0].(map[string]interface{})
	assert.Equal(t, "update_role", entry["action"])
	assert.Equal(t, "user", entry["resourceType"])

	denied := e.do(http.MethodGet, "/api/admin/operation-logs", e.token(dev), nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
}
