package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tawargy/project-manager/internal/handler"
	"github.com/tawargy/project-manager/internal/model"
	"github.com/tawargy/project-manager/internal/router"
	"github.com/tawargy/project-manager/internal/service"
	"github.com/tawargy/project-manager/internal/ws"
	jwtpkg "github.com/tawargy/project-manager/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type env struct {
	t   *testing.T
	db  *gorm.DB
	r   *gin.Engine
	hub *ws.Hub
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Project{}, &model.Task{}, &model.OperationLog{},
	))

	hub := ws.NewHub(nil)
	userService := service.NewUserService(db, testSecret, 24)
	projectService := service.NewProjectService(db)
	taskService := service.NewTaskService(db, hub)
	auditService := service.NewAuditService(db)

	r := gin.New()
	router.Setup(r, router.Deps{
		DB:               db,
		JWTSecret:        testSecret,
		AuthHandler:      handler.NewAuthHandler(userService),
		UserHandler:      handler.NewUserHandler(userService, auditService),
		ProjectHandler:   handler.NewProjectHandler(projectService, auditService),
		TaskHandler:      handler.NewTaskHandler(taskService, auditService),
		DashboardHandler: handler.NewDashboardHandler(db),
		WSHandler:        handler.NewWSHandler(hub),
	})

	return &env{t: t, db: db, r: r, hub: hub}
}

func (e *env) createUser(username, role string) *model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(e.t, err)
	u := &model.User{
		Username: username,
		Email:    username + "@x.com",
		Password: string(hash),
		Role:     role,
	}
	require.NoError(e.t, e.db.Create(u).Error)
	return u
}

func (e *env) token(u *model.User) string {
	tok, _, err := jwtpkg.GenerateToken(testSecret, u.ID, u.Role, 1)
	require.NoError(e.t, err)
	return tok
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func jsonBody(raw string) json.RawMessage {
	return json.RawMessage(raw)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
