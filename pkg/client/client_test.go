package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProjectsUsesCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"projects": []Project{{ID: 1, Name: "Website"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, NewCache())

	first, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	second, err := c.ListProjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestMutationInvalidatesProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"projects": []Project{}})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"project": &Project{ID: 2}})
		}
	}))
	defer srv.Close()

	cache := NewCache()
	c := New(srv.URL, cache)

	_, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	_, ok := cache.Get(ProjectsKey)
	require.True(t, ok)

	_, err = c.CreateProject(context.Background(), CreateProjectInput{Name: "New"})
	require.NoError(t, err)

	_, ok = cache.Get(ProjectsKey)
	assert.False(t, ok, "projects key should be invalidated after a mutation")
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]interface{}{"tasks": []Task{{ID: 1, ProjectID: 3}}})
			return
		}
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "You are not authorized to perform this action"})
	}))
	defer srv.Close()

	cache := NewCache()
	c := New(srv.URL, cache)

	_, err := c.ListTasks(context.Background(), 3)
	require.NoError(t, err)

	_, err = c.UpdateTask(context.Background(), 1, 3, map[string]interface{}{"status": "Done"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.JSONEq(t, `"You are not authorized to perform this action"`, string(apiErr.Message))

	_, ok := cache.Get(TasksKey(3))
	assert.True(t, ok, "failed mutation must not invalidate the cache")
}

func TestValidationIssuesSurfaceInError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": []map[string]string{{"field": "progress", "message": "progress must be at most 100"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, NewCache())
	_, err := c.CreateProject(context.Background(), CreateProjectInput{Name: "Bad", Progress: 150})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)

	var issues []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(apiErr.Message, &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, "progress", issues[0].Field)
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "tok-123",
			"user":  &User{ID: 1, Username: "bob1"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, NewCache())
	user, err := c.Login(context.Background(), "bob@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bob1", user.Username)
	assert.Equal(t, "tok-123", c.Token())
}
