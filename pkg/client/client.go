// Package client is a Go client for the project-manager API. It mirrors the
// dashboard's mutation layer: reads go through a query cache, mutations
// invalidate the affected keys on success and leave the cache untouched on
// failure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type Project struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Progress  int       `json:"progress"`
	Budget    float64   `json:"budget"`
	Members   []User    `json:"members"`
	Tasks     []Task    `json:"tasks"`
}

type Task struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Priority     string `json:"priority"`
	Status       string `json:"status"`
	AssignedToID *uint  `json:"assignedToId"`
	ProjectID    uint   `json:"projectId"`
	AssignedTo   *User  `json:"assignedTo"`
}

// APIError carries the server's {message} body. Message is the raw JSON
// value: a string, or a list of field issues for validation failures.
type APIError struct {
	Status  int
	Message json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *Cache
}

// New builds a client around an explicit cache. baseURL points at the API
// root, e.g. "http://localhost:8080/api".
func New(baseURL string, cache *Cache) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   cache,
	}
}

func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) Token() string         { return c.token }

func (c *Client) Signup(ctx context.Context, username, email, password string) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/user", body, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(UsersKey)
	return resp.User, nil
}

// Login authenticates and stores the session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp struct {
		Token string `json:"token"`
		User  *User  `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	if cached, ok := c.cache.Get(UsersKey); ok {
		return cached.([]User), nil
	}
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/user", nil, &resp); err != nil {
		return nil, err
	}
	c.cache.Set(UsersKey, resp.Users)
	return resp.Users, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	if cached, ok := c.cache.Get(ProjectsKey); ok {
		return cached.([]Project), nil
	}
	var resp struct {
		Projects []Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &resp); err != nil {
		return nil, err
	}
	c.cache.Set(ProjectsKey, resp.Projects)
	return resp.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, id uint) (*Project, error) {
	var resp struct {
		Project *Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Project, nil
}

type CreateProjectInput struct {
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Progress  int     `json:"progress"`
	Budget    float64 `json:"budget"`
	MemberIDs []uint  `json:"memberIds"`
}

func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	var resp struct {
		Project *Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPost, "/projects", in, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ProjectsKey)
	return resp.Project, nil
}

// UpdateProject sends a sparse patch: only the keys present in the map are
// applied by the server. A nil map value serializes to JSON null.
func (c *Client) UpdateProject(ctx context.Context, id uint, patch map[string]interface{}) (*Project, error) {
	var resp struct {
		Project *Project `json:"project"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d", id), patch, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ProjectsKey)
	return resp.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(ProjectsKey)
	return nil
}

func (c *Client) ListTasks(ctx context.Context, projectID uint) ([]Task, error) {
	key := TasksKey(projectID)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]Task), nil
	}
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	path := fmt.Sprintf("/tasks?projectId=%d", projectID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	c.cache.Set(key, resp.Tasks)
	return resp.Tasks, nil
}

type CreateTaskInput struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Priority     string `json:"priority"`
	Status       string `json:"status"`
	AssignedToID *uint  `json:"assignedToId,omitempty"`
	ProjectID    uint   `json:"projectId"`
}

func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) (*Task, error) {
	var resp struct {
		Task *Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(TasksKey(in.ProjectID))
	return resp.Task, nil
}

// UpdateTask sends a sparse patch. Use an explicit nil under "assignedToId"
// to disconnect the assignee; omit the key to leave it unchanged.
func (c *Client) UpdateTask(ctx context.Context, id, projectID uint, patch map[string]interface{}) (*Task, error) {
	var resp struct {
		Task *Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), patch, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(TasksKey(projectID))
	return resp.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id, projectID uint) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(TasksKey(projectID))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil {
			apiErr.Message = envelope.Message
		} else {
			apiErr.Message = data
		}
		return apiErr
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
