package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-web/configs"
	"todo-web/internal/config"
	"todo-web/internal/models"
	"todo-web/internal/session"
)

func newTestDeps(t *testing.T, enforceOwnership bool) *config.Dependencies {
	t.Helper()
	cfg := configs.Config{
		DatabaseURL:          "sqlite:///" + filepath.Join(t.TempDir(), "app.db"),
		SecretKey:            "test-secret",
		SessionTTL:           time.Hour,
		PasswordScheme:       "pbkdf2",
		PBKDF2Iterations:     1000,
		EnforceTaskOwnership: enforceOwnership,
	}
	deps, err := config.NewDependencies(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	require.NoError(t, deps.Categories.Bootstrap(context.Background()))
	return deps
}

// client menyimpan cookie antar request seperti browser.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, values url.Values) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return c.do(req)
}

func (c *client) patchJSON(path, body string) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return c.do(req)
}

func (c *client) register(email, name, password string) *http.Response {
	resp, _ := c.postForm("/register", url.Values{"email": {email}, "name": {name}, "password": {password}})
	return resp
}

func (c *client) login(email, password string) *http.Response {
	resp, _ := c.postForm("/login", url.Values{"email": {email}, "password": {password}})
	return resp
}

func (c *client) addTask(category, task, due string, starred bool) *http.Response {
	values := url.Values{"category": {category}, "task": {task}, "due_date": {due}}
	if starred {
		values.Set("selected", "y")
	}
	resp, _ := c.postForm("/", values)
	return resp
}

func groupsFor(t *testing.T, deps *config.Dependencies, email string) models.TaskGroups {
	t.Helper()
	ctx := context.Background()
	user, err := deps.Auth.Login(ctx, email, "pw123")
	require.NoError(t, err)
	groups, err := deps.Tasks.ListGroupedByCategory(ctx, user)
	require.NoError(t, err)
	return groups
}

func TestExampleScenario(t *testing.T) {
	deps := newTestDeps(t, true)
	app := NewApp(deps)
	browser := newClient(t, app)

	resp := browser.register("a@x.com", "Ann", "pw123")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Contains(t, browser.cookies, session.CookieName)

	browser.get("/logout")
	assert.NotContains(t, browser.cookies, session.CookieName)

	resp = browser.login("a@x.com", "wrong")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.NotContains(t, browser.cookies, session.CookieName)
	_, body := browser.get("/login")
	assert.Contains(t, body, "Password incorrect, please try again.")

	resp = browser.login("a@x.com", "pw123")
	assert.Equal(t, "/", resp.Header.Get("Location"))
	require.Contains(t, browser.cookies, session.CookieName)

	resp = browser.addTask("1", "Buy milk", "2024-01-10", false)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp = browser.addTask("1", "Pay rent", "2024-03-01", true)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	browser.addTask("1", "Call mom", "2024-01-05", false)

	work, ok := groupsFor(t, deps, "a@x.com").Lookup("Work")
	require.True(t, ok)
	require.Len(t, work, 3)
	assert.Equal(t, []string{"Call mom", "Buy milk", "Pay rent"}, []string{work[0].Task, work[1].Task, work[2].Task})
	assert.True(t, work[2].Selected)

	milk := work[1]
	resp, body = browser.patchJSON("/edit_task/"+strconv.Itoa(milk.ID), `{"due_date":"2024-02-01"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, body)

	stored, err := deps.Tasks.ListGroupedByCategory(context.Background(), &models.User{ID: milk.AuthorID})
	require.NoError(t, err)
	work, _ = stored.Lookup("Work")
	var updated models.Task
	for _, task := range work {
		if task.ID == milk.ID {
			updated = task
		}
	}
	assert.Equal(t, "Buy milk", updated.Task)
	assert.Equal(t, "2024-02-01", updated.DueDate.String())

	_, body = browser.get("/")
	assert.Contains(t, body, "Buy milk")
	assert.Contains(t, body, "2024-02-01")
	assert.Contains(t, body, "Personal")
}

func TestRegisterTwiceRedirectsToLogin(t *testing.T) {
	deps := newTestDeps(t, true)
	app := NewApp(deps)

	first := newClient(t, app)
	first.register("a@x.com", "Ann", "pw123")

	second := newClient(t, app)
	resp := second.register("a@x.com", "Someone", "other")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.NotContains(t, second.cookies, session.CookieName)

	_, body := second.get("/login")
	assert.Contains(t, body, "already signed up with that email")

	// Flash hanya tampil sekali.
	_, body = second.get("/login")
	assert.NotContains(t, body, "already signed up with that email")
}

func TestLoginUnknownEmail(t *testing.T) {
	app := NewApp(newTestDeps(t, true))
	browser := newClient(t, app)

	resp := browser.login("nobody@x.com", "pw123")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_, body := browser.get("/login")
	assert.Contains(t, body, "That email does not exist, please try again.")
}

func TestRegisterValidation(t *testing.T) {
	deps := newTestDeps(t, true)
	browser := newClient(t, NewApp(deps))

	resp := browser.register("not-an-email", "Ann", "pw123")
	assert.Equal(t, "/register", resp.Header.Get("Location"))
	assert.NotContains(t, browser.cookies, session.CookieName)

	_, err := deps.Auth.Login(context.Background(), "not-an-email", "pw123")
	assert.Error(t, err)
}

func TestAnonymousAccess(t *testing.T) {
	app := NewApp(newTestDeps(t, true))
	browser := newClient(t, app)

	resp, body := browser.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Create an account")

	resp = browser.addTask("1", "Buy milk", "2024-01-10", false)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = browser.get("/delete/1")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, body = browser.patchJSON("/edit_task/1", `{"task_text":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, body)

	// Logout anonymous tetap redirect.
	resp, _ = browser.get("/logout")
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestEditTaskErrors(t *testing.T) {
	deps := newTestDeps(t, true)
	browser := newClient(t, NewApp(deps))
	browser.register("a@x.com", "Ann", "pw123")
	browser.addTask("2", "Read book", "2024-01-10", false)

	personal, _ := groupsFor(t, deps, "a@x.com").Lookup("Personal")
	require.Len(t, personal, 1)
	id := strconv.Itoa(personal[0].ID)

	resp, body := browser.patchJSON("/edit_task/9999", `{"task_text":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Task not found"}`, body)

	resp, body = browser.patchJSON("/edit_task/"+id, `{"due_date":"10/01/2024"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid date format"}`, body)

	resp, _ = browser.patchJSON("/edit_task/"+id, `{"due_date":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Task yang tidak ada tetap 404 walau body-nya rusak.
	resp, body = browser.patchJSON("/edit_task/9999", `{"due_date":`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Task not found"}`, body)

	resp, body = browser.patchJSON("/edit_task/"+id, `{"task_text":"`+strings.Repeat("x", 300)+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid task description"}`, body)

	resp, body = browser.patchJSON("/edit_task/"+id, `{"task_text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid task description"}`, body)

	personal, _ = groupsFor(t, deps, "a@x.com").Lookup("Personal")
	require.Len(t, personal, 1)
	assert.Equal(t, "Read book", personal[0].Task)

	resp, body = browser.patchJSON("/edit_task/"+id, `{"task_text":"Read two books"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, body)

	personal, _ = groupsFor(t, deps, "a@x.com").Lookup("Personal")
	require.Len(t, personal, 1)
	assert.Equal(t, "Read two books", personal[0].Task)
	assert.Equal(t, "2024-01-10", personal[0].DueDate.String())
}

func TestDeleteTask(t *testing.T) {
	deps := newTestDeps(t, true)
	browser := newClient(t, NewApp(deps))
	browser.register("a@x.com", "Ann", "pw123")
	browser.addTask("3", "keep", "2024-01-01", false)
	browser.addTask("3", "drop", "2024-01-02", false)

	other, _ := groupsFor(t, deps, "a@x.com").Lookup("Other")
	require.Len(t, other, 2)

	resp, _ := browser.get("/delete/" + strconv.Itoa(other[1].ID))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = browser.get("/delete/" + strconv.Itoa(other[1].ID))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	left, _ := groupsFor(t, deps, "a@x.com").Lookup("Other")
	require.Len(t, left, 1)
	assert.Equal(t, "keep", left[0].Task)
}

// Task milik user lain diperlakukan seperti tidak ada.
func TestForeignTaskIsHidden(t *testing.T) {
	deps := newTestDeps(t, true)
	app := NewApp(deps)

	ann := newClient(t, app)
	ann.register("a@x.com", "Ann", "pw123")
	ann.addTask("1", "Ann's task", "2024-01-01", false)
	work, _ := groupsFor(t, deps, "a@x.com").Lookup("Work")
	require.Len(t, work, 1)
	id := strconv.Itoa(work[0].ID)

	bob := newClient(t, app)
	bob.register("b@x.com", "Bob", "pw123")

	resp, _ := bob.get("/delete/" + id)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = bob.patchJSON("/edit_task/"+id, `{"task_text":"hijacked"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := bob.get("/")
	assert.NotContains(t, body, "Ann&#39;s task")

	work, _ = groupsFor(t, deps, "a@x.com").Lookup("Work")
	require.Len(t, work, 1)
	assert.Equal(t, "Ann's task", work[0].Task)
}

func TestAddTaskValidation(t *testing.T) {
	deps := newTestDeps(t, true)
	browser := newClient(t, NewApp(deps))
	browser.register("a@x.com", "Ann", "pw123")

	browser.addTask("7", "Unknown category", "2024-01-01", false)
	browser.addTask("1", "", "2024-01-01", false)
	browser.addTask("1", "Bad date", "01/01/2024", false)

	for _, group := range groupsFor(t, deps, "a@x.com") {
		assert.Empty(t, group.Tasks, group.Category.Name)
	}

	_, body := browser.get("/")
	assert.Contains(t, body, "Due date must be formatted as YYYY-MM-DD.")
}

func TestAddTaskFlashMessages(t *testing.T) {
	deps := newTestDeps(t, true)
	browser := newClient(t, NewApp(deps))
	browser.register("a@x.com", "Ann", "pw123")

	cases := []struct {
		name     string
		task     string
		category string
		due      string
		want     string
	}{
		{"too long", strings.Repeat("x", 300), "1", "2024-01-01", "Task description is required and must be at most 250 characters."},
		{"blank", "   ", "1", "2024-01-01", "Task description is required and must be at most 250 characters."},
		{"unknown category", "Plan", "9", "2024-01-01", "Category is invalid."},
		{"bad date", "Plan", "1", "2024-13-01", "Due date must be formatted as YYYY-MM-DD."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := browser.addTask(tc.category, tc.task, tc.due, false)
			assert.Equal(t, http.StatusFound, resp.StatusCode)

			_, body := browser.get("/")
			assert.Contains(t, body, tc.want)
			assert.NotContains(t, body, "invalid format")
		})
	}

	for _, group := range groupsFor(t, deps, "a@x.com") {
		assert.Empty(t, group.Tasks, group.Category.Name)
	}
}

func TestAddTaskStarredCheckbox(t *testing.T) {
	deps := newTestDeps(t, true)
	browser := newClient(t, NewApp(deps))
	browser.register("a@x.com", "Ann", "pw123")

	values := map[string]bool{"false": false, "0": false, "off": false, "y": true, "on": true, "true": true}
	for value := range values {
		browser.postForm("/", url.Values{
			"category": {"1"},
			"task":     {"selected=" + value},
			"due_date": {"2024-01-01"},
			"selected": {value},
		})
	}

	work, _ := groupsFor(t, deps, "a@x.com").Lookup("Work")
	require.Len(t, work, len(values))
	for _, task := range work {
		value := strings.TrimPrefix(task.Task, "selected=")
		assert.Equal(t, values[value], task.Selected, value)
	}
}

func TestHealthz(t *testing.T) {
	browser := newClient(t, NewApp(newTestDeps(t, true)))

	resp, body := browser.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestStaticAssets(t *testing.T) {
	browser := newClient(t, NewApp(newTestDeps(t, true)))

	resp, body := browser.get("/static/script.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/edit_task/")
}
